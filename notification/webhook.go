package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Webhook delivery defaults, used when the config leaves a field zero.
const (
	defaultWebhookTimeout = 10 * time.Second
	defaultWebhookRetries = 3
	defaultRetryDelay     = 1 * time.Second
)

// WebhookConfig configures delivery of permission events to an HTTP
// endpoint.
type WebhookConfig struct {
	// URL is the endpoint events are POSTed to.
	URL string

	// TimeoutSeconds bounds each HTTP request. Default: 10.
	TimeoutSeconds int

	// MaxRetries is how many times a failed delivery is retried. Default: 3.
	MaxRetries int

	// RetryDelaySeconds is the base delay between retries, doubled on
	// each attempt. Default: 1.
	RetryDelaySeconds int
}

// WebhookNotifier POSTs permission events to a webhook endpoint as JSON.
// Deliveries are retried with exponential backoff on network errors and
// 5xx responses. A 4xx response is treated as permanent and not retried.
type WebhookNotifier struct {
	url        string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
}

// NewWebhookNotifier validates the endpoint URL and builds a notifier.
func NewWebhookNotifier(config WebhookConfig) (*WebhookNotifier, error) {
	if config.URL == "" {
		return nil, errors.New("webhook URL is required")
	}
	if _, err := url.ParseRequestURI(config.URL); err != nil {
		return nil, fmt.Errorf("invalid webhook URL: %w", err)
	}

	timeout := defaultWebhookTimeout
	if config.TimeoutSeconds > 0 {
		timeout = time.Duration(config.TimeoutSeconds) * time.Second
	}
	maxRetries := defaultWebhookRetries
	if config.MaxRetries > 0 {
		maxRetries = config.MaxRetries
	}
	retryDelay := defaultRetryDelay
	if config.RetryDelaySeconds > 0 {
		retryDelay = time.Duration(config.RetryDelaySeconds) * time.Second
	}

	return &WebhookNotifier{
		url:        config.URL,
		client:     &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}, nil
}

// Notify delivers the event, retrying transient failures until the
// retry budget runs out.
func (w *WebhookNotifier) Notify(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.retryDelay * (1 << (attempt - 1))):
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		retryable, err := w.post(ctx, event, body)
		if err == nil {
			return nil
		}
		if !retryable {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("webhook delivery failed after %d retries: %w", w.maxRetries, lastErr)
}

// post performs a single delivery attempt. The bool reports whether the
// failure is worth retrying.
func (w *WebhookNotifier) post(ctx context.Context, event *Event, body []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Wardkeep-Event", string(event.Type))

	resp, err := w.client.Do(req)
	if err != nil {
		return true, fmt.Errorf("request failed: %w", err)
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return false, nil
	case resp.StatusCode >= 500:
		return true, fmt.Errorf("server error: status %d", resp.StatusCode)
	default:
		return false, fmt.Errorf("webhook request failed: status %d", resp.StatusCode)
	}
}
