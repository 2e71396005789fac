package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestNewWebhookNotifierValidation(t *testing.T) {
	if _, err := NewWebhookNotifier(WebhookConfig{}); err == nil {
		t.Error("expected error for empty URL")
	}
	if _, err := NewWebhookNotifier(WebhookConfig{URL: "not a url"}); err == nil {
		t.Error("expected error for invalid URL")
	}
	if _, err := NewWebhookNotifier(WebhookConfig{URL: "https://example.com/hook"}); err != nil {
		t.Errorf("valid URL rejected: %v", err)
	}
}

func TestWebhookNotifierDelivers(t *testing.T) {
	var received atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		if r.Header.Get("X-Wardkeep-Event") != "permission.granted" {
			t.Errorf("event header = %q", r.Header.Get("X-Wardkeep-Event"))
		}
		var event Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier, err := NewWebhookNotifier(WebhookConfig{URL: server.URL})
	if err != nil {
		t.Fatalf("NewWebhookNotifier: %v", err)
	}

	if err := notifier.Notify(context.Background(), testEvent()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if received.Load() != 1 {
		t.Errorf("expected 1 delivery, got %d", received.Load())
	}
}

func TestWebhookNotifierRetriesOn5xx(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier, err := NewWebhookNotifier(WebhookConfig{
		URL:               server.URL,
		MaxRetries:        3,
		RetryDelaySeconds: 1,
	})
	if err != nil {
		t.Fatalf("NewWebhookNotifier: %v", err)
	}
	// Shrink the backoff so the test stays fast.
	notifier.retryDelay = 1

	if err := notifier.Notify(context.Background(), testEvent()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestWebhookNotifierNoRetryOn4xx(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	notifier, err := NewWebhookNotifier(WebhookConfig{URL: server.URL})
	if err != nil {
		t.Fatalf("NewWebhookNotifier: %v", err)
	}

	if err := notifier.Notify(context.Background(), testEvent()); err == nil {
		t.Error("expected error on 4xx")
	}
	if attempts.Load() != 1 {
		t.Errorf("4xx must not be retried, got %d attempts", attempts.Load())
	}
}

func TestWebhookNotifierContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	notifier, err := NewWebhookNotifier(WebhookConfig{URL: "https://example.com/hook"})
	if err != nil {
		t.Fatalf("NewWebhookNotifier: %v", err)
	}

	if err := notifier.Notify(ctx, testEvent()); err == nil {
		t.Error("expected context error")
	}
}
