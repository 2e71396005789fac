package ratelimit

import (
	"context"
	"sync"
	"time"
)

const defaultCleanupInterval = 10 * time.Minute

// MemoryRateLimiter is a sliding window log limiter held in process
// memory. Safe for concurrent use.
type MemoryRateLimiter struct {
	config Config

	mu       sync.Mutex
	attempts map[string][]time.Time

	cleanupInterval time.Duration
	done            chan struct{}
	wg              sync.WaitGroup
}

// NewMemoryRateLimiter creates an in-memory rate limiter and starts its
// cleanup goroutine. Call Close to stop it.
func NewMemoryRateLimiter(cfg Config) (*MemoryRateLimiter, error) {
	return NewMemoryRateLimiterWithCleanup(cfg, defaultCleanupInterval)
}

// NewMemoryRateLimiterWithCleanup creates a rate limiter with a custom
// cleanup interval, mainly for tests.
func NewMemoryRateLimiterWithCleanup(cfg Config, cleanupInterval time.Duration) (*MemoryRateLimiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &MemoryRateLimiter{
		config:          cfg,
		attempts:        make(map[string][]time.Time),
		cleanupInterval: cleanupInterval,
		done:            make(chan struct{}),
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m, nil
}

// Allow reports whether an attempt on the key is within the limit,
// counting attempts inside the configured window. When denied, the
// second return value is how long until the oldest attempt ages out.
func (m *MemoryRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	recent := pruneBefore(m.attempts[key], now.Add(-m.config.Window))

	if len(recent) >= m.config.EffectiveBurstSize() {
		m.attempts[key] = recent
		retryAfter := recent[0].Add(m.config.Window).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return false, retryAfter, nil
	}

	m.attempts[key] = append(recent, now)
	return true, 0, nil
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (m *MemoryRateLimiter) Close() error {
	select {
	case <-m.done:
	default:
		close(m.done)
	}
	m.wg.Wait()
	return nil
}

func (m *MemoryRateLimiter) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

// cleanup drops aged-out attempts and empty keys so idle identities
// don't accumulate.
func (m *MemoryRateLimiter) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-m.config.Window)
	for key, timestamps := range m.attempts {
		recent := pruneBefore(timestamps, cutoff)
		if len(recent) == 0 {
			delete(m.attempts, key)
		} else {
			m.attempts[key] = recent
		}
	}
}

// pruneBefore filters out timestamps at or before the cutoff, reusing
// the backing array.
func pruneBefore(timestamps []time.Time, cutoff time.Time) []time.Time {
	recent := timestamps[:0]
	for _, t := range timestamps {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	return recent
}

// Stats is a snapshot of limiter state for monitoring.
type Stats struct {
	// TotalKeys is the number of keys currently tracked.
	TotalKeys int
	// TotalAttempts is the number of timestamps across all keys.
	TotalAttempts int
}

// Stats returns current limiter statistics.
func (m *MemoryRateLimiter) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := Stats{TotalKeys: len(m.attempts)}
	for _, timestamps := range m.attempts {
		stats.TotalAttempts += len(timestamps)
	}
	return stats
}
