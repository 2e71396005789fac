// Package ratelimit provides rate limiting for authentication attempts.
// Login throttling keys on the username, so a credential-stuffing run
// against one account cannot also starve other accounts.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter defines the interface for rate limiting implementations.
// Implementations must be safe for concurrent use.
type RateLimiter interface {
	// Allow checks if an attempt should be allowed for the given key.
	// Returns (allowed, retryAfter, error).
	// retryAfter indicates when to retry if blocked (0 if allowed).
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// Config contains rate limit configuration.
type Config struct {
	// AttemptsPerWindow is the max attempts allowed in Window.
	AttemptsPerWindow int

	// Window is the time window for counting attempts.
	Window time.Duration

	// BurstSize allows short bursts above the rate (optional).
	// If zero, defaults to AttemptsPerWindow.
	BurstSize int
}

// DefaultLoginConfig returns the stock login-throttling configuration:
// 5 attempts per minute per username.
func DefaultLoginConfig() Config {
	return Config{
		AttemptsPerWindow: 5,
		Window:            time.Minute,
	}
}

// Validate checks if the Config is valid.
func (c *Config) Validate() error {
	if c.AttemptsPerWindow <= 0 {
		return fmt.Errorf("AttemptsPerWindow must be positive, got %d", c.AttemptsPerWindow)
	}
	if c.Window <= 0 {
		return fmt.Errorf("Window must be positive, got %v", c.Window)
	}
	if c.BurstSize < 0 {
		return fmt.Errorf("BurstSize cannot be negative, got %d", c.BurstSize)
	}
	return nil
}

// EffectiveBurstSize returns the effective burst size.
// Returns BurstSize if set, otherwise AttemptsPerWindow.
func (c *Config) EffectiveBurstSize() int {
	if c.BurstSize > 0 {
		return c.BurstSize
	}
	return c.AttemptsPerWindow
}
