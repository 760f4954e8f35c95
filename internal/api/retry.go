package api

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// RetryConfig governs how the client re-submits failed relay requests.
type RetryConfig struct {
	// MaxRetries is the number of re-submissions after the first attempt.
	MaxRetries int
	// BaseDelay seeds the exponential backoff schedule.
	BaseDelay time.Duration
	// MaxDelay caps both the backoff schedule and any server-provided
	// Retry-After value.
	MaxDelay time.Duration
	// Multiplier is the factor by which the delay grows after each attempt.
	Multiplier float64
	// Jitter is the randomization factor (0.0 to 1.0) applied to delays
	// to prevent thundering herd.
	Jitter float64
	// RetryableOn overrides the default status classification when set.
	RetryableOn func(statusCode int) bool
}

// DefaultRetryConfig returns the default retry configuration. Non-retryable
// 4xx responses fail immediately: auth failures and validation errors will
// not heal on their own, and re-submitting a rejected login only burns the
// server-side rate limit.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.2,
	}
}

// retryableStatus classifies relay responses. 408 and 429 are transient by
// definition; server errors are retryable except 501, which marks an
// endpoint the relay will never serve.
func retryableStatus(statusCode int) bool {
	switch {
	case statusCode == http.StatusRequestTimeout:
		return true
	case statusCode == http.StatusTooManyRequests:
		return true
	case statusCode >= 500 && statusCode != http.StatusNotImplemented:
		return true
	}
	return false
}

// ShouldRetry reports whether a response status warrants another attempt.
func (r *RetryConfig) ShouldRetry(attempt int, statusCode int) bool {
	if attempt >= r.MaxRetries {
		return false
	}
	if r.RetryableOn != nil {
		return r.RetryableOn(statusCode)
	}
	return retryableStatus(statusCode)
}

// Delay calculates the backoff before the next retry attempt with jitter.
func (r *RetryConfig) Delay(attempt int) time.Duration {
	delay := float64(r.BaseDelay) * math.Pow(r.Multiplier, float64(attempt))
	if delay > float64(r.MaxDelay) {
		delay = float64(r.MaxDelay)
	}

	if r.Jitter > 0 {
		jitterAmount := delay * r.Jitter
		delay = delay - jitterAmount + (rand.Float64() * 2 * jitterAmount)
	}

	return time.Duration(delay)
}

// DelayFor returns the wait before re-submitting after resp. A Retry-After
// header takes precedence over the backoff schedule: the relay rate-limits
// login attempts and states exactly when the next one is welcome. The value
// is still capped at MaxDelay.
func (r *RetryConfig) DelayFor(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			delay := time.Duration(secs) * time.Second
			if delay > r.MaxDelay {
				delay = r.MaxDelay
			}
			return delay
		}
	}
	return r.Delay(attempt)
}

// Wait blocks for delay or until the context is done.
func (r *RetryConfig) Wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
