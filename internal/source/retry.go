package source

import (
	"context"
	"time"
)

// RetryPolicy bounds retries of transient network failures. Exhausting the
// budget degrades to "no data for this unit of work"; the caller decides
// what that means.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Exponential bool
	MaxDelay    time.Duration
}

// Backoff returns the delay before retrying after the given zero-based
// attempt. With exponential backoff the delay doubles per attempt, capped
// at MaxDelay.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if !p.Exponential {
		return p.Delay
	}
	d := p.Delay << attempt
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Do runs fn up to MaxAttempts times, sleeping the backoff between attempts.
// It returns nil on the first success, the last error on exhaustion, or the
// context error if cancelled while waiting.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(p.Backoff(attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}
	return lastErr
}
