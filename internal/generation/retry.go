package generation

import (
	"context"
	"time"
)

// RetryPolicy bounds how transient failures are retried.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Sleep overrides how delays are waited out (tests).
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns three attempts with 1s base and 10s cap.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts <= 0 {
		return 1
	}
	return p.MaxAttempts
}

// Backoff returns the delay after the given 1-based attempt: base, base*2,
// base*4, ... capped at MaxDelay.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		return 0
	}
	if attempt <= 0 {
		attempt = 1
	}
	delay := base
	for i := 1; i < attempt; i++ {
		if p.MaxDelay > 0 && delay > p.MaxDelay/2 {
			delay = p.MaxDelay
			break
		}
		delay *= 2
	}
	return p.capDelay(delay)
}

func (p RetryPolicy) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

func (p RetryPolicy) wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if p.Sleep != nil {
		return p.Sleep(ctx, delay)
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
