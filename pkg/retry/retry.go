package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRetriesExhausted wraps the last error once every attempt has failed.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Policy bounds a retried operation.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// Timeout bounds each attempt; zero leaves the parent deadline in charge.
	Timeout time.Duration
}

// DefaultPolicy is three attempts, 12s each, with 500ms exponential backoff.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: 500 * time.Millisecond,
		MaxDelay:  5 * time.Second,
		Timeout:   12 * time.Second,
	}
}

// Backoff returns the delay before attempt n+1, after attempt n (1-based) failed.
func (p Policy) Backoff(n int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	shift := n - 1
	if shift > 16 {
		shift = 16
	}
	delay := p.BaseDelay * time.Duration(1<<shift)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// Do runs fn until it succeeds, the attempts run out or ctx is done.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = runAttempt(ctx, p.Timeout, fn)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("attempt %d: %w", attempt, ctx.Err())
		}
		if attempt == attempts {
			break
		}

		wait := time.NewTimer(p.Backoff(attempt))
		select {
		case <-ctx.Done():
			wait.Stop()
			return fmt.Errorf("attempt %d: %w", attempt, ctx.Err())
		case <-wait.C:
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, lastErr)
}

func runAttempt(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}
