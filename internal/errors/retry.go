package errors

import (
	"context"
	"fmt"
	"time"
)

// ============================================================
// Retry Policy
// ============================================================

// Policy defines bounded retry behavior with exponential backoff.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first
	MaxAttempts int

	// InitialDelay is the delay before the first retry
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries; zero means uncapped
	MaxDelay time.Duration

	// Multiplier scales the delay after each failed attempt
	Multiplier float64

	// RetryIf determines if an error is retryable; defaults to IsRetryable
	RetryIf func(error) bool

	// Sleep waits between attempts. Defaults to a context-aware wait;
	// tests inject a recorder to avoid wall-clock delays.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy returns a reasonable default retry policy.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		RetryIf:      IsRetryable,
	}
}

func (p *Policy) retryable(err error) bool {
	if p.RetryIf != nil {
		return p.RetryIf(err)
	}
	return IsRetryable(err)
}

func (p *Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// ============================================================
// Retry Functions
// ============================================================

// Do executes fn with retry logic. The first attempt is immediate;
// each retry waits the current delay, which then grows by Multiplier
// up to MaxDelay. Non-retryable errors propagate immediately.
func Do(ctx context.Context, policy *Policy, fn func() error) error {
	if policy == nil {
		policy = DefaultPolicy()
	}

	var lastErr error
	delay := policy.InitialDelay

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !policy.retryable(lastErr) {
			return lastErr
		}

		if attempt == policy.MaxAttempts {
			break
		}

		if err := policy.sleep(ctx, delay); err != nil {
			return fmt.Errorf("retry canceled: %w", err)
		}

		delay = time.Duration(float64(delay) * policy.Multiplier)
		if policy.MaxDelay > 0 && delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// DoWithResult executes a function that returns a result with retry logic.
func DoWithResult[T any](ctx context.Context, policy *Policy, fn func() (T, error)) (T, error) {
	var zero T

	if policy == nil {
		policy = DefaultPolicy()
	}

	var result T
	var lastErr error
	delay := policy.InitialDelay

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result, lastErr = fn()
		if lastErr == nil {
			return result, nil
		}

		if !policy.retryable(lastErr) {
			return zero, lastErr
		}

		if attempt == policy.MaxAttempts {
			break
		}

		if err := policy.sleep(ctx, delay); err != nil {
			return zero, fmt.Errorf("retry canceled: %w", err)
		}

		delay = time.Duration(float64(delay) * policy.Multiplier)
		if policy.MaxDelay > 0 && delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}

	return zero, fmt.Errorf("max retries exceeded: %w", lastErr)
}
