package wordcache

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go"
)

// DefaultMaxAttempts is one call plus a single retry.
const DefaultMaxAttempts = 2

// RetryPolicy controls how a failing provider call is repeated.
type RetryPolicy struct {
	MaxAttempts uint          `validate:"gte=1"` // Total attempts, first call included
	Delay       time.Duration // Initial delay between attempts (0 = retry immediately)
	MaxDelay    time.Duration // Cap for the exponential backoff (0 = no cap)
}

// DefaultRetryPolicy returns the single-retry policy with no backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// OnRetryFunc is called after a failed attempt that will be retried.
// attempt is zero-based.
type OnRetryFunc func(attempt uint, err error)

// WithRetry runs fn until it succeeds or the policy is exhausted.
// It returns the result of the first successful attempt, otherwise the last
// error and the number of attempts made.
func WithRetry[T any](ctx context.Context, policy RetryPolicy, fn RetryFunc[T], onRetry OnRetryFunc) (T, int, error) {
	var result T
	attempts := 0

	maxAttempts := policy.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 1
	}

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.LastErrorOnly(true),
		retry.Delay(policy.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(IsRetryable),
	}
	if policy.MaxDelay > 0 {
		opts = append(opts, retry.MaxDelay(policy.MaxDelay))
	}
	if onRetry != nil {
		opts = append(opts, retry.OnRetry(func(n uint, err error) {
			if n+1 < maxAttempts {
				onRetry(n, err)
			}
		}))
	}

	err := retry.Do(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		attempts++
		r, err := fn()
		if err != nil {
			return err
		}
		result = r
		return nil
	}, opts...)
	if err != nil {
		var zero T
		return zero, attempts, err
	}
	return result, attempts, nil
}

// IsRetryable reports whether a failed provider call may be repeated.
// Every provider failure is retryable except context cancellation and deadlines.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return retry.IsRecoverable(err)
}
