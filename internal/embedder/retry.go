package embedder

import (
	"context"
	"fmt"
	"time"

	"github.com/juan975/cail-matching/internal/config"
)

// RetryConfig configures linear backoff with a per-attempt deadline
type RetryConfig struct {
	MaxAttempts    int           // Total attempts, including the first
	BaseDelay      time.Duration // Attempt n waits BaseDelay*n before attempt n+1
	AttemptTimeout time.Duration // Deadline raced against each attempt
}

// RetryConfigFrom converts the resilience settings into a RetryConfig
func RetryConfigFrom(c config.ResilienceConfig) RetryConfig {
	return RetryConfig{
		MaxAttempts:    c.MaxRetries,
		BaseDelay:      c.RetryDelay,
		AttemptTimeout: c.Timeout,
	}
}

// DefaultRetryConfig returns the production defaults (5s timeout, 3 attempts, 1s delay)
func DefaultRetryConfig() RetryConfig {
	return RetryConfigFrom(config.Default().Embedding.ResilienceConfig)
}

// backoff returns the wait after the given failed attempt (1-based)
func (c RetryConfig) backoff(attempt int) time.Duration {
	return c.BaseDelay * time.Duration(attempt)
}

// attemptResult carries the outcome of one raced attempt
type attemptResult[T any] struct {
	value T
	err   error
}

// raceAttempt runs fn against a timer; whichever settles first wins. A
// timeout is reported as ErrAttemptTimeout. The abandoned call keeps running
// until it observes its cancelled context.
func raceAttempt[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan attemptResult[T], 1)
	go func() {
		v, err := fn(attemptCtx)
		done <- attemptResult[T]{value: v, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res.value, res.err
	case <-timer.C:
		return zero, fmt.Errorf("%w after %s", ErrAttemptTimeout, timeout)
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// retryWithBackoff executes fn up to MaxAttempts times, racing each attempt
// against AttemptTimeout and sleeping BaseDelay*n after failed attempt n.
// onFailure, if set, observes every failed attempt. It returns the number of
// attempts made and the last error. Retry stops on context cancellation.
func retryWithBackoff[T any](
	ctx context.Context,
	cfg RetryConfig,
	onFailure func(attempt int, wait time.Duration, err error),
	fn func(ctx context.Context) (T, error),
) (T, int, error) {
	var lastErr error
	var zero T

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := raceAttempt(ctx, cfg.AttemptTimeout, fn)
		if err == nil {
			return result, attempt, nil
		}

		lastErr = err

		// Don't retry on caller cancellation
		if ctx.Err() != nil {
			return zero, attempt, ctx.Err()
		}

		var wait time.Duration
		if attempt < cfg.MaxAttempts {
			wait = cfg.backoff(attempt)
		}
		if onFailure != nil {
			onFailure(attempt, wait, err)
		}

		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, attempt, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return zero, cfg.MaxAttempts, lastErr
}
