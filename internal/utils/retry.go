package utils

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net"
	"strings"
	"time"
)

// RetryConfig holds the configuration for the retry mechanism.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	// Timeout bounds a single attempt. Zero leaves attempts unbounded.
	Timeout time.Duration
	// RetryableErrors are case-insensitive substrings of retryable errors.
	RetryableErrors []string
}

// RetryableFunc defines the signature for operations that can be retried.
type RetryableFunc[T any] func(ctx context.Context) (T, error)

// EnqueueRetryConfig returns a RetryConfig for scheduling deliveries on the
// queue. Attempts stay well under a second so a trigger never stalls.
func EnqueueRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      250 * time.Millisecond,
		BackoffFactor: 2.0,
		Timeout:       2 * time.Second,
		RetryableErrors: []string{
			"connection reset",
			"connection refused",
			"broken pipe",
			"i/o timeout",
			"LOADING", // Redis is still loading its dataset
			"READONLY",
		},
	}
}

// IsRetryableError reports whether err is worth another attempt. Attempt
// timeouts and network timeouts always are, cancellation never is.
func IsRetryableError(err error, patterns []string) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range patterns {
		if strings.Contains(msg, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// backoff returns the wait after the given failed attempt (1-based):
// InitialDelay * BackoffFactor^(attempt-1), capped at MaxDelay, plus up to
// 10% jitter.
func (c RetryConfig) backoff(attempt int) time.Duration {
	d := time.Duration(float64(c.InitialDelay) * math.Pow(c.BackoffFactor, float64(attempt-1)))
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	if jitter := int64(d) / 10; jitter > 0 {
		d += time.Duration(rand.Int64N(jitter))
	}
	return d
}

func (c RetryConfig) attempt(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Timeout)
}

// WithRetry runs operation until it succeeds, fails with a non-retryable
// error, or MaxAttempts is reached. The last error is returned.
func WithRetry[T any](ctx context.Context, operation RetryableFunc[T], config RetryConfig) (T, error) {
	var zero T

	for attempt := 1; ; attempt++ {
		attemptCtx, cancel := config.attempt(ctx)
		result, err := operation(attemptCtx)
		cancel()

		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if attempt >= config.MaxAttempts || !IsRetryableError(err, config.RetryableErrors) {
			return zero, err
		}

		timer := time.NewTimer(config.backoff(attempt))
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		}
	}
}
