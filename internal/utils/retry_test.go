package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() RetryConfig {
	cfg := EnqueueRetryConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	return cfg
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial tcp: deadline" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsRetryableError(t *testing.T) {
	patterns := []string{"connection refused", "LOADING"}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"pattern", errors.New("dial tcp 127.0.0.1:6379: connect: connection refused"), true},
		{"pattern is case-insensitive", errors.New("loading Redis is loading the dataset in memory"), true},
		{"unrelated", errors.New("task ID conflicts with another task"), false},
		{"attempt deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"net timeout", timeoutErr{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.err, patterns))
		})
	}
}

func TestWithRetry_Success(t *testing.T) {
	attempts := 0
	result, err := WithRetry(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		return "queued", nil
	}, fastConfig())

	require.NoError(t, err)
	assert.Equal(t, "queued", result)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_RetrySuccess(t *testing.T) {
	attempts := 0
	result, err := WithRetry(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("read: connection reset by peer")
		}
		return attempts, nil
	}, fastConfig())

	require.NoError(t, err)
	assert.Equal(t, 3, result)
}

func TestWithRetry_MaxAttemptsExhausted(t *testing.T) {
	attempts := 0
	_, err := WithRetry(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, errors.New("connection refused")
	}, fastConfig())

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_NonRetryableError(t *testing.T) {
	attempts := 0
	_, err := WithRetry(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, errors.New("NOAUTH Authentication required")
	}, fastConfig())

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	_, err := WithRetry(ctx, func(ctx context.Context) (int, error) {
		attempts++
		return 0, errors.New("connection refused")
	}, fastConfig())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_TimeoutPerAttempt(t *testing.T) {
	cfg := fastConfig()
	cfg.Timeout = 5 * time.Millisecond

	attempts := 0
	_, err := WithRetry(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		<-ctx.Done()
		return 0, ctx.Err()
	}, cfg)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, cfg.MaxAttempts, attempts)
}

func TestRetryConfig_Backoff(t *testing.T) {
	cfg := RetryConfig{
		InitialDelay:  10 * time.Millisecond,
		MaxDelay:      30 * time.Millisecond,
		BackoffFactor: 2,
	}

	first := cfg.backoff(1)
	assert.GreaterOrEqual(t, first, 10*time.Millisecond)
	assert.Less(t, first, 11*time.Millisecond)

	second := cfg.backoff(2)
	assert.GreaterOrEqual(t, second, 20*time.Millisecond)
	assert.Less(t, second, 22*time.Millisecond)

	capped := cfg.backoff(5)
	assert.GreaterOrEqual(t, capped, 30*time.Millisecond)
	assert.Less(t, capped, 33*time.Millisecond)
}

func TestEnqueueRetryConfig(t *testing.T) {
	cfg := EnqueueRetryConfig()

	assert.GreaterOrEqual(t, cfg.MaxAttempts, 2)
	assert.Less(t, cfg.MaxDelay, time.Second)
	assert.Positive(t, cfg.Timeout)
}
