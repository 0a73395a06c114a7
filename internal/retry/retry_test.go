package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietConfig(maxAttempts int) *Config {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return &Config{
		MaxAttempts:     maxAttempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Strategy:        StrategyFixed,
		Logger:          logger,
	}
}

func TestDo_SucceedsAfterRetry(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), quietConfig(3), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return NewRetryableError(errors.New("transient"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	terminal := errors.New("terminal")
	attempts := 0
	err := Do(context.Background(), quietConfig(3), func(ctx context.Context) error {
		attempts++
		return NewNonRetryableError(terminal)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, terminal)
	assert.Equal(t, 1, attempts)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), quietConfig(3), func(ctx context.Context) error {
		attempts++
		return errors.New("keeps failing")
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "max attempts")
}

func TestDo_ContextCancelDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := quietConfig(5)
	cfg.InitialInterval = time.Second

	err := Do(ctx, cfg, func(ctx context.Context) error {
		cancel()
		return errors.New("transient")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	got, err := DoWithResult(context.Background(), quietConfig(3), func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 2 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(errors.New("unclassified")))
	assert.True(t, IsRetryable(NewRetryableError(errors.New("x"))))
	assert.False(t, IsRetryable(NewNonRetryableError(errors.New("x"))))
}

func TestNextInterval_ExponentialCapped(t *testing.T) {
	cfg := &Config{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     300 * time.Millisecond,
		Strategy:        StrategyExponential,
	}
	assert.Equal(t, 100*time.Millisecond, nextInterval(cfg, 0, 1))
	assert.Equal(t, 200*time.Millisecond, nextInterval(cfg, 0, 2))
	assert.Equal(t, 300*time.Millisecond, nextInterval(cfg, 0, 3), "growth stops at the cap")
	assert.Equal(t, 300*time.Millisecond, nextInterval(cfg, 0, 4))
}
