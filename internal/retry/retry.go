// Package retry runs an operation with backoff, letting the operation
// classify its own errors as retryable or terminal.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Strategy selects how the wait interval grows between attempts.
type Strategy string

const (
	StrategyFixed       Strategy = "fixed"
	StrategyExponential Strategy = "exponential"
)

type Config struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Strategy        Strategy
	Logger          *logrus.Logger
}

func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:     3,
		InitialInterval: 1 * time.Second,
		MaxInterval:     30 * time.Second,
		Strategy:        StrategyExponential,
		Logger:          logrus.New(),
	}
}

// RetryableError lets an error opt in or out of retries.
type RetryableError interface {
	error
	IsRetryable() bool
}

type retryableError struct {
	error
	retryable bool
}

func (e *retryableError) IsRetryable() bool { return e.retryable }
func (e *retryableError) Unwrap() error     { return e.error }

// NewRetryableError marks err as retryable.
func NewRetryableError(err error) error {
	return &retryableError{error: err, retryable: true}
}

// NewNonRetryableError marks err as terminal.
func NewNonRetryableError(err error) error {
	return &retryableError{error: err, retryable: false}
}

// IsRetryable reports whether err should be retried. Context
// cancellation and deadline errors are terminal; everything else is
// retryable unless the error says otherwise.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var re RetryableError
	if errors.As(err, &re) {
		return re.IsRetryable()
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return true
	}
}

type Func func(ctx context.Context) error

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempt budget is spent.
func Do(ctx context.Context, config *Config, fn Func) error {
	if config == nil {
		config = DefaultConfig()
	}

	var lastErr error
	interval := config.InitialInterval

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry canceled: %w", ctx.Err())
		default:
		}

		err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				config.Logger.WithField("attempt", attempt).Info("Operation succeeded after retry")
			}
			return nil
		}
		lastErr = err

		config.Logger.WithFields(logrus.Fields{
			"attempt": attempt,
			"max":     config.MaxAttempts,
			"error":   err.Error(),
		}).Warn("Operation failed")

		if !IsRetryable(err) {
			return fmt.Errorf("non-retryable error: %w", err)
		}
		if attempt >= config.MaxAttempts {
			break
		}

		interval = nextInterval(config, interval, attempt)
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry canceled during wait: %w", ctx.Err())
		case <-time.After(interval):
		}
	}

	return fmt.Errorf("max attempts (%d) reached: %w", config.MaxAttempts, lastErr)
}

// DoWithResult is Do for operations that produce a value.
func DoWithResult[T any](ctx context.Context, config *Config, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, config, func(ctx context.Context) error {
		res, err := fn(ctx)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	return result, err
}

func nextInterval(config *Config, current time.Duration, attempt int) time.Duration {
	var next time.Duration
	switch config.Strategy {
	case StrategyFixed:
		next = config.InitialInterval
	case StrategyExponential:
		next = config.InitialInterval * time.Duration(1<<(attempt-1))
	default:
		next = config.InitialInterval
	}
	if next > config.MaxInterval {
		next = config.MaxInterval
	}
	return next
}
