package notify

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryNotifier is a decorator that retries failed deliveries with
// exponential backoff and jitter.
type RetryNotifier struct {
	inner  Notifier
	config RetryConfig
}

// WithRetry wraps a Notifier with retry logic.
func WithRetry(n Notifier, cfg RetryConfig) Notifier {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryNotifier{inner: n, config: cfg}
}

func (r *RetryNotifier) Send(ctx context.Context, msg Message) error {
	var lastErr error

	for attempt := range r.config.MaxAttempts {
		err := r.inner.Send(ctx, msg)
		if err == nil {
			return nil
		}
		lastErr = err

		if !shouldRetry(err) {
			return err
		}

		if attempt == r.config.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.backoff(attempt)):
		}
	}

	return lastErr
}

func (r *RetryNotifier) Name() string {
	return r.inner.Name()
}

func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var invalid *ErrInvalidMessage
	return !errors.As(err, &invalid)
}

// backoff computes the wait duration for the given attempt.
func (r *RetryNotifier) backoff(attempt int) time.Duration {
	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
