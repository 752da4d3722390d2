package apierr

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig bounds how often an oracle or speech request is repeated after
// a transient failure. The delay doubles after each failed attempt, up to
// MaxDelay.
//
// MaxRetries below 0 means a single attempt. A non-positive BaseDelay is 1ms
// and a non-positive MaxDelay is BaseDelay.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	// OnRetry, if set, is called before each wait with the attempt number
	// that just failed (1-based), the upcoming delay and the failure.
	OnRetry func(attempt int, delay time.Duration, err error)
}

func (c RetryConfig) withDefaults() RetryConfig {
	c.MaxRetries = max(c.MaxRetries, 0)
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = c.BaseDelay
	}
	return c
}

// RetryWithBackoff calls fn until it succeeds, shouldRetry rejects its error,
// the retries run out or ctx is done. A rejected error is returned as is;
// running out of retries wraps the last error.
func RetryWithBackoff[T any](
	ctx context.Context,
	cfg RetryConfig,
	fn func() (T, error),
	shouldRetry func(error) bool,
) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	delay := cfg.BaseDelay
	for attempt := 1; ; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !shouldRetry(err) {
			return zero, err
		}
		if attempt > cfg.MaxRetries {
			return zero, fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, delay, err)
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
		delay = min(delay*2, cfg.MaxDelay)
	}
}
