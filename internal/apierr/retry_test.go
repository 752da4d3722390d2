package apierr_test

// Notes:
// - Backoff timing is not asserted, only attempt counts and returned errors.
// - Delays are 1ms so the suite stays fast.

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alnah/go-subtitle/internal/apierr"
)

func fastConfig(retries int) apierr.RetryConfig {
	return apierr.RetryConfig{MaxRetries: retries, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

// ---------------------------------------------------------------------------
// TestRetryWithBackoff
// ---------------------------------------------------------------------------

func TestRetryWithBackoff_Attempts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       apierr.RetryConfig
		failUntil int // calls before success; -1 never succeeds
		retryable bool
		wantCalls int
		wantErr   bool
	}{
		{"success first try", fastConfig(5), 0, true, 1, false},
		{"zero retries is one attempt", fastConfig(0), -1, true, 1, true},
		{"negative retries normalized", apierr.RetryConfig{MaxRetries: -3}, -1, true, 1, true},
		{"retries then succeeds", fastConfig(3), 2, true, 3, false},
		{"exhausts retries", fastConfig(2), -1, true, 3, true},
		{"non-retryable stops", fastConfig(5), -1, false, 1, true},
		{"zero delays normalized", apierr.RetryConfig{MaxRetries: 1}, 1, true, 2, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			got, err := apierr.RetryWithBackoff(context.Background(), tt.cfg,
				func() (string, error) {
					calls++
					if tt.failUntil < 0 || calls <= tt.failUntil {
						return "", apierr.ErrRateLimit
					}
					return "ok", nil
				},
				func(error) bool { return tt.retryable },
			)

			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != "ok" {
				t.Errorf("result = %q, want ok", got)
			}
			if err != nil && !errors.Is(err, apierr.ErrRateLimit) {
				t.Errorf("err = %v, want wrapped ErrRateLimit", err)
			}
		})
	}
}

func TestRetryWithBackoff_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := apierr.RetryWithBackoff(ctx,
		apierr.RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: time.Minute},
		func() (int, error) {
			calls++
			return 0, apierr.ErrTimeout
		},
		apierr.IsRetryable,
	)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryWithBackoff_IsRetryableFilter(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := apierr.RetryWithBackoff(context.Background(), fastConfig(5),
		func() (string, error) {
			calls++
			if calls == 1 {
				return "", apierr.ErrServer
			}
			return "", apierr.ErrAuthFailed
		},
		apierr.IsRetryable,
	)

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if !errors.Is(err, apierr.ErrAuthFailed) {
		t.Errorf("err = %v, want ErrAuthFailed", err)
	}
}

func TestRetryWithBackoff_OnRetry(t *testing.T) {
	t.Parallel()

	var attempts []int
	var delays []time.Duration
	cfg := apierr.RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   3 * time.Millisecond,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			if !errors.Is(err, apierr.ErrServer) {
				t.Errorf("OnRetry err = %v, want ErrServer", err)
			}
			attempts = append(attempts, attempt)
			delays = append(delays, delay)
		},
	}

	_, err := apierr.RetryWithBackoff(context.Background(), cfg,
		func() (string, error) { return "", apierr.ErrServer },
		apierr.IsRetryable,
	)

	if !errors.Is(err, apierr.ErrServer) {
		t.Fatalf("err = %v, want wrapped ErrServer", err)
	}
	wantDelays := []time.Duration{time.Millisecond, 2 * time.Millisecond, 3 * time.Millisecond}
	if len(attempts) != 3 || attempts[0] != 1 || attempts[2] != 3 {
		t.Errorf("attempts = %v, want [1 2 3]", attempts)
	}
	for i, d := range delays {
		if d != wantDelays[i] {
			t.Errorf("delay %d = %v, want %v", i, d, wantDelays[i])
		}
	}
}
