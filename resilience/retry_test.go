package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errFlaky = errors.New("flaky")

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond, Jitter: -1}
}

func TestDo_SucceedsFirstTime(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), nil, func(context.Context) error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), nil, func(context.Context) error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}
}

func TestDo_ReturnsLastErrorAfterMaxAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(2), nil, func(context.Context) error {
		calls++
		return errFlaky
	})
	if !errors.Is(err, errFlaky) || calls != 2 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	permanent := errors.New("bad request")
	calls := 0
	err := Do(context.Background(), fastConfig(5), func(err error) bool { return !errors.Is(err, permanent) }, func(context.Context) error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, RetryConfig{MaxAttempts: 10, InitialBackoff: time.Hour, MaxBackoff: time.Hour}, nil, func(context.Context) error {
		calls++
		cancel()
		return errFlaky
	})
	if !errors.Is(err, errFlaky) || calls != 1 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}

	err = Do(ctx, fastConfig(3), nil, func(context.Context) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled context should not call fn, err = %v", err)
	}
}

func TestBackoff_ExponentialAndCapped(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: 300 * time.Millisecond}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond, 300 * time.Millisecond}
	for i, w := range want {
		if got := cfg.Backoff(i + 1); got != w {
			t.Errorf("Backoff(%d) = %v, want %v", i+1, got, w)
		}
	}

	cfg.Jitter = 0.5
	for range 50 {
		if d := cfg.Backoff(1); d < 50*time.Millisecond || d > 150*time.Millisecond {
			t.Fatalf("jittered backoff %v out of range", d)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg RetryConfig
	cfg.ApplyDefaults()
	if cfg.MaxAttempts != DefaultMaxAttempts || cfg.InitialBackoff != DefaultInitialBackoff || cfg.MaxBackoff != DefaultMaxBackoff || cfg.Jitter != DefaultJitter {
		t.Errorf("defaults = %+v", cfg)
	}
}
