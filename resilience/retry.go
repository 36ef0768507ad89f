package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Defaults.
const (
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 200 * time.Millisecond
	DefaultMaxBackoff     = 5 * time.Second
	DefaultJitter         = 0.2
)

// RetryConfig bounds how often and how patiently a call is repeated.
type RetryConfig struct {
	// MaxAttempts counts the first call. 1 disables retries.
	MaxAttempts    int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
	// Jitter spreads each delay by up to ±Jitter of its length; negative
	// disables it.
	Jitter float64 `yaml:"jitter" mapstructure:"jitter"`
}

// ApplyDefaults fills zero-valued fields.
func (c *RetryConfig) ApplyDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = DefaultInitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	if c.Jitter == 0 {
		c.Jitter = DefaultJitter
	}
}

// Backoff returns the delay after the given failed attempt (1-based):
// InitialBackoff doubled per attempt, jittered, capped at MaxBackoff.
func (c RetryConfig) Backoff(attempt int) time.Duration {
	d := float64(c.InitialBackoff) * math.Pow(2, float64(attempt-1))
	if c.Jitter > 0 {
		d += d * c.Jitter * (rand.Float64()*2 - 1)
	}
	if d > float64(c.MaxBackoff) {
		d = float64(c.MaxBackoff)
	}
	if d < 0 {
		d = float64(c.InitialBackoff)
	}
	return time.Duration(d)
}

// Retryable decides whether an error is worth another attempt.
type Retryable func(err error) bool

// Do calls fn until it succeeds, returns an error retryable rejects, or
// cfg.MaxAttempts is reached. The last error is returned. Context
// cancellation stops the loop and is never retried.
func Do(ctx context.Context, cfg RetryConfig, retryable Retryable, fn func(ctx context.Context) error) error {
	cfg.ApplyDefaults()

	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return err
			}
			return ctxErr
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= cfg.MaxAttempts || isContextError(err) || (retryable != nil && !retryable(err)) {
			return err
		}

		timer := time.NewTimer(cfg.Backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
