// Package retry provides the exponential backoff and inter-write throttle
// the matchday simulator uses when persisting fixtures and standings.
package retry

import (
	"context"
	"errors"
	"math"
	"time"
)

// ErrAttemptsExhausted wraps the last error once every attempt has failed.
var ErrAttemptsExhausted = errors.New("retry: attempts exhausted")

// Config is a small, stateless set of knobs with sane defaults when left
// zero-valued.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Throttle    time.Duration
}

// DefaultConfig is the matchday writer's configuration: three attempts,
// 500ms base backoff, 100ms throttle between successive writes.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Throttle:    100 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 500 * time.Millisecond
	}
	return c
}

// Do runs fn, retrying with exponential backoff (base, 2*base, 4*base, ...)
// up to cfg.MaxAttempts times. It stops early and returns ctx.Err() if the
// context is cancelled between attempts.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	cfg = cfg.withDefaults()

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(cfg.BaseDelay) * math.Pow(2, float64(attempt-1)))
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
	}
	return errors.Join(ErrAttemptsExhausted, lastErr)
}

// Throttle blocks for cfg.Throttle, or until ctx is cancelled, between
// successive writes in a batch.
func Throttle(ctx context.Context, cfg Config) error {
	cfg = cfg.withDefaults()
	if cfg.Throttle <= 0 {
		return nil
	}
	timer := time.NewTimer(cfg.Throttle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
