package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig controls Retry. Zero fields take the defaults noted on each.
type RetryConfig struct {
	MaxAttempts  int           // total attempts including the first; 3
	InitialDelay time.Duration // wait before the second attempt; 100ms
	MaxDelay     time.Duration // upper bound on any single wait; 5s

	// RetryIf reports whether err is worth another attempt. When nil every
	// error is retried.
	RetryIf func(err error) bool

	// OnRetry, if set, observes each failed attempt that will be retried.
	OnRetry func(attempt int, err error, delay time.Duration)
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = 100 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 5 * time.Second
	}
	if c.RetryIf == nil {
		c.RetryIf = func(error) bool { return true }
	}
	return c
}

// Retry repeats an operation with jittered exponential backoff. It is used
// for startup dependencies such as the initial database connection.
type Retry struct {
	config RetryConfig
}

// NewRetry returns a Retry for config.
func NewRetry(config RetryConfig) *Retry {
	return &Retry{config: config.withDefaults()}
}

// Config returns the effective configuration.
func (r *Retry) Config() RetryConfig { return r.config }

// Execute calls op until it returns nil. It stops early on an error RetryIf
// rejects, after MaxAttempts, or when ctx is done, returning the last error.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.config.InitialDelay
	policy.MaxInterval = r.config.MaxDelay

	var attempt int
	operation := func() (struct{}, error) {
		attempt++
		err := op(ctx)
		if err != nil && !r.config.RetryIf(err) {
			err = backoff.Permanent(err)
		}
		return struct{}{}, err
	}
	notify := func(err error, delay time.Duration) {
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(r.config.MaxAttempts)),
		backoff.WithNotify(notify),
	)
	return err
}
