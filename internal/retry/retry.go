// Package retry provides a bounded retry loop with exponential backoff.
// The policy is passed as a value so callers declare their budgets
// explicitly instead of hiding them in decorators.
package retry

import (
	"context"
	"time"
)

// Policy bounds a retry loop.
type Policy struct {
	MaxRetries int           // retries after the first attempt
	BaseDelay  time.Duration // delay before the first retry, doubled each time
	MaxDelay   time.Duration // cap on the backoff delay
}

// Do runs fn up to 1+MaxRetries times, backing off exponentially between
// attempts. It stops early when the context is done and returns the last
// error.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	delay := p.BaseDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	var err error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}

		if err = fn(ctx); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}
