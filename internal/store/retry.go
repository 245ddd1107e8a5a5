package store

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ReadWithRetry runs an idempotent read up to tries times with exponential
// backoff. Context errors stop the loop. Mutations must not go through here.
func ReadWithRetry[T any](ctx context.Context, tries uint, op string, read func(context.Context) (T, error)) (T, error) {
	if tries < 1 {
		tries = 1
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond

	v, err := backoff.Retry(ctx, func() (T, error) {
		v, err := read(ctx)
		if err != nil && ctx.Err() != nil {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(tries))
	if err != nil {
		var zero T
		return zero, WrapStorage(op, err)
	}
	return v, nil
}
