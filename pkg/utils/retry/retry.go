package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRetry marks errors which are worth trying again.
var ErrRetry = errors.New("retry")

// ErrExhausted is returned by Backoff made with Limited when no more retries are allowed.
var ErrExhausted = errors.New("retries are exhausted")

// Again marks err as retryable.
func Again(err error) error {
	return fmt.Errorf("%w: %w", ErrRetry, err)
}

// Backoff is a (blocking) function returns when to retry.
//
// # Args
//
// - context: context. If context is canceled, Backoff should return ctx.Err().
//
// - attempt: how many times it has been retried, including this one. It starts from 1.
//
// # Returns
//
// - error: nil if retry, non-nil if not.
type Backoff func(ctx context.Context, attempt int) error

// Static returns a Backoff which waits for a fixed interval or for context to be done.
func Static(interval time.Duration) Backoff {
	return func(ctx context.Context, _ int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if interval <= 0 {
			return nil
		}
		timer := time.NewTimer(interval)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
}

// Limited allows b to retry up to maxRetries times.
//
// After that, it returns ErrExhausted without calling b.
func Limited(maxRetries int, b Backoff) Backoff {
	return func(ctx context.Context, attempt int) error {
		if maxRetries < attempt {
			return ErrExhausted
		}
		return b(ctx, attempt)
	}
}

// Blocking calls f until it returns nil or an error which is not marked with Again.
//
// Before each retry, b is called.
// When b returns an error, Blocking gives up and returns
// that error joined with the last error from f.
//
// # Returns
//
// - T: last return value of f
//
// - error: error returned by f, or the reason of giving up
func Blocking[T any](ctx context.Context, b Backoff, f func() (T, error)) (T, error) {
	for attempt := 0; ; attempt++ {
		last, err := f()
		if err == nil || !errors.Is(err, ErrRetry) {
			return last, err
		}
		if berr := b(ctx, attempt+1); berr != nil {
			return last, errors.Join(berr, err)
		}
	}
}
