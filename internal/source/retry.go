package source

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 3

	// DefaultBackoff is the delay before the first retry. It doubles per retry.
	DefaultBackoff = 250 * time.Millisecond

	// DefaultMaxBackoff caps a single delay, including server Retry-After hints.
	DefaultMaxBackoff = 4 * time.Second
)

// TransientError marks a failure worth retrying (rate limiting, 5xx, network).
type TransientError struct {
	Err        error
	RetryAfter time.Duration // Server hint, 0 if none
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as retryable.
func Transient(err error, retryAfter time.Duration) error {
	return &TransientError{Err: err, RetryAfter: retryAfter}
}

// IsTransient returns true if err is marked retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// RetryPolicy bounds how long a single source call may keep retrying.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: DefaultMaxRetries,
		Backoff:    DefaultBackoff,
		MaxBackoff: DefaultMaxBackoff,
	}
}

// Do runs fn until it succeeds, fails permanently, or the retry budget is
// spent. Exhaustion and cancellation both surface as ErrUpstreamUnavailable;
// cancellation also wraps the context error. No retry is scheduled once ctx
// is done.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	delay := p.Backoff
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, ctxErr)
		}
		if !IsTransient(err) {
			return err
		}
		if attempt >= p.MaxRetries {
			return fmt.Errorf("%w: giving up after %d attempts: %w", ErrUpstreamUnavailable, attempt+1, err)
		}

		wait := delay
		var te *TransientError
		if errors.As(err, &te) && te.RetryAfter > wait {
			wait = te.RetryAfter
		}
		if p.MaxBackoff > 0 && wait > p.MaxBackoff {
			wait = p.MaxBackoff
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, ctx.Err())
		case <-timer.C:
		}
		delay *= 2
	}
}
