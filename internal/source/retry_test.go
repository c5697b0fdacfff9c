package source

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy(retries int) RetryPolicy {
	return RetryPolicy{MaxRetries: retries, Backoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
}

func TestRetryPolicy_Do(t *testing.T) {
	errPermanent := errors.New("bad request")

	tests := []struct {
		name          string
		failures      int
		failWith      error
		retries       int
		wantCalls     int
		wantErr       bool
		wantUnavail   bool
		wantPermanent bool
	}{
		{
			name:      "succeeds first try",
			retries:   3,
			wantCalls: 1,
		},
		{
			name:      "recovers after transient failures",
			failures:  2,
			failWith:  Transient(errors.New("503"), 0),
			retries:   3,
			wantCalls: 3,
		},
		{
			name:        "exhausts budget",
			failures:    10,
			failWith:    Transient(errors.New("503"), 0),
			retries:     2,
			wantCalls:   3,
			wantErr:     true,
			wantUnavail: true,
		},
		{
			name:          "permanent error is not retried",
			failures:      10,
			failWith:      errPermanent,
			retries:       3,
			wantCalls:     1,
			wantErr:       true,
			wantPermanent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := fastPolicy(tt.retries).Do(context.Background(), func(context.Context) error {
				calls++
				if calls <= tt.failures {
					return tt.failWith
				}
				return nil
			})

			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("Do() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantUnavail && !IsUnavailable(err) {
				t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
			}
			if tt.wantPermanent && !errors.Is(err, errPermanent) {
				t.Errorf("expected permanent error, got %v", err)
			}
		})
	}
}

func TestRetryPolicy_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxRetries: 5, Backoff: time.Hour}

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- policy.Do(ctx, func(context.Context) error {
			calls++
			return Transient(errors.New("429"), 0)
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !IsUnavailable(err) || !errors.Is(err, context.Canceled) {
			t.Errorf("Do() error = %v, want unavailable wrapping context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Do() did not return after cancel")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{ErrNotFound, "not_found"},
		{ErrUpstreamUnavailable, "unavailable"},
		{context.DeadlineExceeded, "canceled"},
		{errors.New("x"), "error"},
	}
	for _, tt := range tests {
		if got := Outcome(tt.err); got != tt.want {
			t.Errorf("Outcome(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
