package source

import (
	"context"
	"errors"
	"time"

	"github.com/matsen/researchgraph/internal/metrics"
)

var (
	// ErrNotFound indicates the source has no record for the requested id.
	ErrNotFound = errors.New("paper not found")

	// ErrUpstreamUnavailable indicates the source could not be reached or kept
	// failing after the retry budget was spent.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// IsNotFound returns true if err resolves to ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnavailable returns true if err resolves to ErrUpstreamUnavailable.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}

// Outcome maps an error to the metrics outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case IsNotFound(err):
		return metrics.OutcomeNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	case IsUnavailable(err):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeError
	}
}

// Observe records the outcome and latency of one source call.
func Observe(sourceName, op string, start time.Time, err error) {
	metrics.UpstreamRequests.WithLabelValues(sourceName, op, Outcome(err)).Inc()
	metrics.UpstreamLatency.WithLabelValues(sourceName, op).Observe(time.Since(start).Seconds())
}
