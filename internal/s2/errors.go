package s2

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/matsen/researchgraph/internal/source"
)

// Errors returned by the S2 client. Each one resolves to the source taxonomy
// via errors.Is, so callers can stay source-agnostic.
var (
	// ErrNotFound indicates the paper was not found.
	ErrNotFound = fmt.Errorf("%w in Semantic Scholar", source.ErrNotFound)

	// ErrRateLimited indicates the rate limit has been exceeded.
	ErrRateLimited = fmt.Errorf("Semantic Scholar rate limit exceeded: %w", source.ErrUpstreamUnavailable)

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = fmt.Errorf("network error communicating with Semantic Scholar: %w", source.ErrUpstreamUnavailable)

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = fmt.Errorf("invalid response from Semantic Scholar: %w", source.ErrUpstreamUnavailable)
)

// APIError represents an HTTP error from the Semantic Scholar API.
type APIError struct {
	StatusCode int
	Message    string
	PaperID    string // For context in paper-related errors
}

func (e *APIError) Error() string {
	if e.PaperID != "" {
		return fmt.Sprintf("S2 API error (status %d): %s (paper: %s)", e.StatusCode, e.Message, e.PaperID)
	}
	return fmt.Sprintf("S2 API error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap maps the status onto the source taxonomy. S2 answers unknown ids
// with 404 and malformed ids with 400; both mean the id does not resolve.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound, http.StatusBadRequest:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return source.ErrUpstreamUnavailable
	}
}

// IsNotFound returns true if the error indicates a paper was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
