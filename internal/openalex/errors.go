package openalex

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/matsen/researchgraph/internal/source"
)

var (
	// ErrNotFound indicates the work was not found.
	ErrNotFound = fmt.Errorf("%w in OpenAlex", source.ErrNotFound)

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = fmt.Errorf("network error communicating with OpenAlex: %w", source.ErrUpstreamUnavailable)

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = fmt.Errorf("invalid response from OpenAlex: %w", source.ErrUpstreamUnavailable)
)

// APIError represents an HTTP error from the OpenAlex API.
type APIError struct {
	StatusCode int
	WorkID     string
}

func (e *APIError) Error() string {
	if e.WorkID != "" {
		return fmt.Sprintf("OpenAlex API error (status %d) for %s", e.StatusCode, e.WorkID)
	}
	return fmt.Sprintf("OpenAlex API error (status %d)", e.StatusCode)
}

// Unwrap maps the status onto the source taxonomy.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return source.ErrUpstreamUnavailable
}

// IsNotFound returns true if the error indicates a work was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
