package main

import (
	"context"
	"errors"

	"github.com/matsen/researchgraph/internal/source"
)

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (invalid config file, unreachable cache)
	ExitNotFound    = 3 // Seed paper not found upstream
	ExitUpstream    = 4 // Bibliographic source unavailable or build timed out
)

// exitCodeFor maps a build or lookup error to an exit code.
func exitCodeFor(err error) int {
	switch {
	case source.IsNotFound(err):
		return ExitNotFound
	case errors.Is(err, context.DeadlineExceeded), source.IsUnavailable(err):
		return ExitUpstream
	default:
		return ExitError
	}
}
