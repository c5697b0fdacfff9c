// Package cache provides the TTL cache collaborator used to memoize
// bibliographic lookups across graph builds. Entries are opaque bytes; the
// TTL is fixed per backend because bibliographic metadata changes slowly and
// every entry ages the same way.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matsen/researchgraph/internal/metrics"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

const (
	// DefaultTTL is how long an entry is served before it is refetched.
	DefaultTTL = 24 * time.Hour

	// DefaultSize is the in-memory entry limit.
	DefaultSize = 4096
)

// Cache stores opaque values by key with a backend-wide TTL.
type Cache interface {
	// Get returns the value and true on a fresh hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// Purge drops every entry.
	Purge(ctx context.Context) error
	Close() error
	// Backend names the implementation for metrics and diagnostics.
	Backend() string
}

// Pruner is implemented by backends that keep expired entries until asked
// to drop them.
type Pruner interface {
	PruneExpired(ctx context.Context) (int64, error)
}

// PruneExpired drops expired entries from c and returns how many were
// removed. Backends that expire entries on their own report 0.
func PruneExpired(ctx context.Context, c Cache) (int64, error) {
	if p, ok := c.(Pruner); ok {
		return p.PruneExpired(ctx)
	}
	return 0, nil
}

// Options selects and configures a backend.
type Options struct {
	Backend   string
	TTL       time.Duration
	Size      int    // memory only
	Path      string // sqlite only
	RedisAddr string // redis only
}

// Open creates the backend described by opts.
func Open(ctx context.Context, opts Options) (Cache, error) {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	switch opts.Backend {
	case BackendMemory, "":
		size := opts.Size
		if size <= 0 {
			size = DefaultSize
		}
		return NewMemory(size, ttl), nil
	case BackendSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite cache requires a path")
		}
		return OpenSQLite(opts.Path, ttl)
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis cache requires an address")
		}
		return DialRedis(ctx, opts.RedisAddr, ttl)
	case BackendNone:
		return None{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", opts.Backend)
	}
}

// GetOrFetch returns the cached value for key, or calls fetch and stores a
// successful result. Backend failures degrade to a miss; they never fail the
// lookup. Errors from fetch are returned as-is and not cached.
func GetOrFetch[T any](ctx context.Context, c Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return fetch(ctx)
	}

	data, ok, err := c.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues(c.Backend(), "error").Inc()
	case ok:
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			metrics.CacheLookups.WithLabelValues(c.Backend(), "hit").Inc()
			return v, nil
		}
		metrics.CacheLookups.WithLabelValues(c.Backend(), "error").Inc()
	default:
		metrics.CacheLookups.WithLabelValues(c.Backend(), "miss").Inc()
	}

	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}

	if encoded, err := json.Marshal(v); err == nil {
		if err := c.Set(ctx, key, encoded); err != nil {
			metrics.CacheLookups.WithLabelValues(c.Backend(), "error").Inc()
		}
	}
	return v, nil
}

// None is a Cache that stores nothing.
type None struct{}

func (None) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (None) Set(context.Context, string, []byte) error         { return nil }
func (None) Purge(context.Context) error                       { return nil }
func (None) Close() error                                      { return nil }
func (None) Backend() string                                   { return BackendNone }
