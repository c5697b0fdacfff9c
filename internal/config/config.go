// Package config handles rgraph configuration: defaults, the YAML config
// file, and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/matsen/researchgraph/internal/cache"
	"github.com/matsen/researchgraph/internal/graph"
	"github.com/matsen/researchgraph/internal/source"
)

// Source names accepted by the source key.
const (
	SourceS2       = "s2"
	SourceOpenAlex = "openalex"
)

// ErrInvalid is returned when a loaded config fails validation.
var ErrInvalid = errors.New("invalid config")

// Config represents configuration stored in ~/.config/rgraph/config.yml.
type Config struct {
	Listen         string        `yaml:"listen" validate:"required"`
	Source         string        `yaml:"source" validate:"oneof=s2 openalex"`
	S2APIKey       string        `yaml:"s2_api_key,omitempty"`
	OpenAlexMailto string        `yaml:"openalex_mailto,omitempty" validate:"omitempty,email"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
	MaxRetries     int           `yaml:"max_retries" validate:"gte=0,lte=10"`
	RetryBackoff   time.Duration `yaml:"retry_backoff" validate:"gt=0"`

	Cache CacheConfig `yaml:"cache"`
	Graph GraphConfig `yaml:"graph"`
	LLM   LLMConfig   `yaml:"llm"`

	CORSOrigins []string `yaml:"cors_origins" validate:"min=1"`
}

// CacheConfig selects and sizes the lookup cache.
type CacheConfig struct {
	Backend   string        `yaml:"backend" validate:"oneof=memory sqlite redis none"`
	TTL       time.Duration `yaml:"ttl" validate:"gt=0"`
	Size      int           `yaml:"size" validate:"gt=0"`
	Path      string        `yaml:"path,omitempty"`
	RedisAddr string        `yaml:"redis_addr,omitempty" validate:"required_if=Backend redis"`
}

// GraphConfig bounds graph builds.
type GraphConfig struct {
	ReferenceCap        int           `yaml:"reference_cap" validate:"gt=0"`
	CitationCap         int           `yaml:"citation_cap" validate:"gt=0"`
	CandidateCap        int           `yaml:"candidate_cap" validate:"gt=0"`
	DirectFloor         float64       `yaml:"direct_floor" validate:"gt=0,lte=1"`
	CouplingProbes      int           `yaml:"coupling_probes" validate:"gte=0"`
	ProbeCiters         int           `yaml:"probe_citers" validate:"gt=0"`
	MinSharedReferences int           `yaml:"min_shared_references" validate:"gt=0"`
	FetchConcurrency    int           `yaml:"fetch_concurrency" validate:"gt=0,lte=64"`
	Pairwise            bool          `yaml:"pairwise"`
	BuildTimeout        time.Duration `yaml:"build_timeout" validate:"gt=0"`
}

// LLMConfig points at the text-generation collaborator. An empty URL
// disables it.
type LLMConfig struct {
	URL   string `yaml:"url,omitempty" validate:"omitempty,url"`
	Model string `yaml:"model,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	g := graph.DefaultOptions()
	return &Config{
		Listen:         ":8000",
		Source:         SourceOpenAlex,
		RequestTimeout: 5 * time.Second,
		MaxRetries:     3,
		RetryBackoff:   250 * time.Millisecond,
		Cache: CacheConfig{
			Backend: cache.BackendMemory,
			TTL:     cache.DefaultTTL,
			Size:    cache.DefaultSize,
		},
		Graph: GraphConfig{
			ReferenceCap:        g.ReferenceCap,
			CitationCap:         g.CitationCap,
			CandidateCap:        g.CandidateCap,
			DirectFloor:         g.DirectFloor,
			CouplingProbes:      g.CouplingProbes,
			ProbeCiters:         g.ProbeCiters,
			MinSharedReferences: g.MinSharedReferences,
			FetchConcurrency:    g.FetchConcurrency,
			Pairwise:            g.Pairwise,
			BuildTimeout:        g.BuildTimeout,
		},
		LLM: LLMConfig{
			Model: "llama3.2",
		},
		CORSOrigins: []string{"*"},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// GraphOptions converts the graph section for the builder.
func (c *Config) GraphOptions() graph.Options {
	return graph.Options{
		ReferenceCap:        c.Graph.ReferenceCap,
		CitationCap:         c.Graph.CitationCap,
		CandidateCap:        c.Graph.CandidateCap,
		DirectFloor:         c.Graph.DirectFloor,
		CouplingProbes:      c.Graph.CouplingProbes,
		ProbeCiters:         c.Graph.ProbeCiters,
		MinSharedReferences: c.Graph.MinSharedReferences,
		FetchConcurrency:    c.Graph.FetchConcurrency,
		Pairwise:            c.Graph.Pairwise,
		BuildTimeout:        c.Graph.BuildTimeout,
	}
}

// RetryPolicy returns the per-call retry budget.
func (c *Config) RetryPolicy() source.RetryPolicy {
	p := source.DefaultRetryPolicy()
	p.MaxRetries = c.MaxRetries
	p.Backoff = c.RetryBackoff
	return p
}

// CacheOptions converts the cache section for cache.Open. The SQLite path
// defaults to CachePath().
func (c *Config) CacheOptions() cache.Options {
	path := c.Cache.Path
	if path == "" && c.Cache.Backend == cache.BackendSQLite {
		path = CachePath()
	}
	return cache.Options{
		Backend:   c.Cache.Backend,
		TTL:       c.Cache.TTL,
		Size:      c.Cache.Size,
		Path:      ExpandPath(path),
		RedisAddr: c.Cache.RedisAddr,
	}
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
