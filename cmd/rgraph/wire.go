package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/matsen/researchgraph/internal/cache"
	"github.com/matsen/researchgraph/internal/config"
	"github.com/matsen/researchgraph/internal/graph"
	"github.com/matsen/researchgraph/internal/llm"
	"github.com/matsen/researchgraph/internal/openalex"
	"github.com/matsen/researchgraph/internal/s2"
	"github.com/matsen/researchgraph/internal/source"
	"go.uber.org/zap"
)

// app holds the collaborators shared by the commands.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   cache.Cache
	src     source.Source
	builder *graph.Builder
	llm     *llm.Service
}

// Close releases the cache and flushes the logger.
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing cache", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// newLogger returns a development logger at debug level when debug is set,
// a production JSON logger on stderr for long-running services, and a no-op
// logger for one-shot commands. Every line carries the process instance id.
func newLogger(debug, service bool) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	switch {
	case debug:
		logger, err = zap.NewDevelopment()
	case service:
		logger, err = zap.NewProduction()
	default:
		return zap.NewNop(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger.With(zap.String("instance", uuid.NewString()), zap.String("version", Version)), nil
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// rateLimited is implemented by sources that pace their upstream calls.
type rateLimited interface {
	RateLimit() float64
}

// mustOpenApp loads config and builds every collaborator, exits on error.
// service selects production logging for serve and mcp.
// The caller is responsible for calling Close() on the returned app.
func mustOpenApp(ctx context.Context, service bool) *app {
	cfg := mustLoadConfig()

	logger, err := newLogger(debugLog, service)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	store, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		exitWithError(ExitConfigError, "opening %s cache: %v", cfg.Cache.Backend, err)
	}

	upstream := newSource(cfg)
	opts := graphOptions(cfg, upstream)
	src := source.NewCached(upstream, store)
	logger.Info("source configured",
		zap.String("source", src.Name()),
		zap.String("cache", store.Backend()),
		zap.Duration("build_timeout", opts.BuildTimeout))

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		src:     src,
		builder: graph.NewBuilder(src, opts, logger),
		llm:     newLLM(cfg, logger),
	}
}

// graphOptions stretches the build deadline to the upstream pacing so that a
// slow source still gets every fetch of a build in before the deadline.
func graphOptions(cfg *config.Config, upstream source.Source) graph.Options {
	opts := cfg.GraphOptions()
	if rl, ok := upstream.(rateLimited); ok {
		opts = opts.PacedBy(rl.RateLimit())
	}
	return opts
}

// newSource selects the upstream bibliographic source.
func newSource(cfg *config.Config) source.Source {
	if cfg.Source == config.SourceS2 {
		opts := []s2.ClientOption{
			s2.WithTimeout(cfg.RequestTimeout),
			s2.WithRetryPolicy(cfg.RetryPolicy()),
		}
		if cfg.S2APIKey != "" {
			opts = append(opts, s2.WithAPIKey(cfg.S2APIKey))
		}
		return s2.NewClient(opts...)
	}
	opts := []openalex.ClientOption{
		openalex.WithTimeout(cfg.RequestTimeout),
		openalex.WithRetryPolicy(cfg.RetryPolicy()),
	}
	if cfg.OpenAlexMailto != "" {
		opts = append(opts, openalex.WithMailto(cfg.OpenAlexMailto))
	}
	return openalex.NewClient(opts...)
}

// newLLM returns the text-generation service; it stays disabled without a URL.
func newLLM(cfg *config.Config, logger *zap.Logger) *llm.Service {
	if cfg.LLM.URL == "" {
		return llm.NewService(nil, logger)
	}
	gen := llm.NewOllama(llm.WithBaseURL(cfg.LLM.URL), llm.WithModel(cfg.LLM.Model))
	return llm.NewService(gen, logger)
}
