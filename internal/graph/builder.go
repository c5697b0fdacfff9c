package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matsen/researchgraph/internal/metrics"
	"github.com/matsen/researchgraph/internal/source"
	"go.uber.org/zap"
)

// Builder runs complete graph builds against a source.
// It holds no per-build state and is safe for concurrent use.
type Builder struct {
	src    source.Source
	opts   Options
	logger *zap.Logger
}

// NewBuilder creates a builder. A nil logger discards output.
func NewBuilder(src source.Source, opts Options, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{src: src, opts: opts.normalized(), logger: logger}
}

// Options returns the effective options.
func (b *Builder) Options() Options {
	return b.opts
}

// Build resolves paperID and returns its neighborhood graph laid out on a
// width x height canvas. Non-positive dimensions become DefaultCanvas.
//
// An unresolvable seed fails with source.ErrNotFound, an unreachable one with
// source.ErrUpstreamUnavailable. A cancelled or expired ctx fails the whole
// build; no partial payload is returned.
func (b *Builder) Build(ctx context.Context, paperID string, width, height int) (*Payload, error) {
	if width <= 0 {
		width = DefaultCanvas
	}
	if height <= 0 {
		height = DefaultCanvas
	}

	ctx, cancel := context.WithTimeout(ctx, b.opts.BuildTimeout)
	defer cancel()

	start := time.Now()
	log := b.logger.With(
		zap.String("build_id", uuid.NewString()),
		zap.String("paper_id", paperID),
		zap.String("source", b.src.Name()),
	)

	payload, err := b.build(ctx, log, paperID, float64(width), float64(height))

	outcome := source.Outcome(err)
	metrics.GraphBuilds.WithLabelValues(outcome).Inc()
	metrics.GraphBuildLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		log.Info("graph build failed", zap.String("outcome", outcome), zap.Error(err))
		return nil, err
	}
	log.Info("graph built",
		zap.Int("nodes", len(payload.Nodes)),
		zap.Int("edges", len(payload.Edges)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return payload, nil
}

func (b *Builder) build(ctx context.Context, log *zap.Logger, paperID string, width, height float64) (*Payload, error) {
	seed, err := b.src.GetPaper(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("resolving seed %s: %w", paperID, err)
	}
	log.Debug("seed resolved", zap.String("seed_id", seed.ID), zap.Int("references", len(seed.ReferenceIDs)))

	sel := NewSelector(b.src, b.opts, log)
	hood, err := sel.Select(ctx, *seed)
	if err != nil {
		return nil, fmt.Errorf("selecting neighborhood of %s: %w", seed.ID, err)
	}

	payload := Assemble(hood, b.opts.DirectFloor, b.opts.Pairwise, width, height)

	// An expired build yields no payload.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return payload, nil
}
