package source

import (
	"context"
	"fmt"

	"github.com/matsen/researchgraph/internal/cache"
	"github.com/matsen/researchgraph/internal/paper"
)

// Cached is a read-through cache in front of a Source. Only successful
// lookups are stored; not-found and upstream errors always go to the source.
type Cached struct {
	next  Source
	store cache.Cache
}

// NewCached wraps next with store.
func NewCached(next Source, store cache.Cache) *Cached {
	return &Cached{next: next, store: store}
}

func (c *Cached) Name() string {
	return c.next.Name()
}

func (c *Cached) key(kind, id string, limit int) string {
	return fmt.Sprintf("%s:%s:%s:%d", c.next.Name(), kind, id, limit)
}

func (c *Cached) GetPaper(ctx context.Context, id string) (*paper.Paper, error) {
	return cache.GetOrFetch(ctx, c.store, c.key("paper", id, 0), func(ctx context.Context) (*paper.Paper, error) {
		return c.next.GetPaper(ctx, id)
	})
}

func (c *Cached) GetReferences(ctx context.Context, id string, limit int) ([]paper.Paper, error) {
	return cache.GetOrFetch(ctx, c.store, c.key("refs", id, limit), func(ctx context.Context) ([]paper.Paper, error) {
		return c.next.GetReferences(ctx, id, limit)
	})
}

func (c *Cached) GetCitations(ctx context.Context, id string, limit int) ([]paper.Paper, error) {
	return cache.GetOrFetch(ctx, c.store, c.key("cites", id, limit), func(ctx context.Context) ([]paper.Paper, error) {
		return c.next.GetCitations(ctx, id, limit)
	})
}

func (c *Cached) SearchByText(ctx context.Context, query string, limit int) ([]paper.Paper, error) {
	return cache.GetOrFetch(ctx, c.store, c.key("search", query, limit), func(ctx context.Context) ([]paper.Paper, error) {
		return c.next.SearchByText(ctx, query, limit)
	})
}
