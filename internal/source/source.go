// Package source defines the bibliographic data client contract shared by
// the Semantic Scholar and OpenAlex clients, plus the retry and caching
// layers wrapped around them.
package source

import (
	"context"

	"github.com/matsen/researchgraph/internal/paper"
)

// Source is a bibliographic data source.
//
// GetPaper returns the full record, including ReferenceIDs. GetReferences and
// GetCitations return listings whose entries carry at least an ID; a listing
// may be truncated by the upstream and that is not an error.
type Source interface {
	// Name identifies the source in cache keys, logs, and metrics.
	Name() string

	GetPaper(ctx context.Context, id string) (*paper.Paper, error)
	GetReferences(ctx context.Context, id string, limit int) ([]paper.Paper, error)
	GetCitations(ctx context.Context, id string, limit int) ([]paper.Paper, error)

	// SearchByText returns matches ordered by relevance, best first.
	SearchByText(ctx context.Context, query string, limit int) ([]paper.Paper, error)
}
