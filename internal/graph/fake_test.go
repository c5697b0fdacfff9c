package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/matsen/researchgraph/internal/paper"
	"github.com/matsen/researchgraph/internal/source"
	"golang.org/x/time/rate"
)

// fakeSource serves an in-memory citation graph. Citations are derived from
// the reference lists, so the data is always consistent.
type fakeSource struct {
	mu        sync.Mutex
	papers    map[string]paper.Paper
	failPaper map[string]error
	failRefs  error
	failCites error
	calls     map[string]int
}

func newFakeSource(papers ...paper.Paper) *fakeSource {
	f := &fakeSource{
		papers:    make(map[string]paper.Paper),
		failPaper: make(map[string]error),
		calls:     make(map[string]int),
	}
	for _, p := range papers {
		p.ReferenceIDs = paper.CleanReferenceIDs(p.ID, p.ReferenceIDs)
		f.papers[p.ID] = p
	}
	return f
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) record(op, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op+":"+id]++
}

func (f *fakeSource) unavailable(id string) {
	f.failPaper[id] = fmt.Errorf("%w: simulated outage for %s", source.ErrUpstreamUnavailable, id)
}

func (f *fakeSource) GetPaper(ctx context.Context, id string) (*paper.Paper, error) {
	f.record("paper", id)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.failPaper[id]; err != nil {
		return nil, err
	}
	p, ok := f.papers[id]
	if !ok {
		return nil, source.ErrNotFound
	}
	return &p, nil
}

func (f *fakeSource) GetReferences(ctx context.Context, id string, limit int) ([]paper.Paper, error) {
	f.record("refs", id)
	if f.failRefs != nil {
		return nil, f.failRefs
	}
	p, ok := f.papers[id]
	if !ok {
		return nil, source.ErrNotFound
	}
	var out []paper.Paper
	for _, ref := range p.ReferenceIDs {
		rp, ok := f.papers[ref]
		if !ok {
			rp = paper.Paper{ID: ref}
		}
		rp.Abstract = ""
		out = append(out, rp)
	}
	return truncate(out, limit), nil
}

func (f *fakeSource) GetCitations(ctx context.Context, id string, limit int) ([]paper.Paper, error) {
	f.record("cites", id)
	if f.failCites != nil {
		return nil, f.failCites
	}
	var out []paper.Paper
	for _, p := range f.papers {
		for _, ref := range p.ReferenceIDs {
			if ref == id {
				out = append(out, p)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return truncate(out, limit), nil
}

func (f *fakeSource) SearchByText(ctx context.Context, query string, limit int) ([]paper.Paper, error) {
	var out []paper.Paper
	for _, p := range f.papers {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return truncate(out, limit), nil
}

func truncate(papers []paper.Paper, limit int) []paper.Paper {
	if limit > 0 && len(papers) > limit {
		return papers[:limit]
	}
	return papers
}

// blockingSource blocks every non-seed GetPaper until ctx is done.
type blockingSource struct {
	*fakeSource
	seedID  string
	started chan struct{}
	once    sync.Once
}

func (b *blockingSource) GetPaper(ctx context.Context, id string) (*paper.Paper, error) {
	if id == b.seedID {
		return b.fakeSource.GetPaper(ctx, id)
	}
	b.once.Do(func() { close(b.started) })
	<-ctx.Done()
	return nil, fmt.Errorf("%w: %w", source.ErrUpstreamUnavailable, ctx.Err())
}

// pacedSource admits upstream calls through a rate limiter, as the HTTP
// clients do.
type pacedSource struct {
	*fakeSource
	limiter *rate.Limiter
}

func (p *pacedSource) wait(ctx context.Context) error {
	if err := source.Wait(ctx, p.limiter); err != nil {
		return fmt.Errorf("%w: %w", source.ErrUpstreamUnavailable, err)
	}
	return nil
}

func (p *pacedSource) GetPaper(ctx context.Context, id string) (*paper.Paper, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.fakeSource.GetPaper(ctx, id)
}

func (p *pacedSource) GetReferences(ctx context.Context, id string, limit int) ([]paper.Paper, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.fakeSource.GetReferences(ctx, id, limit)
}

func (p *pacedSource) GetCitations(ctx context.Context, id string, limit int) ([]paper.Paper, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.fakeSource.GetCitations(ctx, id, limit)
}

// scenarioPapers is a small neighborhood:
//
//	S cites B and C; F cites S and B; D cites B, C and E but not S.
//	G is unrelated.
func scenarioPapers() []paper.Paper {
	return []paper.Paper{
		{ID: "S", Title: "Seed", Year: 2020, CitationCount: 5, Abstract: "seed abstract", ReferenceIDs: []string{"B", "C"}},
		{ID: "B", Title: "Bee", Year: 2000, CitationCount: 100, ReferenceIDs: []string{"X"}},
		{ID: "C", Title: "Cee", Year: 2005, CitationCount: 50, ReferenceIDs: []string{"X", "Y"}},
		{ID: "D", Title: "Dee", Year: 2021, CitationCount: 10, ReferenceIDs: []string{"B", "C", "E"}},
		{ID: "E", Title: "Eee", Year: 1999},
		{ID: "F", Title: "", Year: 2022, CitationCount: 1, ReferenceIDs: []string{"S", "B"}},
		{ID: "G", Title: "Unrelated", Year: 2010, ReferenceIDs: []string{"Z"}},
	}
}
