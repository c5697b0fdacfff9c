package source

import (
	"context"
	"testing"
	"time"

	"github.com/matsen/researchgraph/internal/cache"
	"github.com/matsen/researchgraph/internal/paper"
)

type countingSource struct {
	papers map[string]paper.Paper
	calls  map[string]int
}

func newCountingSource() *countingSource {
	return &countingSource{
		papers: map[string]paper.Paper{
			"A": {ID: "A", Title: "Seed", ReferenceIDs: []string{"B"}},
			"B": {ID: "B", Title: "Ref"},
		},
		calls: make(map[string]int),
	}
}

func (s *countingSource) Name() string { return "fake" }

func (s *countingSource) GetPaper(_ context.Context, id string) (*paper.Paper, error) {
	s.calls["paper"]++
	p, ok := s.papers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *countingSource) GetReferences(_ context.Context, id string, _ int) ([]paper.Paper, error) {
	s.calls["refs"]++
	var out []paper.Paper
	for _, ref := range s.papers[id].ReferenceIDs {
		out = append(out, s.papers[ref])
	}
	return out, nil
}

func (s *countingSource) GetCitations(context.Context, string, int) ([]paper.Paper, error) {
	s.calls["cites"]++
	return nil, nil
}

func (s *countingSource) SearchByText(context.Context, string, int) ([]paper.Paper, error) {
	s.calls["search"]++
	return []paper.Paper{s.papers["A"]}, nil
}

func TestCached_ReadThrough(t *testing.T) {
	ctx := context.Background()
	next := newCountingSource()
	src := NewCached(next, cache.NewMemory(64, time.Hour))

	for i := 0; i < 3; i++ {
		p, err := src.GetPaper(ctx, "A")
		if err != nil {
			t.Fatalf("GetPaper() error = %v", err)
		}
		if p.Title != "Seed" || len(p.ReferenceIDs) != 1 {
			t.Errorf("GetPaper() = %+v", p)
		}
		refs, err := src.GetReferences(ctx, "A", 10)
		if err != nil || len(refs) != 1 {
			t.Fatalf("GetReferences() = %v, %v", refs, err)
		}
		if _, err := src.SearchByText(ctx, "seed", 5); err != nil {
			t.Fatal(err)
		}
	}

	for _, op := range []string{"paper", "refs", "search"} {
		if next.calls[op] != 1 {
			t.Errorf("%s calls = %d, want 1", op, next.calls[op])
		}
	}
	if src.Name() != "fake" {
		t.Errorf("Name() = %s, want fake", src.Name())
	}
}

func TestCached_NotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	next := newCountingSource()
	src := NewCached(next, cache.NewMemory(64, time.Hour))

	for i := 0; i < 2; i++ {
		if _, err := src.GetPaper(ctx, "missing"); !IsNotFound(err) {
			t.Fatalf("GetPaper(missing) error = %v, want not found", err)
		}
	}
	if next.calls["paper"] != 2 {
		t.Errorf("paper calls = %d, want 2", next.calls["paper"])
	}
}

func TestCached_LimitIsPartOfKey(t *testing.T) {
	ctx := context.Background()
	next := newCountingSource()
	src := NewCached(next, cache.NewMemory(64, time.Hour))

	src.GetReferences(ctx, "A", 10)
	src.GetReferences(ctx, "A", 20)
	if next.calls["refs"] != 2 {
		t.Errorf("refs calls = %d, want 2", next.calls["refs"])
	}
}
