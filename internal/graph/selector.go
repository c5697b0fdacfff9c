package graph

import (
	"context"
	"sort"
	"sync"

	"github.com/matsen/researchgraph/internal/metrics"
	"github.com/matsen/researchgraph/internal/paper"
	"github.com/matsen/researchgraph/internal/source"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// listingOverfetch widens seed listings so truncation to the cap picks the
// most-cited entries rather than whatever the upstream returned first.
const listingOverfetch = 4

// Relation records how a candidate is connected to the seed.
type Relation uint8

const (
	// RelReference marks a paper the seed cites.
	RelReference Relation = 1 << iota
	// RelCiter marks a paper that cites the seed.
	RelCiter
)

// Direct reports whether the candidate is a direct reference or citer.
// A zero Relation is a coupling-only candidate.
func (r Relation) Direct() bool {
	return r != 0
}

func (r Relation) String() string {
	switch r {
	case RelReference:
		return "reference"
	case RelCiter:
		return "citer"
	case RelReference | RelCiter:
		return "reference+citer"
	default:
		return "coupling"
	}
}

// FetchResult is the outcome of fetching a candidate's own reference list.
// It is one of Enriched, DirectOnly or Excluded.
type FetchResult interface {
	fetchResult()
}

// Enriched carries the candidate's reference set.
type Enriched struct {
	References map[string]bool
}

// DirectOnly marks a direct candidate whose reference list could not be fetched.
type DirectOnly struct {
	Err error
}

// Excluded marks a coupling-only candidate whose reference list could not be
// fetched; it has no remaining signal and is dropped.
type Excluded struct {
	Err error
}

func (Enriched) fetchResult()   {}
func (DirectOnly) fetchResult() {}
func (Excluded) fetchResult()   {}

// outcomeLabel is the metrics label for a result.
func outcomeLabel(r FetchResult) string {
	switch r.(type) {
	case Enriched:
		return "enriched"
	case DirectOnly:
		return "direct_only"
	default:
		return "excluded"
	}
}

// Candidate is a paper considered for inclusion in the graph.
type Candidate struct {
	Paper    paper.Paper
	Relation Relation
	Result   FetchResult
}

// Neighborhood is the selector's output.
type Neighborhood struct {
	Seed       paper.Paper
	SeedRefs   map[string]bool
	Candidates []Candidate
}

// Selector determines and enriches the candidate set of a seed.
type Selector struct {
	src    source.Source
	opts   Options
	logger *zap.Logger
}

// NewSelector creates a selector. A nil logger discards output.
func NewSelector(src source.Source, opts Options, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{src: src, opts: opts.normalized(), logger: logger}
}

// Select lists the seed's references and citers, discovers coupling-only
// peers, caps the candidate set, and fetches each candidate's references.
//
// Upstream failures below the seed record degrade the result; only a
// cancelled or expired ctx is returned as an error.
func (s *Selector) Select(ctx context.Context, seed paper.Paper) (*Neighborhood, error) {
	refs, citers, err := s.listSeed(ctx, seed)
	if err != nil {
		return nil, err
	}

	seedRefs := seed.ReferenceSet()
	for _, r := range refs {
		seedRefs[r.ID] = true
	}

	byID := make(map[string]*Candidate)
	add := func(p paper.Paper, rel Relation) {
		// References past ReferenceCap can come back through coupling discovery.
		if seedRefs[p.ID] {
			rel |= RelReference
		}
		if c, ok := byID[p.ID]; ok {
			c.Relation |= rel
			mergeMetadata(&c.Paper, p)
			return
		}
		byID[p.ID] = &Candidate{Paper: p, Relation: rel}
	}
	for _, p := range capped(refs, s.opts.ReferenceCap) {
		add(p, RelReference)
	}
	for _, p := range capped(citers, s.opts.CitationCap) {
		add(p, RelCiter)
	}

	coupled, err := s.discoverCoupled(ctx, seed.ID, refs)
	if err != nil {
		return nil, err
	}
	for _, p := range coupled {
		add(p, 0)
	}

	candidates := make([]Candidate, 0, len(byID))
	for _, c := range byID {
		candidates = append(candidates, *c)
	}
	sortCandidates(candidates)
	if len(candidates) > s.opts.CandidateCap {
		candidates = candidates[:s.opts.CandidateCap]
	}

	if err := s.enrich(ctx, seed.ID, seedRefs, candidates); err != nil {
		return nil, err
	}

	return &Neighborhood{Seed: seed, SeedRefs: seedRefs, Candidates: candidates}, nil
}

// listSeed fetches the seed's references and citers concurrently. A failed
// reference listing falls back to the seed record's reference ids and a
// failed citer listing to none.
func (s *Selector) listSeed(ctx context.Context, seed paper.Paper) (refs, citers []paper.Paper, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := s.src.GetReferences(gctx, seed.ID, s.opts.ReferenceCap*listingOverfetch)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("reference listing failed, using seed record",
				zap.String("paper_id", seed.ID), zap.Error(err))
		}
		refs = list
		return nil
	})

	g.Go(func() error {
		list, err := s.src.GetCitations(gctx, seed.ID, s.opts.CitationCap*listingOverfetch)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("citation listing failed, continuing without citers",
				zap.String("paper_id", seed.ID), zap.Error(err))
		}
		citers = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for _, id := range seed.ReferenceIDs {
		refs = append(refs, paper.Paper{ID: id})
	}
	refs = paper.Dedupe(refs, seed.ID)
	citers = paper.Dedupe(citers, seed.ID)
	paper.SortByCitations(refs)
	paper.SortByCitations(citers)
	return refs, citers, nil
}

// discoverCoupled probes the citers of the seed's most-cited references and
// returns papers citing at least MinSharedReferences of them. refs must be
// sorted by citation count.
func (s *Selector) discoverCoupled(ctx context.Context, seedID string, refs []paper.Paper) ([]paper.Paper, error) {
	probes := capped(refs, s.opts.CouplingProbes)
	if len(probes) < s.opts.MinSharedReferences {
		return nil, nil
	}

	var (
		mu     sync.Mutex
		shared = make(map[string]int)
		seen   = make(map[string]paper.Paper)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.FetchConcurrency)
	for _, probe := range probes {
		g.Go(func() error {
			list, err := s.src.GetCitations(gctx, probe.ID, s.opts.ProbeCiters)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Debug("coupling probe failed",
					zap.String("probe_id", probe.ID), zap.Error(err))
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			for _, p := range paper.Dedupe(list, seedID) {
				shared[p.ID]++
				if prev, ok := seen[p.ID]; ok {
					mergeMetadata(&prev, p)
					p = prev
				}
				seen[p.ID] = p
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var coupled []paper.Paper
	for id, n := range shared {
		if n >= s.opts.MinSharedReferences {
			coupled = append(coupled, seen[id])
		}
	}
	paper.SortByCitations(coupled)
	return coupled, nil
}

// enrich fetches every candidate's full record concurrently and sets its
// Result. Only ctx errors abort.
func (s *Selector) enrich(ctx context.Context, seedID string, seedRefs map[string]bool, candidates []Candidate) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.FetchConcurrency)

	for i := range candidates {
		c := &candidates[i]
		if seedRefs[c.Paper.ID] {
			c.Relation |= RelReference
		}
		g.Go(func() error {
			full, err := s.src.GetPaper(gctx, c.Paper.ID)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if c.Relation.Direct() {
					c.Result = DirectOnly{Err: err}
				} else {
					c.Result = Excluded{Err: err}
				}
				s.logger.Warn("candidate degraded",
					zap.String("paper_id", c.Paper.ID),
					zap.Stringer("relation", c.Relation),
					zap.String("result", outcomeLabel(c.Result)),
					zap.Error(err))
				return nil
			}

			mergeMetadata(&c.Paper, *full)
			c.Paper.ReferenceIDs = full.ReferenceIDs
			refs := full.ReferenceSet()
			if refs[seedID] {
				c.Relation |= RelCiter
			}
			c.Result = Enriched{References: refs}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, c := range candidates {
		metrics.Candidates.WithLabelValues(outcomeLabel(c.Result)).Inc()
	}
	return nil
}

// capped returns at most n leading papers.
func capped(papers []paper.Paper, n int) []paper.Paper {
	if n < 0 {
		n = 0
	}
	if len(papers) > n {
		return papers[:n]
	}
	return papers
}

// sortCandidates orders direct relations first, then by citation count
// descending, then by id.
func sortCandidates(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		di, dj := cs[i].Relation.Direct(), cs[j].Relation.Direct()
		if di != dj {
			return di
		}
		if cs[i].Paper.CitationCount != cs[j].Paper.CitationCount {
			return cs[i].Paper.CitationCount > cs[j].Paper.CitationCount
		}
		return cs[i].Paper.ID < cs[j].Paper.ID
	})
}

// mergeMetadata copies the non-empty descriptive fields of src into dst and
// keeps the larger citation count.
func mergeMetadata(dst *paper.Paper, src paper.Paper) {
	if src.Title != "" {
		dst.Title = src.Title
	}
	if src.Year > 0 {
		dst.Year = src.Year
	}
	if src.Abstract != "" {
		dst.Abstract = src.Abstract
	}
	if src.CitationCount > dst.CitationCount {
		dst.CitationCount = src.CitationCount
	}
}
