package graph

import (
	"sort"

	"github.com/matsen/researchgraph/internal/paper"
)

// scored is a candidate retained with its seed edge score.
type scored struct {
	Candidate
	Score
}

// pairKey identifies an unordered node pair.
type pairKey struct{ a, b string }

func newPairKey(x, y string) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// edgeSet keeps at most one edge per unordered pair, the stronger one on
// conflict. A citation edge beats a coupling edge of equal weight.
type edgeSet struct {
	edges map[pairKey]Edge
	order []pairKey
}

func newEdgeSet() *edgeSet {
	return &edgeSet{edges: make(map[pairKey]Edge)}
}

func (s *edgeSet) add(e Edge) {
	if e.Source == e.Target {
		return
	}
	key := newPairKey(e.Source, e.Target)
	prev, ok := s.edges[key]
	if !ok {
		s.order = append(s.order, key)
		s.edges[key] = e
		return
	}
	if e.Weight > prev.Weight || (e.Weight == prev.Weight && e.Type == EdgeCitation) {
		s.edges[key] = e
	}
}

func (s *edgeSet) list() []Edge {
	out := make([]Edge, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.edges[key])
	}
	return out
}

// orient picks the edge direction: older paper first when both years are
// known and differ, otherwise the given default source.
func orient(defaultSource, other paper.Paper) (src, tgt string, directed bool) {
	if defaultSource.HasYear() && other.HasYear() && defaultSource.Year != other.Year {
		if other.Year < defaultSource.Year {
			return other.ID, defaultSource.ID, true
		}
		return defaultSource.ID, other.ID, true
	}
	return defaultSource.ID, other.ID, false
}

func newEdge(a, b paper.Paper, s Score) Edge {
	src, tgt, directed := orient(a, b)
	return Edge{
		ID:       edgeID(src, tgt),
		Source:   src,
		Target:   tgt,
		Label:    FormatWeight(s.Weight),
		Type:     s.Type,
		Directed: directed,
		Weight:   s.Weight,
	}
}

func newNode(p paper.Paper, isSeed bool) Node {
	label := p.Title
	if label == "" {
		label = UntitledLabel
	}
	var year *int
	if p.HasYear() {
		y := p.Year
		year = &y
	}
	return Node{
		ID:   p.ID,
		Type: NodeTypeDefault,
		Data: NodeData{
			Label:         label,
			Year:          year,
			Abstract:      p.Abstract,
			CitationCount: p.CitationCount,
			IsSeed:        isSeed,
		},
	}
}

// Assemble scores the neighborhood, drops candidates without relation,
// builds nodes and edges, and lays them out on the canvas.
func Assemble(n *Neighborhood, floor float64, pairwise bool, width, height float64) *Payload {
	var kept []scored
	seen := map[string]bool{n.Seed.ID: true}
	for _, c := range n.Candidates {
		if c.Paper.ID == "" || seen[c.Paper.ID] {
			continue
		}
		seen[c.Paper.ID] = true
		if s, ok := ScoreCandidate(n.SeedRefs, c, floor); ok {
			kept = append(kept, scored{Candidate: c, Score: s})
		}
	}

	// Strongest first; ring placement follows this order.
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Weight != kept[j].Weight {
			return kept[i].Weight > kept[j].Weight
		}
		return kept[i].Paper.ID < kept[j].Paper.ID
	})

	edges := newEdgeSet()
	ordered := make([]string, 0, len(kept))
	for _, k := range kept {
		ordered = append(ordered, k.Paper.ID)
		edges.add(newEdge(n.Seed, k.Paper, k.Score))
	}

	if pairwise {
		for i := range kept {
			for j := i + 1; j < len(kept); j++ {
				a, b := kept[i], kept[j]
				if b.Paper.ID < a.Paper.ID {
					a, b = b, a
				}
				if s, ok := scorePair(a.Candidate, b.Candidate, floor); ok {
					edges.add(newEdge(a.Paper, b.Paper, s))
				}
			}
		}
	}

	positions := RingLayout(n.Seed.ID, ordered, width, height)

	nodes := make([]Node, 0, len(kept)+1)
	seed := newNode(n.Seed, true)
	seed.Position = positions[n.Seed.ID]
	nodes = append(nodes, seed)
	for _, k := range kept {
		node := newNode(k.Paper, false)
		node.Position = positions[k.Paper.ID]
		nodes = append(nodes, node)
	}

	return &Payload{Nodes: nodes, Edges: edges.list()}
}
