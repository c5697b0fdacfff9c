package graph

// DefaultDirectFloor is the minimum weight of a direct citation edge.
const DefaultDirectFloor = 0.3

// Coupling returns the bibliographic coupling strength of two reference sets:
// |a ∩ b| / min(|a|, |b|), or 0 if either set is empty.
func Coupling(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	shared := 0
	for id := range small {
		if large[id] {
			shared++
		}
	}
	return float64(shared) / float64(len(small))
}

// Score is the outcome of weighing one relation.
type Score struct {
	Weight float64
	Type   EdgeType
}

// Weigh applies the edge weight rule. A direct relation always yields an
// edge of at least floor; otherwise an edge exists only for positive coupling.
func Weigh(coupling float64, direct bool, floor float64) (Score, bool) {
	if direct {
		return Score{Weight: max(coupling, floor), Type: EdgeCitation}, true
	}
	if coupling > 0 {
		return Score{Weight: coupling, Type: EdgeCoupling}, true
	}
	return Score{}, false
}

// ScoreCandidate weighs the seed-candidate relation according to the
// candidate's enrichment result.
func ScoreCandidate(seedRefs map[string]bool, c Candidate, floor float64) (Score, bool) {
	switch r := c.Result.(type) {
	case Enriched:
		return Weigh(Coupling(seedRefs, r.References), c.Relation.Direct(), floor)
	case DirectOnly:
		// No reference list, so the floor is the only signal left.
		return Score{Weight: floor, Type: EdgeCitation}, c.Relation.Direct()
	case Excluded:
		return Score{}, false
	default:
		panic("graph: unhandled fetch result")
	}
}

// scorePair weighs the relation between two enriched candidates.
func scorePair(a, b Candidate, floor float64) (Score, bool) {
	ra, okA := a.Result.(Enriched)
	rb, okB := b.Result.(Enriched)
	if !okA || !okB {
		return Score{}, false
	}
	direct := ra.References[b.Paper.ID] || rb.References[a.Paper.ID]
	return Weigh(Coupling(ra.References, rb.References), direct, floor)
}
