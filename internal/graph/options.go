package graph

import "time"

// DefaultCanvas is used for a width or height that is absent or non-positive.
const DefaultCanvas = 1000

// rateSlack covers request latency on top of limiter pacing.
const rateSlack = 10 * time.Second

// Options bounds the cost and shape of a build.
type Options struct {
	ReferenceCap        int           // seed references kept as candidates
	CitationCap         int           // seed citers kept as candidates
	CandidateCap        int           // total candidates enriched and scored
	DirectFloor         float64       // minimum weight of a direct citation edge
	CouplingProbes      int           // most-cited references whose citers are probed; 0 disables
	ProbeCiters         int           // citers listed per probe
	MinSharedReferences int           // probed references a citer must share to qualify
	FetchConcurrency    int           // concurrent upstream calls per build
	Pairwise            bool          // also score candidate-candidate pairs
	BuildTimeout        time.Duration // hard deadline for one build
}

// DefaultOptions returns the defaults used by the server and CLI.
func DefaultOptions() Options {
	return Options{
		ReferenceCap:        50,
		CitationCap:         50,
		CandidateCap:        40,
		DirectFloor:         DefaultDirectFloor,
		CouplingProbes:      5,
		ProbeCiters:         20,
		MinSharedReferences: 2,
		FetchConcurrency:    8,
		BuildTimeout:        30 * time.Second,
	}
}

// normalized fills zero values with defaults.
func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.ReferenceCap <= 0 {
		o.ReferenceCap = d.ReferenceCap
	}
	if o.CitationCap <= 0 {
		o.CitationCap = d.CitationCap
	}
	if o.CandidateCap <= 0 {
		o.CandidateCap = d.CandidateCap
	}
	if o.DirectFloor <= 0 || o.DirectFloor > 1 {
		o.DirectFloor = d.DirectFloor
	}
	if o.CouplingProbes < 0 {
		o.CouplingProbes = 0
	}
	if o.ProbeCiters <= 0 {
		o.ProbeCiters = d.ProbeCiters
	}
	if o.MinSharedReferences <= 0 {
		o.MinSharedReferences = d.MinSharedReferences
	}
	if o.FetchConcurrency <= 0 {
		o.FetchConcurrency = d.FetchConcurrency
	}
	if o.BuildTimeout <= 0 {
		o.BuildTimeout = d.BuildTimeout
	}
	return o
}

// UpstreamCalls is the most upstream calls one build issues: the seed record,
// its two listings, the coupling probes, and one fetch per candidate.
func (o Options) UpstreamCalls() int {
	o = o.normalized()
	return 3 + o.CouplingProbes + o.CandidateCap
}

// PacedBy raises BuildTimeout so that a build whose source admits rps
// requests per second can issue all UpstreamCalls before the deadline.
// A non-positive rate leaves the options unchanged.
func (o Options) PacedBy(rps float64) Options {
	o = o.normalized()
	if rps <= 0 {
		return o
	}
	need := time.Duration(float64(o.UpstreamCalls())/rps*float64(time.Second)) + rateSlack
	if o.BuildTimeout < need {
		o.BuildTimeout = need
	}
	return o
}
