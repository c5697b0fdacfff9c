// Package metrics holds the prometheus collectors shared across packages.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// UpstreamRequests counts calls to a bibliographic data source by outcome
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rgraph_upstream_requests_total",
			Help: "Requests issued to bibliographic data sources",
		},
		[]string{"source", "op", "outcome"},
	)

	// UpstreamLatency tracks per-call latency including retries
	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rgraph_upstream_request_seconds",
			Help:    "Latency of bibliographic data source calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source", "op"},
	)

	// CacheLookups counts read-through cache hits and misses
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rgraph_cache_lookups_total",
			Help: "Cache lookups by backend and result",
		},
		[]string{"backend", "result"},
	)

	// GraphBuilds counts build_graph calls by outcome
	GraphBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rgraph_graph_builds_total",
			Help: "Graph builds by outcome",
		},
		[]string{"outcome"},
	)

	// GraphBuildLatency tracks end-to-end build latency
	GraphBuildLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rgraph_graph_build_seconds",
			Help:    "End-to-end graph build latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// Candidates counts candidate enrichment outcomes
	Candidates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rgraph_candidates_total",
			Help: "Neighborhood candidates by enrichment outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(UpstreamRequests)
	prometheus.MustRegister(UpstreamLatency)
	prometheus.MustRegister(CacheLookups)
	prometheus.MustRegister(GraphBuilds)
	prometheus.MustRegister(GraphBuildLatency)
	prometheus.MustRegister(Candidates)
}

// Outcome labels shared by the counters above.
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
	OutcomeCanceled    = "canceled"
	OutcomeError       = "error"
)
