package pooling

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	matchCycles       prometheus.Counter
	matchedRequests   prometheus.Counter
	unmatchedRequests prometheus.Counter
	tripCount         prometheus.Histogram
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Counter, prometheus.Counter, prometheus.Counter, prometheus.Histogram) {
	cycles := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pooling_match_cycles_total",
			Help: "Number of completed matching cycles",
		},
	)
	matched := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pooling_matched_requests_total",
			Help: "Number of requests assigned to a vehicle",
		},
	)
	unmatched := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pooling_unmatched_requests_total",
			Help: "Number of requests left unassigned after a cycle",
		},
	)
	trips := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pooling_feasible_trips",
			Help:    "Feasible trips discovered per matching cycle",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
	return cycles, matched, unmatched, trips
}

func init() {
	matchCycles, matchedRequests, unmatchedRequests, tripCount = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers pooling metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(matchCycles, matchedRequests, unmatchedRequests, tripCount)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	matchCycles, matchedRequests, unmatchedRequests, tripCount = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
