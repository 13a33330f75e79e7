package fleet

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	inquiriesTotal    *prometheus.CounterVec
	reservationsTotal *prometheus.CounterVec
	proposalCacheSize prometheus.Gauge
	timeToPickup      prometheus.Histogram
	surgeMultiplier   prometheus.Histogram
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, prometheus.Gauge, prometheus.Histogram, prometheus.Histogram) {
	inq := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_inquiries_total",
			Help: "Number of ride inquiries by outcome",
		},
		[]string{"result"},
	)
	res := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_reservations_total",
			Help: "Number of reservation attempts by outcome",
		},
		[]string{"result"},
	)
	cache := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleet_proposal_cache_entries",
			Help: "Number of travel proposals currently cached",
		},
	)
	ttp := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleet_time_to_pickup_seconds",
			Help:    "Estimated time to customer of issued proposals",
			Buckets: []float64{30, 60, 120, 300, 600, 1200},
		},
	)
	surge := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleet_surge_multiplier",
			Help:    "Surge multiplier applied to issued proposals",
			Buckets: []float64{1, 1.25, 1.5, 2, 2.5, 3},
		},
	)
	return inq, res, cache, ttp, surge
}

func init() {
	inquiriesTotal, reservationsTotal, proposalCacheSize, timeToPickup, surgeMultiplier = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers fleet metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(inquiriesTotal, reservationsTotal, proposalCacheSize, timeToPickup, surgeMultiplier)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	inquiriesTotal, reservationsTotal, proposalCacheSize, timeToPickup, surgeMultiplier = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
