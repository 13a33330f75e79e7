// Package pooling implements ride-sharing assignment over a batch of pending
// requests and available vehicles: a pairwise feasibility graph (RV), an
// incrementally grown request-trip-vehicle graph (RTV), and a greedy weighted
// assignment over its edges.
//
// Feasibility everywhere is judged with skim estimates, never the full
// router: the all-pairs phase is too hot for real routing calls.
package pooling

import (
	"runtime"

	"github.com/openfleet/ridehail/core/logger"
	"github.com/openfleet/ridehail/core/model"
	"github.com/openfleet/ridehail/core/routing"
)

// Config defines pooling parameters.
type Config struct {
	// MaxGroupSize caps the number of requests pooled into one trip.
	MaxGroupSize int `json:"max_group_size"`
	// SearchRadiusM prunes candidate pairs before any feasibility test.
	SearchRadiusM float64 `json:"search_radius_m"`
	// Workers bounds the fan-out of the parallel pairwise phase.
	// Zero means one worker per CPU.
	Workers int `json:"workers"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.MaxGroupSize <= 0 {
		c.MaxGroupSize = 3
	}
	if c.SearchRadiusM <= 0 {
		c.SearchRadiusM = 5000
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Assignment is one vehicle-to-trip allocation produced by a matching cycle.
type Assignment struct {
	VehicleID  string
	RequestIDs []string
	Schedule   model.PassengerSchedule
	Cost       float64
}

// Result is the outcome of one matching cycle. Unmatched requests are not
// retried within the cycle; the caller resubmits them next interval.
type Result struct {
	Assignments []Assignment
	Unmatched   []string
}

// Matcher runs matching cycles. It is stateless between cycles: the RV and
// RTV graphs are rebuilt from scratch every time.
type Matcher struct {
	cfg  Config
	skim routing.Skim
	log  logger.Logger
}

// NewMatcher creates a matcher.
func NewMatcher(cfg Config, skim routing.Skim, log logger.Logger) *Matcher {
	cfg.SetDefaults()
	return &Matcher{cfg: cfg, skim: skim, log: log}
}

// Match runs one full matching cycle over the batch.
func (m *Matcher) Match(requests []model.Request, vehicles []model.Vehicle) Result {
	rv := m.buildRV(requests, vehicles)
	rtv := m.buildRTV(rv)
	res := m.assign(rv, rtv)
	m.log.Infof("match cycle: %d requests, %d vehicles, %d trips, %d assigned, %d unmatched",
		len(requests), len(vehicles), len(rtv.trips), len(res.Assignments), len(res.Unmatched))
	matchCycles.Inc()
	tripCount.Observe(float64(len(rtv.trips)))
	matchedRequests.Add(float64(len(requests) - len(res.Unmatched)))
	unmatchedRequests.Add(float64(len(res.Unmatched)))
	return res
}
