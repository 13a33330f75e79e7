// Package power estimates aggregate charging demand per station and turns
// those estimates into physical power ceilings through an external
// grid-constraint provider.
package power

import (
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/openfleet/ridehail/core/logger"
)

// Bounds is the physical power envelope of one station for one planning tick.
type Bounds struct {
	FloorKW   float64
	CeilingKW float64
}

// BoundsProvider converts an estimated station demand into a power envelope.
// Implementations wrap external grid-constraint signals.
type BoundsProvider interface {
	Bounds(stationID string, estimatedDemandKW float64, tick int64) Bounds
}

// SitePowerManager keeps per-station demand observations and produces the
// estimates fed to the bounds provider. Estimates prefer the previous
// iteration's observations; until a full iteration has run, the running
// observations of the current one are used instead.
type SitePowerManager struct {
	mu      sync.Mutex
	prior   map[string][]float64
	current map[string][]float64
	log     logger.Logger
}

// NewSitePowerManager creates an empty manager.
func NewSitePowerManager(log logger.Logger) *SitePowerManager {
	return &SitePowerManager{
		prior:   make(map[string][]float64),
		current: make(map[string][]float64),
		log:     log,
	}
}

// ObserveDemand records the demand seen at a station during one planning
// tick. Observations accumulate within the current iteration.
func (m *SitePowerManager) ObserveDemand(stationID string, demandKW float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current[stationID] = append(m.current[stationID], demandKW)
}

// EstimateDemand returns the expected demand for a station. With no
// observations at all the estimate is zero, which providers treat as
// unconstrained.
func (m *SitePowerManager) EstimateDemand(stationID string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if obs := m.prior[stationID]; len(obs) > 0 {
		return stat.Mean(obs, nil)
	}
	if obs := m.current[stationID]; len(obs) > 0 {
		return stat.Mean(obs, nil)
	}
	return 0
}

// EndIteration rolls the current iteration's observations over as the prior
// for the next one.
func (m *SitePowerManager) EndIteration() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, obs := range m.current {
		m.prior[id] = obs
	}
	m.current = make(map[string][]float64)
	m.log.Debugf("site power manager: rolled over demand observations for %d stations", len(m.prior))
}
