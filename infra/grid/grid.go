// Package grid provides power-bounds providers standing in for an external
// grid operator: unlimited, statically capped, and time-windowed curtailment.
package grid

import (
	"math"

	"github.com/openfleet/ridehail/core/power"
)

// UnlimitedProvider never constrains a station.
type UnlimitedProvider struct{}

func (UnlimitedProvider) Bounds(string, float64, int64) power.Bounds {
	return power.Bounds{CeilingKW: math.Inf(1)}
}

// StaticProvider caps each station at a fixed ceiling. Stations without an
// entry fall back to DefaultCeilingKW; zero means unconstrained.
type StaticProvider struct {
	CeilingsKW       map[string]float64
	DefaultCeilingKW float64
}

func (p StaticProvider) Bounds(stationID string, _ float64, _ int64) power.Bounds {
	ceiling, ok := p.CeilingsKW[stationID]
	if !ok {
		ceiling = p.DefaultCeilingKW
	}
	if ceiling <= 0 {
		ceiling = math.Inf(1)
	}
	return power.Bounds{CeilingKW: ceiling}
}

// CurtailmentWindow caps power to a fraction of the estimated demand during
// [StartTick, EndTick).
type CurtailmentWindow struct {
	StartTick int64
	EndTick   int64
	Fraction  float64
}

// CurtailmentProvider applies time-windowed curtailment signals on top of an
// inner provider, emulating a demand-response contract with the grid
// operator.
type CurtailmentProvider struct {
	Inner   power.BoundsProvider
	Windows []CurtailmentWindow
}

func (p CurtailmentProvider) Bounds(stationID string, estimatedDemandKW float64, tick int64) power.Bounds {
	b := p.Inner.Bounds(stationID, estimatedDemandKW, tick)
	for _, w := range p.Windows {
		if tick < w.StartTick || tick >= w.EndTick {
			continue
		}
		capped := estimatedDemandKW * w.Fraction
		if capped < b.CeilingKW {
			b.CeilingKW = capped
		}
	}
	return b
}

var (
	_ power.BoundsProvider = UnlimitedProvider{}
	_ power.BoundsProvider = StaticProvider{}
	_ power.BoundsProvider = CurtailmentProvider{}
)
