package fleet

import (
	"math"

	"github.com/openfleet/ridehail/core/model"
)

// PricingConfig defines surge pricing settings.
type PricingConfig struct {
	// TimeBinSeconds groups observations into demand bins.
	TimeBinSeconds int64 `json:"time_bin_seconds"`
	// ZoneCellM is the edge length of a pricing zone in meters.
	ZoneCellM float64 `json:"zone_cell_m"`
	// Slope scales how fast the multiplier grows with excess demand.
	Slope float64 `json:"slope"`
	// MaxMultiplier caps the surge multiplier.
	MaxMultiplier float64 `json:"max_multiplier"`
}

// SetDefaults applies sane defaults.
func (c *PricingConfig) SetDefaults() {
	if c.TimeBinSeconds <= 0 {
		c.TimeBinSeconds = 900
	}
	if c.ZoneCellM <= 0 {
		c.ZoneCellM = 2000
	}
	if c.Slope <= 0 {
		c.Slope = 0.5
	}
	if c.MaxMultiplier <= 1 {
		c.MaxMultiplier = 3
	}
}

type surgeKey struct {
	zone cell
	bin  int64
}

// SurgePricing computes a fare multiplier per pricing zone and time bin from
// the demand/supply ratio observed there. Owned by the fleet manager; not safe
// for concurrent use on its own.
type SurgePricing struct {
	cfg    PricingConfig
	demand map[surgeKey]int
}

// NewSurgePricing creates a pricing manager.
func NewSurgePricing(cfg PricingConfig) *SurgePricing {
	cfg.SetDefaults()
	return &SurgePricing{cfg: cfg, demand: make(map[surgeKey]int)}
}

func (s *SurgePricing) key(loc model.Coord, t int64) surgeKey {
	return surgeKey{
		zone: cell{
			x: int(math.Floor(loc.Lon * metersPerDegree * math.Cos(loc.Lat*math.Pi/180) / s.cfg.ZoneCellM)),
			y: int(math.Floor(loc.Lat * metersPerDegree / s.cfg.ZoneCellM)),
		},
		bin: t / s.cfg.TimeBinSeconds,
	}
}

// ObserveDemand records one inquiry in the zone/bin of the pickup.
func (s *SurgePricing) ObserveDemand(loc model.Coord, t int64) {
	s.demand[s.key(loc, t)]++
}

// Multiplier returns the surge multiplier for the given pickup, time and
// available supply. With no excess demand the multiplier is 1; it grows with
// the demand/supply ratio and is capped at MaxMultiplier.
func (s *SurgePricing) Multiplier(loc model.Coord, t int64, supply int) float64 {
	d := s.demand[s.key(loc, t)]
	if d == 0 {
		return 1
	}
	if supply <= 0 {
		return s.cfg.MaxMultiplier
	}
	ratio := float64(d) / float64(supply)
	if ratio <= 1 {
		return 1
	}
	m := 1 + (ratio-1)*s.cfg.Slope
	if m > s.cfg.MaxMultiplier {
		return s.cfg.MaxMultiplier
	}
	return m
}
