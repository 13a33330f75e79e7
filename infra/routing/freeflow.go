// Package routing provides the built-in routing collaborators: a free-flow
// router that drives great-circle distances at a constant speed, and a
// matching skim for cheap feasibility estimates. Production deployments
// replace these with an adapter over a real road network router.
package routing

import (
	"github.com/openfleet/ridehail/core/model"
	"github.com/openfleet/ridehail/core/routing"
)

// DefaultSpeedMps is the assumed free-flow driving speed (about 36 km/h).
const DefaultSpeedMps = 10.0

// CircuityFactor inflates straight-line distances to approximate the road
// network. 1.3 is the common planning value for urban grids.
const CircuityFactor = 1.3

// FreeFlowRouter routes as the crow flies at constant speed.
type FreeFlowRouter struct {
	SpeedMps float64
}

// NewFreeFlowRouter returns a router using the default speed when speed is
// non-positive.
func NewFreeFlowRouter(speedMps float64) *FreeFlowRouter {
	if speedMps <= 0 {
		speedMps = DefaultSpeedMps
	}
	return &FreeFlowRouter{SpeedMps: speedMps}
}

// Route implements routing.Router.
func (r *FreeFlowRouter) Route(from, to model.Coord, departTime int64) (model.RouteLeg, error) {
	dist := from.DistanceM(to) * CircuityFactor
	dur := int64(dist / r.SpeedMps)
	return model.RouteLeg{
		From:      from,
		To:        to,
		Depart:    departTime,
		Duration:  dur,
		DistanceM: dist,
	}, nil
}

// HaversineSkim estimates travel times from great-circle distances.
type HaversineSkim struct {
	SpeedMps float64
}

// NewHaversineSkim returns a skim using the default speed when speed is
// non-positive.
func NewHaversineSkim(speedMps float64) *HaversineSkim {
	if speedMps <= 0 {
		speedMps = DefaultSpeedMps
	}
	return &HaversineSkim{SpeedMps: speedMps}
}

// TravelTimeSec implements routing.Skim.
func (s *HaversineSkim) TravelTimeSec(from, to model.Coord) int64 {
	return int64(s.DistanceM(from, to) / s.SpeedMps)
}

// DistanceM implements routing.Skim.
func (s *HaversineSkim) DistanceM(from, to model.Coord) float64 {
	return from.DistanceM(to) * CircuityFactor
}

var (
	_ routing.Router = (*FreeFlowRouter)(nil)
	_ routing.Skim   = (*HaversineSkim)(nil)
)
