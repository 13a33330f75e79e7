// Package routing defines the interfaces of the external routing
// collaborators: a full router producing drivable legs and a skim providing
// cheap travel-time estimates for feasibility pruning.
package routing

import (
	"errors"

	"github.com/openfleet/ridehail/core/model"
)

// ErrRouteNotFound is returned when no route exists between two coordinates.
var ErrRouteNotFound = errors.New("routing: no route found")

// Router computes a drivable route between two coordinates.
type Router interface {
	Route(from, to model.Coord, departTime int64) (model.RouteLeg, error)
}

// Skim returns approximate travel times and distances without running the
// full router. Estimates must be cheap: they are evaluated over all candidate
// pairs during pooling.
type Skim interface {
	TravelTimeSec(from, to model.Coord) int64
	DistanceM(from, to model.Coord) float64
}
