package model

import "time"

// RouteLeg is one routed drive segment.
type RouteLeg struct {
	From      Coord
	To        Coord
	Depart    int64 // simulation seconds
	Duration  int64 // seconds
	DistanceM float64
}

// Arrival returns the simulation second at which the leg completes.
func (l RouteLeg) Arrival() int64 { return l.Depart + l.Duration }

// TravelProposal is a priced, timed offer binding one vehicle to one request.
// It is created by a successful inquiry, cached with a short TTL, and consumed
// or invalidated when the reservation confirms or the entry expires.
type TravelProposal struct {
	ID        string
	RequestID string
	VehicleID string

	TimeToPickupSec int64
	TravelTimeSec   int64
	Fare            float64

	ToPickup  RouteLeg // vehicle -> pickup
	ToDropoff RouteLeg // pickup -> destination

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the proposal is no longer valid at now.
func (p TravelProposal) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
