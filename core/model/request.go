package model

import "fmt"

// Request is a rider or pooled rider group asking for a trip.
type Request struct {
	ID       string
	RiderIDs []string // one entry per rider traveling together

	Pickup     Coord
	Dropoff    Coord
	DepartTime int64 // requested pickup time, simulation seconds

	MaxWaitSec   int64 // omega: latest acceptable pickup delay
	MaxDetourSec int64 // delta: extra onboard time tolerated over the direct trip

	ValueOfTime float64 // cost of one second of rider time, used in edge weights
}

// GroupSize returns the number of riders in the request.
func (r Request) GroupSize() int {
	if len(r.RiderIDs) == 0 {
		return 1
	}
	return len(r.RiderIDs)
}

// LatestPickup returns the last simulation second at which pickup is still
// acceptable.
func (r Request) LatestPickup() int64 {
	return r.DepartTime + r.MaxWaitSec
}

// Validate checks the request for obvious configuration mistakes.
func (r Request) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("request id is required")
	}
	if r.MaxWaitSec < 0 || r.MaxDetourSec < 0 {
		return fmt.Errorf("time windows must be non-negative")
	}
	return nil
}
