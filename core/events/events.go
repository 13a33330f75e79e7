// Package events defines the typed simulation events published on the event
// bus. Delivery is fire-and-forget: producers never wait for consumers.
package events

// ProposalEvent is published when an inquiry produces a travel proposal.
type ProposalEvent struct {
	RequestID       string
	VehicleID       string
	Fare            float64
	TimeToPickupSec int64
}

// ReservationEvent is published when a reservation is confirmed or rejected.
type ReservationEvent struct {
	RequestID string
	VehicleID string
	Confirmed bool
	Reason    string
	Tick      int64
}

// MatchCycleEvent summarizes one pooling cycle.
type MatchCycleEvent struct {
	Tick      int64
	Requests  int
	Matched   int
	Unmatched []string
}

// PlugInEvent is published when a vehicle connects to a charging stall.
type PlugInEvent struct {
	VehicleID string
	StationID string
	Tick      int64
}

// PlugOutEvent is published when a vehicle releases its stall.
type PlugOutEvent struct {
	VehicleID string
	StationID string
	Tick      int64
}

// RefuelSessionEvent summarizes a completed charging session.
type RefuelSessionEvent struct {
	VehicleID   string
	StationID   string
	EnergyKWh   float64
	DurationSec int64
	Tick        int64
}
