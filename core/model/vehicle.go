package model

import "fmt"

// VehicleState describes what a ride-hail vehicle is currently doing.
type VehicleState int

const (
	StateAvailable VehicleState = iota
	StateInService
	StateOnWayToDepot
	StateCharging
	StateWaitingToCharge
)

// String returns a human-readable representation of the state.
func (s VehicleState) String() string {
	switch s {
	case StateAvailable:
		return "available"
	case StateInService:
		return "in-service"
	case StateOnWayToDepot:
		return "on-way-to-depot"
	case StateCharging:
		return "charging"
	case StateWaitingToCharge:
		return "waiting-to-charge"
	default:
		return "unknown"
	}
}

// Vehicle represents a ride-hail vehicle participating in dispatch.
type Vehicle struct {
	ID           string
	Where        Spacetime // last known location and the time it was observed
	State        VehicleState
	SeatCapacity int

	IsElectric  bool
	BatteryKWh  float64 // total battery capacity in kWh
	SoC         float64 // state of charge between 0 and 1
	PlugPowerKW float64 // max power in kW the vehicle accepts while charging

	Geofence *Geofence // optional operational boundary
	Schedule PassengerSchedule
}

// Validate checks that the vehicle configuration is sound.
func (v Vehicle) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("vehicle id is required")
	}
	if v.SeatCapacity <= 0 {
		return fmt.Errorf("seat capacity must be positive")
	}
	if v.IsElectric && v.BatteryKWh <= 0 {
		return fmt.Errorf("battery capacity must be positive")
	}
	return nil
}

// HeadroomKWh returns the energy the battery can still absorb.
func (v Vehicle) HeadroomKWh() float64 {
	h := (1 - v.SoC) * v.BatteryKWh
	if h < 0 {
		return 0
	}
	return h
}

// NeedsRecharge reports whether the state of charge has fallen below the
// refuel threshold.
func (v Vehicle) NeedsRecharge(threshold float64) bool {
	return v.IsElectric && v.SoC < threshold
}

// CanServe reports whether the vehicle may pick up the request: it must have
// the seats and, when geofenced, both endpoints must lie inside the fence.
func (v Vehicle) CanServe(r Request) bool {
	if r.GroupSize() > v.SeatCapacity {
		return false
	}
	if v.Geofence != nil {
		if !v.Geofence.Contains(r.Pickup) || !v.Geofence.Contains(r.Dropoff) {
			return false
		}
	}
	return true
}
