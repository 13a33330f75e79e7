// Package charging manages charging stations: stall occupancy, priority
// waiting queues, and per-tick energy dispatch under grid power constraints.
package charging

import (
	"errors"
	"fmt"

	"github.com/openfleet/ridehail/core/model"
)

var (
	// ErrNotElectric rejects charge requests from combustion vehicles.
	ErrNotElectric = errors.New("charging: vehicle is not electric")
	// ErrVehicleNotTracked signals a disconnect for a vehicle the network
	// does not know about.
	ErrVehicleNotTracked = errors.New("charging: vehicle not tracked")
	// ErrUnknownStation signals a connect against an unknown station id.
	ErrUnknownStation = errors.New("charging: unknown station")
)

// Station is a physical charging site.
type Station struct {
	ID          string
	ZoneID      string
	Loc         model.Coord
	Stalls      int
	PlugPowerKW float64
}

// Validate checks the station configuration.
func (s Station) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("station id is required")
	}
	if s.Stalls <= 0 {
		return fmt.Errorf("station %s: stall count must be positive", s.ID)
	}
	if s.PlugPowerKW <= 0 {
		return fmt.Errorf("station %s: plug power must be positive", s.ID)
	}
	return nil
}

// ConnectStatus is the outcome of a plug-in request.
type ConnectStatus int

const (
	// Connected means the vehicle occupies a stall and is charging.
	Connected ConnectStatus = iota
	// Waiting means all stalls were taken and the vehicle was queued.
	Waiting
	// AlreadyAtStation means the vehicle is already tracked at the station.
	AlreadyAtStation
)

func (s ConnectStatus) String() string {
	switch s {
	case Connected:
		return "connected"
	case Waiting:
		return "waiting"
	case AlreadyAtStation:
		return "already-at-station"
	default:
		return "unknown"
	}
}

// Cycle is one slice of a charging session: energy delivered over a duration
// starting at a tick. Sessions accumulate cycles append-only.
type Cycle struct {
	StartTime   int64
	DurationSec int64
	EnergyKWh   float64
}

// SessionSummary totals a closed charging session.
type SessionSummary struct {
	VehicleID   string
	StationID   string
	EnergyKWh   float64
	DurationSec int64
}

// Completion marks a vehicle expected to reach full charge during the
// current planning step, at the given tick.
type Completion struct {
	VehicleID string
	StationID string
	Tick      int64
}
