// Package sessionlog persists completed ride and charging sessions for
// post-simulation analysis, either as a JSONL file or a SQLite database.
package sessionlog

import "context"

// Kind discriminates record types.
type Kind string

const (
	KindRide   Kind = "ride"
	KindCharge Kind = "charge"
)

// Record captures one completed session.
type Record struct {
	Kind        Kind     `json:"kind"`
	Tick        int64    `json:"tick"`
	VehicleID   string   `json:"vehicle_id"`
	RequestIDs  []string `json:"request_ids,omitempty"`
	StationID   string   `json:"station_id,omitempty"`
	Fare        float64  `json:"fare,omitempty"`
	EnergyKWh   float64  `json:"energy_kwh,omitempty"`
	DurationSec int64    `json:"duration_sec"`
}

// Query defines filters for retrieving records. A zero EndTick means
// unbounded.
type Query struct {
	StartTick int64
	EndTick   int64
	Kind      Kind
	VehicleID string
}

// matches reports whether the record passes the query filters.
func (q Query) matches(r Record) bool {
	if r.Tick < q.StartTick {
		return false
	}
	if q.EndTick > 0 && r.Tick > q.EndTick {
		return false
	}
	if q.Kind != "" && r.Kind != q.Kind {
		return false
	}
	if q.VehicleID != "" && r.VehicleID != q.VehicleID {
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
