// Package metrics defines interfaces and record types for collecting
// simulation metrics. Sinks like PromSink and InfluxSink record reservation,
// matching and charging outcomes and can be combined with NewMultiSink. The
// factory helpers return a MultiSink automatically when multiple sinks are
// configured.
package metrics

import "github.com/openfleet/ridehail/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}

// ReservationRecord captures the outcome of one reservation attempt.
type ReservationRecord struct {
	RequestID       string
	VehicleID       string
	Fare            float64
	TimeToPickupSec int64
	Confirmed       bool
	Reason          string
	Tick            int64
}

// Sink records reservation outcomes for observability purposes.
type Sink interface {
	RecordReservation(ReservationRecord) error
}

// MatchCycleRecord summarizes one pooling cycle.
type MatchCycleRecord struct {
	Tick      int64
	Requests  int
	Assigned  int
	Unmatched int
}

// MatchCycleRecorder records pooling cycle summaries.
type MatchCycleRecorder interface {
	RecordMatchCycle(MatchCycleRecord) error
}

// ChargingSessionRecord captures a completed charging session.
type ChargingSessionRecord struct {
	VehicleID   string
	StationID   string
	EnergyKWh   float64
	DurationSec int64
	Tick        int64
}

// ChargingSessionRecorder records completed charging sessions.
type ChargingSessionRecorder interface {
	RecordChargingSession(ChargingSessionRecord) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordReservation(ReservationRecord) error         { return nil }
func (NopSink) RecordMatchCycle(MatchCycleRecord) error           { return nil }
func (NopSink) RecordChargingSession(ChargingSessionRecord) error { return nil }
