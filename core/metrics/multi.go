package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordReservation forwards the record to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordReservation(r ReservationRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordReservation(r); err != nil {
			return err
		}
	}
	return nil
}

// RecordMatchCycle forwards cycle summaries to sinks that record them.
func (m *MultiSink) RecordMatchCycle(r MatchCycleRecord) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(MatchCycleRecorder); ok {
			if err := rec.RecordMatchCycle(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordChargingSession forwards charging sessions to sinks that record them.
func (m *MultiSink) RecordChargingSession(r ChargingSessionRecord) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ChargingSessionRecorder); ok {
			if err := rec.RecordChargingSession(r); err != nil {
				return err
			}
		}
	}
	return nil
}
