package metrics

import (
	"context"

	"github.com/openfleet/ridehail/core/events"
	coremetrics "github.com/openfleet/ridehail/core/metrics"
	"github.com/openfleet/ridehail/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// events. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.Sink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe(0)
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, ev)
			}
		}
	}()
}

func record(sink coremetrics.Sink, ev eventbus.Event) {
	switch e := ev.(type) {
	case events.ReservationEvent:
		_ = sink.RecordReservation(coremetrics.ReservationRecord{
			RequestID: e.RequestID,
			VehicleID: e.VehicleID,
			Confirmed: e.Confirmed,
			Reason:    e.Reason,
			Tick:      e.Tick,
		})
	case events.MatchCycleEvent:
		if r, ok := sink.(coremetrics.MatchCycleRecorder); ok {
			_ = r.RecordMatchCycle(coremetrics.MatchCycleRecord{
				Tick:      e.Tick,
				Requests:  e.Requests,
				Assigned:  e.Matched,
				Unmatched: len(e.Unmatched),
			})
		}
	case events.RefuelSessionEvent:
		if r, ok := sink.(coremetrics.ChargingSessionRecorder); ok {
			_ = r.RecordChargingSession(coremetrics.ChargingSessionRecord{
				VehicleID:   e.VehicleID,
				StationID:   e.StationID,
				EnergyKWh:   e.EnergyKWh,
				DurationSec: e.DurationSec,
				Tick:        e.Tick,
			})
		}
	}
}
