package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openfleet/ridehail/core/events"
	coremetrics "github.com/openfleet/ridehail/core/metrics"
	"github.com/openfleet/ridehail/internal/eventbus"
)

// captureSink collects every record under a lock so the collector goroutine
// and the test can both touch it.
type captureSink struct {
	mu           sync.Mutex
	reservations []coremetrics.ReservationRecord
	sessions     []coremetrics.ChargingSessionRecord
}

func (c *captureSink) RecordReservation(r coremetrics.ReservationRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reservations = append(c.reservations, r)
	return nil
}

func (c *captureSink) RecordChargingSession(r coremetrics.ChargingSessionRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = append(c.sessions, r)
	return nil
}

func (c *captureSink) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.reservations), len(c.sessions)
}

func TestEventCollectorRecordsBusEvents(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := &captureSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartEventCollector(ctx, bus, sink)

	bus.Publish(events.ReservationEvent{RequestID: "p1", VehicleID: "v1", Confirmed: true})
	bus.Publish(events.RefuelSessionEvent{VehicleID: "v1", StationID: "depot-1", EnergyKWh: 12})

	assert.Eventually(t, func() bool {
		r, s := sink.counts()
		return r == 1 && s == 1
	}, time.Second, 5*time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, "p1", sink.reservations[0].RequestID)
	assert.True(t, sink.reservations[0].Confirmed)
	assert.InDelta(t, 12, sink.sessions[0].EnergyKWh, 1e-9)
}

func TestEventCollectorNilBusOrSink(t *testing.T) {
	// Must not panic.
	StartEventCollector(context.Background(), nil, &captureSink{})
	StartEventCollector(context.Background(), eventbus.New(), nil)
}
