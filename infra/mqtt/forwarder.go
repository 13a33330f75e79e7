package mqtt

import (
	"context"

	"github.com/openfleet/ridehail/core/events"
	"github.com/openfleet/ridehail/internal/eventbus"
)

// StartEventForwarder subscribes to the event bus and republishes simulation
// events over MQTT. Delivery is best effort: publish errors are logged, never
// propagated back to the simulation. Stops when the context is canceled.
func StartEventForwarder(ctx context.Context, bus eventbus.EventBus, pub *Publisher) {
	if bus == nil || pub == nil {
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
				forward(pub, ev)
			}
		}
	}()
}

func forward(pub *Publisher, ev eventbus.Event) {
	var (
		topic string
	)
	switch ev.(type) {
	case events.ProposalEvent:
		topic = "proposals"
	case events.ReservationEvent:
		topic = "reservations"
	case events.MatchCycleEvent:
		topic = "match_cycles"
	case events.PlugInEvent:
		topic = "plug_ins"
	case events.PlugOutEvent:
		topic = "plug_outs"
	case events.RefuelSessionEvent:
		topic = "refuel_sessions"
	default:
		return
	}
	if err := pub.Publish(topic, ev); err != nil {
		pub.log.Errorf("forward %s: %v", topic, err)
	}
}
