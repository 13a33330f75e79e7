package mqtt

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfleet/ridehail/core/events"
	"github.com/openfleet/ridehail/internal/eventbus"
)

type fakeToken struct{}

func (fakeToken) Wait() bool                     { return true }
func (fakeToken) WaitTimeout(time.Duration) bool { return true }
func (fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (fakeToken) Error() error { return nil }

type published struct {
	topic   string
	payload []byte
}

type fakeClient struct {
	mu   sync.Mutex
	msgs []published
}

func (f *fakeClient) IsConnected() bool     { return true }
func (f *fakeClient) Connect() paho.Token   { return fakeToken{} }
func (f *fakeClient) Disconnect(uint)       {}
func (f *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) paho.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{topic: topic, payload: payload.([]byte)})
	return fakeToken{}
}

func (f *fakeClient) snapshot() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.msgs...)
}

func newFakePublisher(t *testing.T) (*Publisher, *fakeClient) {
	t.Helper()
	fake := &fakeClient{}
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return fake }
	t.Cleanup(func() { newMQTTClient = orig })

	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", TopicPrefix: "sim"})
	require.NoError(t, err)
	return pub, fake
}

func TestPublishMarshalsJSON(t *testing.T) {
	pub, fake := newFakePublisher(t)

	err := pub.Publish("reservations", events.ReservationEvent{RequestID: "p1", VehicleID: "v1", Confirmed: true})
	require.NoError(t, err)

	msgs := fake.snapshot()
	require.Len(t, msgs, 1)
	assert.Equal(t, "sim/reservations", msgs[0].topic)

	var ev events.ReservationEvent
	require.NoError(t, json.Unmarshal(msgs[0].payload, &ev))
	assert.Equal(t, "p1", ev.RequestID)
	assert.True(t, ev.Confirmed)
}

func TestConfigValidation(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()
	assert.Error(t, cfg.Validate())
	assert.NotEmpty(t, cfg.ClientID)
	assert.Equal(t, "ridehail", cfg.TopicPrefix)
}

func TestEventForwarderRoutesByType(t *testing.T) {
	pub, fake := newFakePublisher(t)
	bus := eventbus.New()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartEventForwarder(ctx, bus, pub)

	bus.Publish(events.PlugInEvent{VehicleID: "v1", StationID: "depot-1"})
	bus.Publish(events.RefuelSessionEvent{VehicleID: "v1", StationID: "depot-1", EnergyKWh: 8})
	bus.Publish("unrelated")

	assert.Eventually(t, func() bool {
		return len(fake.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)

	topics := []string{fake.snapshot()[0].topic, fake.snapshot()[1].topic}
	assert.Equal(t, []string{"sim/plug_ins", "sim/refuel_sessions"}, topics)
}
