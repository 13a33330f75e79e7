package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfleet/ridehail/config"
	"github.com/openfleet/ridehail/core/model"
	"github.com/openfleet/ridehail/infra/sessionlog"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Fleet.SetDefaults()
	cfg.Pricing.SetDefaults()
	cfg.Pooling.SetDefaults()
	cfg.Power.SetDefaults()
	cfg.Routing.SetDefaults()
	cfg.Sim = config.SimConfig{HorizonSec: 3600, MatchIntervalSec: 10, ChargeStepSec: 60}
	cfg.SessionLog = config.SessionLogConfig{Backend: "none"}
	return cfg
}

func testVehicle(id string) model.Vehicle {
	return model.Vehicle{
		ID:           id,
		Where:        model.Spacetime{Loc: model.Coord{Lat: 48.85, Lon: 2.35}},
		State:        model.StateAvailable,
		SeatCapacity: 4,
	}
}

func testRequest(id string) model.Request {
	return model.Request{
		ID:           id,
		RiderIDs:     []string{id + "-rider"},
		Pickup:       model.Coord{Lat: 48.851, Lon: 2.35},
		Dropoff:      model.Coord{Lat: 48.86, Lon: 2.35},
		MaxWaitSec:   600,
		MaxDetourSec: 600,
		ValueOfTime:  1,
	}
}

func TestServiceRunCompletesRide(t *testing.T) {
	cfg := testConfig()
	cfg.SessionLog = config.SessionLogConfig{
		Backend: "jsonl",
		Path:    filepath.Join(t.TempDir(), "sessions.jsonl"),
	}

	svc, err := New(cfg)
	require.NoError(t, err)

	require.NoError(t, svc.AddVehicle(testVehicle("v1")))
	require.NoError(t, svc.SubmitRequest(testRequest("r1")))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, svc.Run(ctx))

	v, err := svc.Fleet.Vehicle("v1")
	require.NoError(t, err)
	assert.Equal(t, model.StateAvailable, v.State)
	assert.InDelta(t, 48.86, v.Where.Loc.Lat, 1e-6)

	require.NoError(t, svc.Close())

	store, err := sessionlog.NewJSONLStore(cfg.SessionLog.Path)
	require.NoError(t, err)
	recs, err := store.Query(context.Background(), sessionlog.Query{Kind: sessionlog.KindRide})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "v1", recs[0].VehicleID)
	assert.Equal(t, []string{"r1"}, recs[0].RequestIDs)
}

func TestServiceRunChargesDepletedVehicle(t *testing.T) {
	cfg := testConfig()
	cfg.Charging = config.ChargingConfig{Stations: []config.StationConfig{{
		ID: "st1", ZoneID: "z1", Lat: 48.86, Lon: 2.35, Stalls: 1, PlugPowerKW: 50,
	}}}

	svc, err := New(cfg)
	require.NoError(t, err)

	ev := testVehicle("ev1")
	ev.IsElectric = true
	ev.BatteryKWh = 10
	ev.SoC = 0.1
	ev.PlugPowerKW = 50
	require.NoError(t, svc.AddVehicle(ev))
	require.NoError(t, svc.SubmitRequest(testRequest("r1")))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, svc.Run(ctx))
	require.NoError(t, svc.Close())

	// The trip drops the vehicle below the refuel threshold, so it heads to
	// the station and charges back to full before the horizon.
	v, err := svc.Fleet.Vehicle("ev1")
	require.NoError(t, err)
	assert.Equal(t, model.StateAvailable, v.State)
	assert.InDelta(t, 1.0, v.SoC, 1e-9)
}

func TestSubmitRequestRejectsDuplicates(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Close()) }()

	require.NoError(t, svc.SubmitRequest(testRequest("r1")))
	assert.Error(t, svc.SubmitRequest(testRequest("r1")))
	assert.Error(t, svc.SubmitRequest(model.Request{}))
}
