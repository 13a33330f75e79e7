package fleet

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corelogger "github.com/openfleet/ridehail/core/logger"
	"github.com/openfleet/ridehail/core/model"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

var _ corelogger.Logger = nopLogger{}

// testRouter drives great-circle distances at a fixed speed.
type testRouter struct {
	speedMps float64
}

func (r testRouter) Route(from, to model.Coord, departTime int64) (model.RouteLeg, error) {
	dist := from.DistanceM(to)
	return model.RouteLeg{
		From:      from,
		To:        to,
		Depart:    departTime,
		Duration:  int64(dist / r.speedMps),
		DistanceM: dist,
	}, nil
}

func coordAt(northM, eastM float64) model.Coord {
	return model.Coord{Lat: northM / 111320.0, Lon: eastM / 111320.0}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{SearchRadiusM: 5000}, testRouter{speedMps: 10}, nil, nil, nopLogger{})
	require.NoError(t, err)
	return m
}

func availableVehicle(id string, loc model.Coord) model.Vehicle {
	return model.Vehicle{
		ID:           id,
		Where:        model.Spacetime{Loc: loc},
		State:        model.StateAvailable,
		SeatCapacity: 4,
		IsElectric:   true,
		BatteryKWh:   50,
		SoC:          0.9,
		PlugPowerKW:  50,
	}
}

func testRequest(id string, pickup, dropoff model.Coord) model.Request {
	return model.Request{
		ID:           id,
		RiderIDs:     []string{id + "-rider"},
		Pickup:       pickup,
		Dropoff:      dropoff,
		DepartTime:   0,
		MaxWaitSec:   600,
		MaxDetourSec: 600,
	}
}

func TestInquiryPicksNearestCheapestVehicle(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddVehicle(availableVehicle("v-far", coordAt(3000, 0))))
	require.NoError(t, m.AddVehicle(availableVehicle("v-near", coordAt(500, 0))))

	p, err := m.Inquiry(testRequest("r1", coordAt(0, 0), coordAt(0, 2000)))
	require.NoError(t, err)
	assert.Equal(t, "v-near", p.VehicleID)
	assert.Equal(t, int64(50), p.TimeToPickupSec)
	assert.Greater(t, p.Fare, 0.0)
}

func TestInquiryNoDriverWithinRadius(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddVehicle(availableVehicle("v1", coordAt(20000, 0))))

	_, err := m.Inquiry(testRequest("r1", coordAt(0, 0), coordAt(0, 1000)))
	assert.ErrorIs(t, err, ErrDriverNotFound)
}

func TestInquiryRespectsMaxWait(t *testing.T) {
	m := newTestManager(t)
	// 4 km away at 10 m/s is a 400 s deadhead, beyond the 300 s wait budget.
	require.NoError(t, m.AddVehicle(availableVehicle("v1", coordAt(4000, 0))))

	req := testRequest("r1", coordAt(0, 0), coordAt(0, 1000))
	req.MaxWaitSec = 300
	_, err := m.Inquiry(req)
	assert.ErrorIs(t, err, ErrDriverNotFound)
}

func TestInquirySkipsGeofencedVehicle(t *testing.T) {
	m := newTestManager(t)
	fenced := availableVehicle("v-fenced", coordAt(100, 0))
	fenced.Geofence = &model.Geofence{Center: coordAt(100, 0), RadiusM: 200}
	require.NoError(t, m.AddVehicle(fenced))
	require.NoError(t, m.AddVehicle(availableVehicle("v-free", coordAt(1000, 0))))

	p, err := m.Inquiry(testRequest("r1", coordAt(0, 0), coordAt(0, 3000)))
	require.NoError(t, err)
	assert.Equal(t, "v-free", p.VehicleID)
}

func TestReserveConfirmsAndLocksVehicle(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddVehicle(availableVehicle("v1", coordAt(500, 0))))

	req := testRequest("r1", coordAt(0, 0), coordAt(0, 2000))
	p, err := m.Inquiry(req)
	require.NoError(t, err)

	conf, err := m.Reserve(req.ID)
	require.NoError(t, err)
	assert.Equal(t, p.VehicleID, conf.VehicleID)
	assert.Equal(t, p.Fare, conf.Fare)
	assert.GreaterOrEqual(t, conf.PickupTime, req.DepartTime)
	assert.Greater(t, conf.DropoffTime, conf.PickupTime)

	v, err := m.Vehicle("v1")
	require.NoError(t, err)
	assert.Equal(t, model.StateInService, v.State)
	assert.Len(t, v.Schedule.Stops, 2)

	// The vehicle is gone from the candidate set.
	_, err = m.Inquiry(testRequest("r2", coordAt(0, 0), coordAt(0, 1000)))
	assert.ErrorIs(t, err, ErrDriverNotFound)
}

func TestReserveUnknownRequest(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Reserve("never-seen")
	assert.ErrorIs(t, err, ErrUnknownRequest)
}

func TestConcurrentReserveDoubleBooking(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddVehicle(availableVehicle("v1", coordAt(500, 0))))

	reqA := testRequest("r-a", coordAt(0, 0), coordAt(0, 2000))
	reqB := testRequest("r-b", coordAt(0, 0), coordAt(0, 2500))
	_, err := m.Inquiry(reqA)
	require.NoError(t, err)
	_, err = m.Inquiry(reqB)
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _, errs[0] = m.Reserve(reqA.ID) }()
	go func() { defer wg.Done(); _, errs[1] = m.Reserve(reqB.ID) }()
	wg.Wait()

	succeeded, taken := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrVehicleTaken):
			taken++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one reservation must win")
	assert.Equal(t, 1, taken, "the loser must see ErrVehicleTaken")
}

func TestReserveExpiredProposalFallsBackToFreshInquiry(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddVehicle(availableVehicle("v1", coordAt(500, 0))))

	current := time.Unix(0, 0)
	m.SetClock(func() time.Time { return current })

	req := testRequest("r1", coordAt(0, 0), coordAt(0, 2000))
	_, err := m.Inquiry(req)
	require.NoError(t, err)

	current = current.Add(2 * time.Minute) // past the default 60 s TTL

	conf, err := m.Reserve(req.ID)
	require.NoError(t, err)
	assert.Equal(t, "v1", conf.VehicleID)
}

func TestCompleteTripReturnsVehicleToService(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddVehicle(availableVehicle("v1", coordAt(500, 0))))

	req := testRequest("r1", coordAt(0, 0), coordAt(0, 2000))
	_, err := m.Inquiry(req)
	require.NoError(t, err)
	conf, err := m.Reserve(req.ID)
	require.NoError(t, err)

	v, err := m.CompleteTrip("v1", conf.DropoffTime)
	require.NoError(t, err)
	assert.Equal(t, model.StateAvailable, v.State)
	assert.Equal(t, conf.DropoffTime, v.Where.Time)
	assert.InDelta(t, req.Dropoff.Lat, v.Where.Loc.Lat, 1e-9)

	// Available again for the next rider.
	p, err := m.Inquiry(testRequest("r2", coordAt(0, 2000), coordAt(0, 0)))
	require.NoError(t, err)
	assert.Equal(t, "v1", p.VehicleID)
}

func TestCompleteTripLowChargeSendsVehicleToDepot(t *testing.T) {
	m := newTestManager(t)
	v := availableVehicle("v1", coordAt(500, 0))
	v.SoC = 0.1
	require.NoError(t, m.AddVehicle(v))

	req := testRequest("r1", coordAt(0, 0), coordAt(0, 2000))
	_, err := m.Inquiry(req)
	require.NoError(t, err)
	conf, err := m.Reserve(req.ID)
	require.NoError(t, err)

	done, err := m.CompleteTrip("v1", conf.DropoffTime)
	require.NoError(t, err)
	assert.Equal(t, model.StateOnWayToDepot, done.State)

	// Not available while heading to the depot.
	_, err = m.Inquiry(testRequest("r2", coordAt(0, 2000), coordAt(0, 0)))
	assert.ErrorIs(t, err, ErrDriverNotFound)

	// After charging the vehicle rejoins the fleet.
	done.State = model.StateAvailable
	done.SoC = 1
	require.NoError(t, m.UpdateVehicle(done))
	p, err := m.Inquiry(testRequest("r3", coordAt(0, 2000), coordAt(0, 0)))
	require.NoError(t, err)
	assert.Equal(t, "v1", p.VehicleID)
}

func TestCommitScheduleRejectsBusyVehicle(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddVehicle(availableVehicle("v1", coordAt(500, 0))))

	sched := model.PassengerSchedule{Stops: []model.Stop{
		{RequestID: "r1", Kind: model.StopPickup, Loc: coordAt(0, 0), PlannedTime: 10, Riders: 1},
		{RequestID: "r1", Kind: model.StopDropoff, Loc: coordAt(0, 1000), PlannedTime: 110, Riders: 1},
	}}
	require.NoError(t, m.CommitSchedule("v1", sched))
	err := m.CommitSchedule("v1", sched)
	assert.ErrorIs(t, err, ErrVehicleTaken)
}
