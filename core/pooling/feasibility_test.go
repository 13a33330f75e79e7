package pooling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfleet/ridehail/core/model"
)

func sequenceRequest(id string, riders int, pickup, dropoff model.Coord) model.Request {
	ids := make([]string, riders)
	for i := range ids {
		ids[i] = id + "-rider"
	}
	return model.Request{
		ID:       id,
		RiderIDs: ids,
		Pickup:   pickup, Dropoff: dropoff,
		DepartTime: 0, MaxWaitSec: 600, MaxDetourSec: 600, ValueOfTime: 1,
	}
}

func TestBestSequenceSingleRequest(t *testing.T) {
	m := testMatcher(t)
	r := sequenceRequest("a", 1, coordAt(0, 100), coordAt(0, 1100))

	stops, cost, ok := m.bestSequence(model.Spacetime{Loc: coordAt(0, 0)}, 4, []model.Request{r})
	require.True(t, ok)
	require.Len(t, stops, 2)
	assert.Equal(t, model.StopPickup, stops[0].Kind)
	assert.Equal(t, model.StopDropoff, stops[1].Kind)
	// 10 seconds to pickup, zero detour.
	assert.InDelta(t, 10, cost, 1)
	assert.InDelta(t, 110, float64(stops[1].PlannedTime), 1)
}

func TestBestSequenceSeatCapacity(t *testing.T) {
	m := testMatcher(t)
	a := sequenceRequest("a", 2, coordAt(0, 100), coordAt(0, 1100))
	b := sequenceRequest("b", 2, coordAt(0, 150), coordAt(0, 1150))

	// Three seats force a dropoff between the pickups, which the detour
	// budget allows here, so the schedule interleaves instead of failing.
	_, _, ok := m.bestSequence(model.Spacetime{Loc: coordAt(0, 0)}, 4, []model.Request{a, b})
	assert.True(t, ok)

	stops, _, ok := m.bestSequence(model.Spacetime{Loc: coordAt(0, 0)}, 3, []model.Request{a, b})
	require.True(t, ok)
	onboard := 0
	for _, s := range stops {
		if s.Kind == model.StopPickup {
			onboard += s.Riders
		} else {
			onboard -= s.Riders
		}
		assert.LessOrEqual(t, onboard, 3)
	}

	_, _, ok = m.bestSequence(model.Spacetime{Loc: coordAt(0, 0)}, 1, []model.Request{a})
	assert.False(t, ok, "two riders cannot share one seat")
}

func TestBestSequenceWaitWindow(t *testing.T) {
	m := testMatcher(t)
	r := sequenceRequest("a", 1, coordAt(0, 100), coordAt(0, 1100))
	r.MaxWaitSec = 5 // pickup is 10 seconds away

	_, _, ok := m.bestSequence(model.Spacetime{Loc: coordAt(0, 0)}, 4, []model.Request{r})
	assert.False(t, ok)
}

func TestBestSequenceWaitStartsAtDepartTime(t *testing.T) {
	m := testMatcher(t)
	r := sequenceRequest("a", 1, coordAt(0, 100), coordAt(0, 1100))
	r.DepartTime = 100

	stops, cost, ok := m.bestSequence(model.Spacetime{Loc: coordAt(0, 0)}, 4, []model.Request{r})
	require.True(t, ok)
	// Vehicle arrives early and idles until the requested depart time.
	assert.EqualValues(t, 100, stops[0].PlannedTime)
	assert.InDelta(t, 0, cost, 0.001)
}

func TestBestSequenceDetourBudget(t *testing.T) {
	m := testMatcher(t)
	a := sequenceRequest("a", 1, coordAt(0, 100), coordAt(0, 1100))
	b := sequenceRequest("b", 1, coordAt(300, 500), coordAt(300, 1500))
	a.MaxWaitSec, a.MaxDetourSec = 60, 2
	b.MaxWaitSec, b.MaxDetourSec = 60, 2

	// b sits off a's corridor: interleaving blows the detour budget and the
	// wait windows rule out serving them back to back.
	_, _, ok := m.bestSequence(model.Spacetime{Loc: coordAt(0, 0)}, 4, []model.Request{a, b})
	assert.False(t, ok)
}

func TestBestSequencePrefersCheaperOrder(t *testing.T) {
	m := testMatcher(t)
	a := sequenceRequest("a", 1, coordAt(0, 100), coordAt(0, 3100))
	b := sequenceRequest("b", 1, coordAt(0, 200), coordAt(0, 3200))

	stops, _, ok := m.bestSequence(model.Spacetime{Loc: coordAt(0, 0)}, 4, []model.Request{a, b})
	require.True(t, ok)
	require.Len(t, stops, 4)
	// Picking a on the way to b costs nothing extra; the reverse backtracks.
	assert.Equal(t, "a", stops[0].RequestID)
	assert.Equal(t, "b", stops[1].RequestID)
}
