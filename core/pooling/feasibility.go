package pooling

import (
	"math"

	"github.com/openfleet/ridehail/core/model"
)

// stopRef identifies the pickup or dropoff of one request during sequencing.
type stopRef struct {
	req  int // index into the request slice
	kind model.StopKind
}

// sequencer searches for the cheapest stop ordering serving a set of requests
// from a vehicle start position, honoring wait windows, detour budgets and
// seat capacity. It enumerates orderings depth-first with cost pruning; group
// sizes are small so the search space stays tiny.
type sequencer struct {
	m        *Matcher
	reqs     []model.Request
	capacity int

	bestCost  float64
	bestStops []model.Stop
	found     bool

	stops      []model.Stop
	pickupTime []int64
	picked     uint32
	dropped    uint32
	onboard    int
}

// bestSequence returns the cheapest feasible schedule serving all reqs from
// start, or ok=false when none exists. Cost is the sum over requests of
// value-of-time weighted wait plus detour seconds.
func (m *Matcher) bestSequence(start model.Spacetime, capacity int, reqs []model.Request) (stops []model.Stop, cost float64, ok bool) {
	s := &sequencer{
		m:          m,
		reqs:       reqs,
		capacity:   capacity,
		bestCost:   math.Inf(1),
		pickupTime: make([]int64, len(reqs)),
	}
	s.search(start.Loc, start.Time, 0)
	if !s.found {
		return nil, 0, false
	}
	return s.bestStops, s.bestCost, true
}

func (s *sequencer) search(loc model.Coord, t int64, cost float64) {
	if cost >= s.bestCost {
		return
	}
	all := uint32(1)<<len(s.reqs) - 1
	if s.dropped == all {
		s.found = true
		s.bestCost = cost
		s.bestStops = append([]model.Stop(nil), s.stops...)
		return
	}
	for i, r := range s.reqs {
		bit := uint32(1) << i
		switch {
		case s.picked&bit == 0:
			if s.onboard+r.GroupSize() > s.capacity {
				continue
			}
			arrive := t + s.m.skim.TravelTimeSec(loc, r.Pickup)
			pickup := arrive
			if pickup < r.DepartTime {
				pickup = r.DepartTime
			}
			if pickup > r.LatestPickup() {
				continue
			}
			wait := pickup - r.DepartTime
			s.push(i, bit, r, model.Stop{
				RequestID:   r.ID,
				Kind:        model.StopPickup,
				Loc:         r.Pickup,
				PlannedTime: pickup,
				Riders:      r.GroupSize(),
			}, cost+valueOfTime(r)*float64(wait))
		case s.dropped&bit == 0:
			arrive := t + s.m.skim.TravelTimeSec(loc, r.Dropoff)
			onboardSec := arrive - s.pickupTime[i]
			direct := s.m.skim.TravelTimeSec(r.Pickup, r.Dropoff)
			detour := onboardSec - direct
			if detour > r.MaxDetourSec {
				continue
			}
			if detour < 0 {
				detour = 0
			}
			s.push(i, bit, r, model.Stop{
				RequestID:   r.ID,
				Kind:        model.StopDropoff,
				Loc:         r.Dropoff,
				PlannedTime: arrive,
				Riders:      r.GroupSize(),
			}, cost+valueOfTime(r)*float64(detour))
		}
	}
}

// push applies the stop, recurses, and backtracks.
func (s *sequencer) push(i int, bit uint32, r model.Request, stop model.Stop, cost float64) {
	if stop.Kind == model.StopPickup {
		s.picked |= bit
		s.onboard += r.GroupSize()
		s.pickupTime[i] = stop.PlannedTime
	} else {
		s.dropped |= bit
		s.onboard -= r.GroupSize()
	}
	s.stops = append(s.stops, stop)

	s.search(stop.Loc, stop.PlannedTime, cost)

	s.stops = s.stops[:len(s.stops)-1]
	if stop.Kind == model.StopPickup {
		s.picked &^= bit
		s.onboard -= r.GroupSize()
	} else {
		s.dropped &^= bit
		s.onboard += r.GroupSize()
	}
}

func valueOfTime(r model.Request) float64 {
	if r.ValueOfTime <= 0 {
		return 1
	}
	return r.ValueOfTime
}
