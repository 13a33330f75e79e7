package pooling

import (
	"sync"

	"github.com/openfleet/ridehail/core/model"
)

// rvGraph is the pairwise feasibility graph: request-request edges mark pairs
// that could share a vehicle, request-vehicle edges mark vehicles that can
// serve a request alone. Rebuilt every matching cycle, never persisted.
type rvGraph struct {
	requests []model.Request
	vehicles []model.Vehicle

	rr map[[2]int]struct{} // i<j request pair feasible
	rv map[[2]int]rvEdge   // (request, vehicle) feasible
}

type rvEdge struct {
	cost  float64
	stops []model.Stop
}

func (g *rvGraph) pairFeasible(i, j int) bool {
	if i > j {
		i, j = j, i
	}
	_, ok := g.rr[[2]int{i, j}]
	return ok
}

// virtualCapacity lifts the seat constraint for request-pair probing; the
// real capacity is enforced against concrete vehicles in the RTV phase.
const virtualCapacity = 1 << 16

// buildRV constructs the pairwise graph. The request-pair tests are
// independent of each other and run on a bounded worker pool; the result is
// merged before the function returns, so callers observe a fully built graph.
func (m *Matcher) buildRV(requests []model.Request, vehicles []model.Vehicle) *rvGraph {
	g := &rvGraph{
		requests: requests,
		vehicles: vehicles,
		rr:       make(map[[2]int]struct{}),
		rv:       make(map[[2]int]rvEdge),
	}

	type pair struct{ i, j int }
	var pairs []pair
	for i := range requests {
		for j := i + 1; j < len(requests); j++ {
			if requests[i].Pickup.DistanceM(requests[j].Pickup) > m.cfg.SearchRadiusM {
				continue
			}
			pairs = append(pairs, pair{i, j})
		}
	}

	feasible := make([]bool, len(pairs))
	var wg sync.WaitGroup
	chunk := (len(pairs) + m.cfg.Workers - 1) / m.cfg.Workers
	for w := 0; w < m.cfg.Workers && w*chunk < len(pairs); w++ {
		lo, hi := w*chunk, (w+1)*chunk
		if hi > len(pairs) {
			hi = len(pairs)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for k := lo; k < hi; k++ {
				p := pairs[k]
				feasible[k] = m.requestsPairFeasible(requests[p.i], requests[p.j])
			}
		}(lo, hi)
	}
	wg.Wait()
	for k, ok := range feasible {
		if ok {
			g.rr[[2]int{pairs[k].i, pairs[k].j}] = struct{}{}
		}
	}

	for vi, v := range vehicles {
		for ri, r := range requests {
			if v.Where.Loc.DistanceM(r.Pickup) > m.cfg.SearchRadiusM {
				continue
			}
			if !v.CanServe(r) {
				continue
			}
			stops, cost, ok := m.bestSequence(v.Where, v.SeatCapacity, []model.Request{r})
			if !ok {
				continue
			}
			g.rv[[2]int{ri, vi}] = rvEdge{cost: cost, stops: stops}
		}
	}
	return g
}

// requestsPairFeasible probes whether some vehicle could serve both requests,
// approximated by a virtual vehicle starting at either pickup at that
// request's depart time.
func (m *Matcher) requestsPairFeasible(a, b model.Request) bool {
	reqs := []model.Request{a, b}
	if _, _, ok := m.bestSequence(model.Spacetime{Loc: a.Pickup, Time: a.DepartTime}, virtualCapacity, reqs); ok {
		return true
	}
	_, _, ok := m.bestSequence(model.Spacetime{Loc: b.Pickup, Time: b.DepartTime}, virtualCapacity, reqs)
	return ok
}
