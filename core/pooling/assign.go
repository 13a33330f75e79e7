package pooling

import (
	"sort"

	"github.com/openfleet/ridehail/core/model"
)

// assign greedily picks (trip, vehicle) edges: larger groups first, then
// cheaper cost, with vehicle id and trip key breaking the remaining ties so
// the same input always produces the same assignment.
func (m *Matcher) assign(g *rvGraph, rtv *rtvGraph) Result {
	edges := make([]edge, len(rtv.edges))
	copy(edges, rtv.edges)
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if len(a.reqIdx) != len(b.reqIdx) {
			return len(a.reqIdx) > len(b.reqIdx)
		}
		if a.cost != b.cost {
			return a.cost < b.cost
		}
		va, vb := g.vehicles[a.vehicleIdx].ID, g.vehicles[b.vehicleIdx].ID
		if va != vb {
			return va < vb
		}
		return a.tripKey < b.tripKey
	})

	usedVehicle := make(map[int]struct{})
	usedRequest := make(map[int]struct{})
	var res Result
	for _, e := range edges {
		if _, taken := usedVehicle[e.vehicleIdx]; taken {
			continue
		}
		conflict := false
		for _, ri := range e.reqIdx {
			if _, taken := usedRequest[ri]; taken {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}
		usedVehicle[e.vehicleIdx] = struct{}{}
		ids := make([]string, len(e.reqIdx))
		for k, ri := range e.reqIdx {
			usedRequest[ri] = struct{}{}
			ids[k] = g.requests[ri].ID
		}
		sort.Strings(ids)
		res.Assignments = append(res.Assignments, Assignment{
			VehicleID:  g.vehicles[e.vehicleIdx].ID,
			RequestIDs: ids,
			Schedule:   model.PassengerSchedule{Stops: e.stops},
			Cost:       e.cost,
		})
	}

	for ri, r := range g.requests {
		if _, taken := usedRequest[ri]; !taken {
			res.Unmatched = append(res.Unmatched, r.ID)
		}
	}
	sort.Strings(res.Unmatched)
	return res
}
