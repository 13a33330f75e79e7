package pooling

import (
	"sort"
	"strings"

	"github.com/openfleet/ridehail/core/model"
)

// rtvGraph connects feasible trips (request groups) to the vehicles that can
// serve them, weighted by the wait and detour cost of the best insertion.
type rtvGraph struct {
	trips map[string][]int // trip key -> sorted request indices
	edges []edge
}

// edge is one feasible (trip, vehicle) pairing.
type edge struct {
	tripKey    string
	reqIdx     []int
	vehicleIdx int
	cost       float64
	stops      []model.Stop
}

// buildRTV grows feasible trips from size 1 upward. A group of size k+1 is
// only explored when all of its size-k subsets are feasible trips, the
// subset-pruning that keeps the combinatorial phase tractable.
func (m *Matcher) buildRTV(g *rvGraph) *rtvGraph {
	rtv := &rtvGraph{trips: make(map[string][]int)}
	tripVehicles := make(map[string]map[int]struct{})

	addEdge := func(key string, reqIdx []int, vi int, cost float64, stops []model.Stop) {
		if _, ok := rtv.trips[key]; !ok {
			rtv.trips[key] = reqIdx
		}
		vs, ok := tripVehicles[key]
		if !ok {
			vs = make(map[int]struct{})
			tripVehicles[key] = vs
		}
		vs[vi] = struct{}{}
		rtv.edges = append(rtv.edges, edge{tripKey: key, reqIdx: reqIdx, vehicleIdx: vi, cost: cost, stops: stops})
	}

	// Size 1: one trip per request with at least one serving vehicle.
	level := make(map[string][]int)
	for ri := range g.requests {
		for vi := range g.vehicles {
			e, ok := g.rv[[2]int{ri, vi}]
			if !ok {
				continue
			}
			key := m.tripKey(g, []int{ri})
			addEdge(key, []int{ri}, vi, e.cost, e.stops)
			level[key] = []int{ri}
		}
	}

	for size := 2; size <= m.cfg.MaxGroupSize && len(level) > 0; size++ {
		next := make(map[string][]int)
		keys := sortedKeys(level)
		for ai := 0; ai < len(keys); ai++ {
			for bi := ai + 1; bi < len(keys); bi++ {
				union := mergeIdx(level[keys[ai]], level[keys[bi]])
				if len(union) != size {
					continue
				}
				key := m.tripKey(g, union)
				if _, seen := next[key]; seen {
					continue
				}
				if _, seen := rtv.trips[key]; seen {
					continue
				}
				if !m.subsetsFeasible(g, rtv.trips, union) {
					continue
				}
				candidates := intersectVehicles(tripVehicles[keys[ai]], tripVehicles[keys[bi]])
				reqs := make([]model.Request, len(union))
				for k, ri := range union {
					reqs[k] = g.requests[ri]
				}
				added := false
				for _, vi := range candidates {
					v := g.vehicles[vi]
					stops, cost, ok := m.bestSequence(v.Where, v.SeatCapacity, reqs)
					if !ok {
						continue
					}
					addEdge(key, union, vi, cost, stops)
					added = true
				}
				if added {
					next[key] = union
				}
			}
		}
		level = next
	}
	return rtv
}

// subsetsFeasible checks every pair for an RV edge and every size-(k-1)
// subset for trip membership.
func (m *Matcher) subsetsFeasible(g *rvGraph, trips map[string][]int, union []int) bool {
	for a := 0; a < len(union); a++ {
		for b := a + 1; b < len(union); b++ {
			if !g.pairFeasible(union[a], union[b]) {
				return false
			}
		}
	}
	if len(union) <= 2 {
		return true
	}
	sub := make([]int, 0, len(union)-1)
	for drop := range union {
		sub = sub[:0]
		for k, ri := range union {
			if k != drop {
				sub = append(sub, ri)
			}
		}
		if _, ok := trips[m.tripKey(g, sub)]; !ok {
			return false
		}
	}
	return true
}

// tripKey derives a stable identifier from the request ids of the group.
func (m *Matcher) tripKey(g *rvGraph, idx []int) string {
	ids := make([]string, len(idx))
	for k, ri := range idx {
		ids[k] = g.requests[ri].ID
	}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

func mergeIdx(a, b []int) []int {
	seen := make(map[int]struct{}, len(a)+len(b))
	var out []int
	for _, x := range a {
		if _, ok := seen[x]; !ok {
			seen[x] = struct{}{}
			out = append(out, x)
		}
	}
	for _, x := range b {
		if _, ok := seen[x]; !ok {
			seen[x] = struct{}{}
			out = append(out, x)
		}
	}
	sort.Ints(out)
	return out
}

func intersectVehicles(a, b map[int]struct{}) []int {
	var out []int
	for vi := range a {
		if _, ok := b[vi]; ok {
			out = append(out, vi)
		}
	}
	sort.Ints(out)
	return out
}

func sortedKeys(m map[string][]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
