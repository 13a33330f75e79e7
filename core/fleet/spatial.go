package fleet

import (
	"math"
	"sort"

	"github.com/openfleet/ridehail/core/model"
)

const metersPerDegree = 111320.0

// cell addresses one bucket of the grid index.
type cell struct {
	x, y int
}

// Neighbor is one spatial lookup hit.
type Neighbor struct {
	ID        string
	DistanceM float64
}

// SpatialIndex is a grid-bucketed index over vehicle positions. It is not
// safe for concurrent use; the fleet manager is its single writer.
type SpatialIndex struct {
	cellM float64
	cells map[cell]map[string]model.Coord
	items map[string]model.Coord
}

// NewSpatialIndex creates an index with the given cell edge length in meters.
func NewSpatialIndex(cellM float64) *SpatialIndex {
	if cellM <= 0 {
		cellM = 500
	}
	return &SpatialIndex{
		cellM: cellM,
		cells: make(map[cell]map[string]model.Coord),
		items: make(map[string]model.Coord),
	}
}

func (x *SpatialIndex) cellOf(c model.Coord) cell {
	return cell{
		x: int(math.Floor(c.Lon * metersPerDegree * math.Cos(c.Lat*math.Pi/180) / x.cellM)),
		y: int(math.Floor(c.Lat * metersPerDegree / x.cellM)),
	}
}

// Insert adds or moves an entry.
func (x *SpatialIndex) Insert(id string, c model.Coord) {
	x.Remove(id)
	k := x.cellOf(c)
	bucket, ok := x.cells[k]
	if !ok {
		bucket = make(map[string]model.Coord)
		x.cells[k] = bucket
	}
	bucket[id] = c
	x.items[id] = c
}

// Remove deletes an entry if present.
func (x *SpatialIndex) Remove(id string) {
	c, ok := x.items[id]
	if !ok {
		return
	}
	k := x.cellOf(c)
	if bucket, ok := x.cells[k]; ok {
		delete(bucket, id)
		if len(bucket) == 0 {
			delete(x.cells, k)
		}
	}
	delete(x.items, id)
}

// Len returns the number of indexed entries.
func (x *SpatialIndex) Len() int { return len(x.items) }

// Nearest returns up to limit entries within radiusM of origin that satisfy
// pred, ordered by distance then id. A nil pred accepts everything.
func (x *SpatialIndex) Nearest(origin model.Coord, radiusM float64, limit int, pred func(id string) bool) []Neighbor {
	span := int(math.Ceil(radiusM/x.cellM)) + 1
	center := x.cellOf(origin)

	var hits []Neighbor
	for dy := -span; dy <= span; dy++ {
		for dx := -span; dx <= span; dx++ {
			bucket, ok := x.cells[cell{x: center.x + dx, y: center.y + dy}]
			if !ok {
				continue
			}
			for id, c := range bucket {
				if pred != nil && !pred(id) {
					continue
				}
				d := origin.DistanceM(c)
				if d <= radiusM {
					hits = append(hits, Neighbor{ID: id, DistanceM: d})
				}
			}
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].DistanceM != hits[j].DistanceM {
			return hits[i].DistanceM < hits[j].DistanceM
		}
		return hits[i].ID < hits[j].ID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
