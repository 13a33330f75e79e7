package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpatialIndexNearestOrdersByDistance(t *testing.T) {
	x := NewSpatialIndex(500)
	x.Insert("a", coordAt(1000, 0))
	x.Insert("b", coordAt(200, 0))
	x.Insert("c", coordAt(4000, 0))
	x.Insert("far", coordAt(50000, 0))

	hits := x.Nearest(coordAt(0, 0), 5000, 0, nil)
	require.Len(t, hits, 3)
	assert.Equal(t, "b", hits[0].ID)
	assert.Equal(t, "a", hits[1].ID)
	assert.Equal(t, "c", hits[2].ID)
	assert.InDelta(t, 200, hits[0].DistanceM, 1)
}

func TestSpatialIndexLimitAndPredicate(t *testing.T) {
	x := NewSpatialIndex(500)
	x.Insert("a", coordAt(100, 0))
	x.Insert("b", coordAt(200, 0))
	x.Insert("c", coordAt(300, 0))

	hits := x.Nearest(coordAt(0, 0), 5000, 2, nil)
	assert.Len(t, hits, 2)

	hits = x.Nearest(coordAt(0, 0), 5000, 0, func(id string) bool { return id != "a" })
	require.Len(t, hits, 2)
	assert.Equal(t, "b", hits[0].ID)
}

func TestSpatialIndexInsertMovesEntry(t *testing.T) {
	x := NewSpatialIndex(500)
	x.Insert("a", coordAt(100, 0))
	x.Insert("a", coordAt(9000, 0))
	assert.Equal(t, 1, x.Len())

	hits := x.Nearest(coordAt(0, 0), 1000, 0, nil)
	assert.Empty(t, hits)
	hits = x.Nearest(coordAt(9000, 0), 1000, 0, nil)
	assert.Len(t, hits, 1)
}

func TestSpatialIndexRemove(t *testing.T) {
	x := NewSpatialIndex(500)
	x.Insert("a", coordAt(100, 0))
	x.Remove("a")
	x.Remove("a") // second remove is a no-op
	assert.Equal(t, 0, x.Len())
	assert.Empty(t, x.Nearest(coordAt(0, 0), 5000, 0, nil))
}
