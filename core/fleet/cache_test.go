package fleet

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfleet/ridehail/core/model"
)

func entryAt(id string, created time.Time, ttl time.Duration) cacheEntry {
	return cacheEntry{
		Proposal: model.TravelProposal{
			ID:        id + "-proposal",
			RequestID: id,
			VehicleID: "v1",
			CreatedAt: created,
			ExpiresAt: created.Add(ttl),
		},
		Request: model.Request{ID: id},
	}
}

func TestProposalCacheGetFreshAndExpired(t *testing.T) {
	c := newProposalCache(10)
	t0 := time.Unix(0, 0)
	c.Put(entryAt("r1", t0, time.Minute), t0)

	e, fresh, ok := c.Get("r1", t0.Add(30*time.Second))
	require.True(t, ok)
	assert.True(t, fresh)
	assert.Equal(t, "r1", e.Request.ID)

	_, fresh, ok = c.Get("r1", t0.Add(2*time.Minute))
	require.True(t, ok, "expired entries stay resolvable for the inquiry fallback")
	assert.False(t, fresh)

	_, _, ok = c.Get("r2", t0)
	assert.False(t, ok)
}

func TestProposalCacheCapacityEvictsOldest(t *testing.T) {
	c := newProposalCache(3)
	t0 := time.Unix(0, 0)
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("r%d", i)
		c.Put(entryAt(id, t0.Add(time.Duration(i)*time.Second), time.Minute), t0.Add(time.Duration(i)*time.Second))
	}
	assert.Equal(t, 3, c.Len())
	_, _, ok := c.Get("r0", t0)
	assert.False(t, ok)
	_, _, ok = c.Get("r4", t0.Add(4*time.Second))
	assert.True(t, ok)
}

func TestProposalCacheDrop(t *testing.T) {
	c := newProposalCache(10)
	t0 := time.Unix(0, 0)
	c.Put(entryAt("r1", t0, time.Minute), t0)
	c.Drop("r1")
	assert.Equal(t, 0, c.Len())
	_, _, ok := c.Get("r1", t0)
	assert.False(t, ok)
}

func TestProposalCacheSweepRemovesExpiredOnPut(t *testing.T) {
	c := newProposalCache(10)
	t0 := time.Unix(0, 0)
	c.Put(entryAt("r1", t0, time.Minute), t0)
	c.Put(entryAt("r2", t0.Add(2*time.Minute), time.Minute), t0.Add(2*time.Minute))
	assert.Equal(t, 1, c.Len(), "expired r1 swept when r2 was inserted")
}
