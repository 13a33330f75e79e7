package fleet

import (
	"time"

	"github.com/openfleet/ridehail/core/model"
)

// cacheEntry binds a cached proposal to the request that produced it, so an
// expired entry can fall back to a fresh inquiry.
type cacheEntry struct {
	Proposal model.TravelProposal
	Request  model.Request
}

// proposalCache is a TTL- and capacity-bounded cache of travel proposals keyed
// by request id. It is not safe for concurrent use; the manager's mutex guards
// all access.
type proposalCache struct {
	capacity int
	entries  map[string]cacheEntry
	order    []string // insertion order for capacity eviction
}

func newProposalCache(capacity int) *proposalCache {
	if capacity <= 0 {
		capacity = 1024
	}
	return &proposalCache{
		capacity: capacity,
		entries:  make(map[string]cacheEntry),
	}
}

// Put stores the entry, evicting the oldest one when over capacity.
func (p *proposalCache) Put(e cacheEntry, now time.Time) {
	id := e.Request.ID
	if _, ok := p.entries[id]; !ok {
		p.order = append(p.order, id)
	}
	p.entries[id] = e
	for len(p.entries) > p.capacity && len(p.order) > 0 {
		oldest := p.order[0]
		p.order = p.order[1:]
		delete(p.entries, oldest)
	}
	p.sweep(now)
}

// Get returns the entry for the request id. fresh is false when the entry
// exists but its proposal has expired.
func (p *proposalCache) Get(requestID string, now time.Time) (e cacheEntry, fresh, ok bool) {
	e, ok = p.entries[requestID]
	if !ok {
		return cacheEntry{}, false, false
	}
	return e, !e.Proposal.Expired(now), true
}

// Drop removes the entry for the request id.
func (p *proposalCache) Drop(requestID string) {
	if _, ok := p.entries[requestID]; !ok {
		return
	}
	delete(p.entries, requestID)
	for i, id := range p.order {
		if id == requestID {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of cached entries.
func (p *proposalCache) Len() int { return len(p.entries) }

// sweep drops expired entries from the front of the insertion order. Entries
// are inserted with monotonically increasing expiry, so stopping at the first
// fresh one is enough.
func (p *proposalCache) sweep(now time.Time) {
	for len(p.order) > 0 {
		id := p.order[0]
		e, ok := p.entries[id]
		if ok && !e.Proposal.Expired(now) {
			return
		}
		p.order = p.order[1:]
		if ok {
			delete(p.entries, id)
		}
	}
}
