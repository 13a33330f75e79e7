// Package scheduler advances the simulation over discrete ticks: triggers
// are queued by tick, handlers consume them in order and may schedule
// follow-up triggers. No two triggers are ever processed concurrently.
package scheduler

import (
	"container/heap"
	"context"
	"fmt"
	"sync"

	"github.com/openfleet/ridehail/core/logger"
)

// Trigger is one scheduled unit of work.
type Trigger struct {
	Tick    int64
	Kind    string
	Subject string // optional entity id the trigger concerns
}

// Handler processes a trigger and returns any follow-up triggers to
// schedule. Follow-ups scheduled before the current tick are rejected.
type Handler func(Trigger) []Trigger

type queuedTrigger struct {
	Trigger
	seq uint64
}

// triggerHeap orders by tick, then insertion order for determinism.
type triggerHeap []queuedTrigger

func (h triggerHeap) Len() int { return len(h) }

func (h triggerHeap) Less(i, j int) bool {
	if h[i].Tick != h[j].Tick {
		return h[i].Tick < h[j].Tick
	}
	return h[i].seq < h[j].seq
}

func (h triggerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *triggerHeap) Push(x any) { *h = append(*h, x.(queuedTrigger)) }

func (h *triggerHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Scheduler drives the tick loop.
type Scheduler struct {
	mu       sync.Mutex
	pending  triggerHeap
	handlers map[string]Handler
	seq      uint64
	now      int64
	horizon  int64
	log      logger.Logger
}

// New creates a scheduler running until the given horizon tick (inclusive).
func New(horizon int64, log logger.Logger) *Scheduler {
	return &Scheduler{handlers: make(map[string]Handler), horizon: horizon, log: log}
}

// RegisterHandler binds a handler to a trigger kind. Registering the same
// kind twice is a programming error.
func (s *Scheduler) RegisterHandler(kind string, h Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.handlers[kind]; dup {
		return fmt.Errorf("scheduler: handler for %q already registered", kind)
	}
	s.handlers[kind] = h
	return nil
}

// Schedule queues a trigger. Triggers in the past are clamped to the current
// tick rather than dropped.
func (s *Scheduler) Schedule(t Trigger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleLocked(t)
}

func (s *Scheduler) scheduleLocked(t Trigger) {
	if t.Tick < s.now {
		s.log.Warnf("trigger %s for %s scheduled in the past (tick %d < %d), clamping", t.Kind, t.Subject, t.Tick, s.now)
		t.Tick = s.now
	}
	s.seq++
	heap.Push(&s.pending, queuedTrigger{Trigger: t, seq: s.seq})
}

// Now returns the tick of the last processed trigger.
func (s *Scheduler) Now() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Run drains the trigger queue in tick order until it is empty, the horizon
// is passed, or the context is canceled. Returns the tick reached.
func (s *Scheduler) Run(ctx context.Context) (int64, error) {
	for {
		if err := ctx.Err(); err != nil {
			return s.Now(), err
		}

		s.mu.Lock()
		if s.pending.Len() == 0 {
			s.mu.Unlock()
			return s.Now(), nil
		}
		next := heap.Pop(&s.pending).(queuedTrigger)
		if next.Tick > s.horizon {
			s.mu.Unlock()
			return s.Now(), nil
		}
		s.now = next.Tick
		h, ok := s.handlers[next.Kind]
		s.mu.Unlock()

		if !ok {
			s.log.Errorf("no handler for trigger kind %q (subject %s)", next.Kind, next.Subject)
			continue
		}
		followups := h(next.Trigger)

		s.mu.Lock()
		for _, f := range followups {
			s.scheduleLocked(f)
		}
		s.mu.Unlock()
	}
}
