// Package fleet implements the ride-hail dispatch core: converting inquiries
// into priced travel proposals and acceptances into committed reservations,
// while keeping the availability state of the fleet consistent.
//
// All mutable state is owned by the Manager and mutated only inside its
// mutex-guarded handlers, so a check-then-act sequence such as the
// double-booking test in Reserve executes atomically.
package fleet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openfleet/ridehail/core/events"
	"github.com/openfleet/ridehail/core/logger"
	"github.com/openfleet/ridehail/core/model"
	"github.com/openfleet/ridehail/core/routing"
	"github.com/openfleet/ridehail/internal/eventbus"
)

// Manager maintains the fleet and serves inquiries and reservations.
type Manager struct {
	cfg     Config
	router  routing.Router
	pricing *SurgePricing
	bus     eventbus.EventBus
	log     logger.Logger

	mu        sync.Mutex
	vehicles  map[string]*model.Vehicle
	index     *SpatialIndex
	proposals *proposalCache
	locked    map[string]string // vehicle id -> request id holding the lock
	now       func() time.Time
}

// NewManager creates a fleet manager. The bus may be nil when no event sink is
// wired.
func NewManager(cfg Config, router routing.Router, pricing *SurgePricing, bus eventbus.EventBus, log logger.Logger) (*Manager, error) {
	if router == nil || log == nil {
		return nil, fmt.Errorf("fleet: nil parameter provided to NewManager")
	}
	cfg.SetDefaults()
	if pricing == nil {
		pricing = NewSurgePricing(PricingConfig{})
	}
	return &Manager{
		cfg:       cfg,
		router:    router,
		pricing:   pricing,
		bus:       bus,
		log:       log,
		vehicles:  make(map[string]*model.Vehicle),
		index:     NewSpatialIndex(cfg.SearchRadiusM / 4),
		proposals: newProposalCache(0),
		locked:    make(map[string]string),
		now:       time.Now,
	}, nil
}

// SetClock overrides the wall clock used for proposal expiry.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

// AddVehicle registers a vehicle with the fleet.
func (m *Manager) AddVehicle(v model.Vehicle) error {
	if err := v.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[v.ID]; ok {
		return fmt.Errorf("fleet: vehicle %s already registered", v.ID)
	}
	vv := v
	m.vehicles[v.ID] = &vv
	if vv.State == model.StateAvailable {
		m.index.Insert(vv.ID, vv.Where.Loc)
	}
	return nil
}

// Vehicle returns a copy of the vehicle record.
func (m *Manager) Vehicle(id string) (model.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok {
		return model.Vehicle{}, fmt.Errorf("%w: %s", ErrUnknownVehicle, id)
	}
	return *v, nil
}

// AvailableVehicles returns copies of all currently available vehicles, used
// as the pooling candidate set.
func (m *Manager) AvailableVehicles() []model.Vehicle {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Vehicle
	for _, v := range m.vehicles {
		if v.State == model.StateAvailable && m.locked[v.ID] == "" {
			out = append(out, *v)
		}
	}
	return out
}

// Inquiry prices the request against the nearest available vehicles and
// returns the cheapest feasible proposal, or ErrDriverNotFound.
func (m *Manager) Inquiry(req model.Request) (*model.TravelProposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inquiryLocked(req)
}

func (m *Manager) inquiryLocked(req model.Request) (*model.TravelProposal, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	m.pricing.ObserveDemand(req.Pickup, req.DepartTime)

	pred := func(id string) bool {
		v, ok := m.vehicles[id]
		if !ok || v.State != model.StateAvailable || m.locked[id] != "" {
			return false
		}
		return v.CanServe(req)
	}
	nearby := m.index.Nearest(req.Pickup, m.cfg.SearchRadiusM, 0, pred)
	surge := m.pricing.Multiplier(req.Pickup, req.DepartTime, len(nearby))
	if len(nearby) > m.cfg.MaxCandidates {
		nearby = nearby[:m.cfg.MaxCandidates]
	}

	var best *model.TravelProposal
	for _, n := range nearby {
		v := m.vehicles[n.ID]
		depart := req.DepartTime
		if v.Where.Time > depart {
			depart = v.Where.Time
		}
		toPickup, err := m.router.Route(v.Where.Loc, req.Pickup, depart)
		if err != nil {
			m.log.Debugf("inquiry %s: route to pickup via %s failed: %v", req.ID, v.ID, err)
			continue
		}
		if toPickup.Arrival() > req.LatestPickup() {
			continue
		}
		toDropoff, err := m.router.Route(req.Pickup, req.Dropoff, toPickup.Arrival())
		if err != nil {
			m.log.Debugf("inquiry %s: route to dropoff via %s failed: %v", req.ID, v.ID, err)
			continue
		}
		fare := m.cfg.BaseFare + m.cfg.FarePerSecond*float64(toDropoff.Duration)*surge
		cand := &model.TravelProposal{
			ID:              uuid.NewString(),
			RequestID:       req.ID,
			VehicleID:       v.ID,
			TimeToPickupSec: toPickup.Duration,
			TravelTimeSec:   toDropoff.Duration,
			Fare:            fare,
			ToPickup:        toPickup,
			ToDropoff:       toDropoff,
		}
		if better(cand, best) {
			best = cand
		}
	}
	if best == nil {
		inquiriesTotal.WithLabelValues("no_driver").Inc()
		return nil, fmt.Errorf("%w: request %s", ErrDriverNotFound, req.ID)
	}

	now := m.now()
	best.CreatedAt = now
	best.ExpiresAt = now.Add(m.cfg.ProposalTTL())
	m.proposals.Put(cacheEntry{Proposal: *best, Request: req}, now)
	proposalCacheSize.Set(float64(m.proposals.Len()))
	inquiriesTotal.WithLabelValues("proposed").Inc()
	timeToPickup.Observe(float64(best.TimeToPickupSec))
	surgeMultiplier.Observe(surge)
	if m.bus != nil {
		m.bus.Publish(events.ProposalEvent{
			RequestID:       req.ID,
			VehicleID:       best.VehicleID,
			Fare:            best.Fare,
			TimeToPickupSec: best.TimeToPickupSec,
		})
	}
	return best, nil
}

// better orders proposals by fare, then time to pickup, then vehicle id.
func better(a, b *model.TravelProposal) bool {
	if b == nil {
		return true
	}
	if a.Fare != b.Fare {
		return a.Fare < b.Fare
	}
	if a.TimeToPickupSec != b.TimeToPickupSec {
		return a.TimeToPickupSec < b.TimeToPickupSec
	}
	return a.VehicleID < b.VehicleID
}

// Reserve converts a cached proposal into a committed reservation. An expired
// or evicted proposal falls back to a fresh inquiry. Between proposal caching
// and reservation the vehicle may have been taken by a concurrent request, in
// which case ErrVehicleTaken is returned and nothing is booked.
func (m *Manager) Reserve(requestID string) (Confirmation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry, fresh, ok := m.proposals.Get(requestID, now)
	if !ok {
		reservationsTotal.WithLabelValues("unknown").Inc()
		return Confirmation{}, fmt.Errorf("%w: %s", ErrUnknownRequest, requestID)
	}
	if !fresh {
		reservationsTotal.WithLabelValues("expired_retry").Inc()
		m.log.Debugf("proposal for %s expired, retrying inquiry", requestID)
		p, err := m.inquiryLocked(entry.Request)
		if err != nil {
			return Confirmation{}, err
		}
		entry.Proposal = *p
	}

	p := entry.Proposal
	if holder, held := m.locked[p.VehicleID]; held && holder != requestID {
		reservationsTotal.WithLabelValues("vehicle_taken").Inc()
		m.publishReservation(requestID, p.VehicleID, false, "locked by concurrent request", 0)
		return Confirmation{}, fmt.Errorf("%w: vehicle %s", ErrVehicleTaken, p.VehicleID)
	}
	v, exists := m.vehicles[p.VehicleID]
	if !exists || v.State != model.StateAvailable {
		reservationsTotal.WithLabelValues("vehicle_taken").Inc()
		m.publishReservation(requestID, p.VehicleID, false, "vehicle no longer available", 0)
		return Confirmation{}, fmt.Errorf("%w: vehicle %s", ErrVehicleTaken, p.VehicleID)
	}

	req := entry.Request
	pickupTime := p.ToPickup.Arrival()
	if pickupTime < req.DepartTime {
		pickupTime = req.DepartTime
	}
	dropoffTime := pickupTime + p.ToDropoff.Duration

	m.locked[v.ID] = requestID
	v.Schedule = model.PassengerSchedule{Stops: []model.Stop{
		{RequestID: req.ID, Kind: model.StopPickup, Loc: req.Pickup, PlannedTime: pickupTime, Riders: req.GroupSize()},
		{RequestID: req.ID, Kind: model.StopDropoff, Loc: req.Dropoff, PlannedTime: dropoffTime, Riders: req.GroupSize()},
	}}
	v.State = model.StateInService
	m.index.Remove(v.ID)
	m.proposals.Drop(requestID)
	proposalCacheSize.Set(float64(m.proposals.Len()))

	reservationsTotal.WithLabelValues("confirmed").Inc()
	m.publishReservation(requestID, v.ID, true, "", pickupTime)
	m.log.Infof("reserved %s for request %s, pickup at %d", v.ID, requestID, pickupTime)
	return Confirmation{
		RequestID:   requestID,
		VehicleID:   v.ID,
		PickupTime:  pickupTime,
		DropoffTime: dropoffTime,
		Fare:        p.Fare,
	}, nil
}

func (m *Manager) publishReservation(requestID, vehicleID string, confirmed bool, reason string, tick int64) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(events.ReservationEvent{
		RequestID: requestID,
		VehicleID: vehicleID,
		Confirmed: confirmed,
		Reason:    reason,
		Tick:      tick,
	})
}

// CommitSchedule assigns a pooled schedule to an available vehicle, moving it
// into service.
func (m *Manager) CommitSchedule(vehicleID string, schedule model.PassengerSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[vehicleID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVehicle, vehicleID)
	}
	if v.State != model.StateAvailable || m.locked[vehicleID] != "" {
		return fmt.Errorf("%w: vehicle %s", ErrVehicleTaken, vehicleID)
	}
	v.Schedule = schedule
	v.State = model.StateInService
	m.index.Remove(vehicleID)
	return nil
}

// CompleteTrip finishes the vehicle's committed schedule: the vehicle moves to
// its final stop, the reservation lock is released, and the vehicle becomes
// available again or heads to a depot when its charge is low.
func (m *Manager) CompleteTrip(vehicleID string, now int64) (model.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[vehicleID]
	if !ok {
		return model.Vehicle{}, fmt.Errorf("%w: %s", ErrUnknownVehicle, vehicleID)
	}
	if v.State != model.StateInService {
		return model.Vehicle{}, fmt.Errorf("fleet: vehicle %s is %s, not in service", vehicleID, v.State)
	}
	end := v.Schedule.EndTime(now)
	if end < now {
		end = now
	}
	if n := len(v.Schedule.Stops); n > 0 {
		v.Where = model.Spacetime{Loc: v.Schedule.Stops[n-1].Loc, Time: end}
	} else {
		v.Where.Time = end
	}
	v.Schedule = model.PassengerSchedule{}
	delete(m.locked, vehicleID)

	if v.NeedsRecharge(m.cfg.RefuelThresholdSoC) {
		v.State = model.StateOnWayToDepot
		m.log.Infof("vehicle %s low on charge (soc %.2f), heading to depot", vehicleID, v.SoC)
	} else {
		v.State = model.StateAvailable
		m.index.Insert(v.ID, v.Where.Loc)
	}
	return *v, nil
}

// UpdateVehicle reintegrates a vehicle whose state was advanced elsewhere,
// typically returning from a charging session. The index follows the state.
func (m *Manager) UpdateVehicle(v model.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.vehicles[v.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVehicle, v.ID)
	}
	*cur = v
	if cur.State == model.StateAvailable {
		m.index.Insert(cur.ID, cur.Where.Loc)
	} else {
		m.index.Remove(cur.ID)
	}
	return nil
}

// Run serves requests from the channel until the context is canceled: each
// request is priced and, when a proposal is issued, immediately reserved.
// Allocation failures are logged and do not stop the loop.
func (m *Manager) Run(ctx context.Context, requests <-chan model.Request) {
	for {
		select {
		case req, ok := <-requests:
			if !ok {
				return
			}
			if _, err := m.Inquiry(req); err != nil {
				m.log.Warnf("inquiry %s: %v", req.ID, err)
				continue
			}
			if _, err := m.Reserve(req.ID); err != nil {
				m.log.Warnf("reserve %s: %v", req.ID, err)
			}
		case <-ctx.Done():
			return
		}
	}
}
