// Package app assembles the simulation service: fleet dispatch, pooled
// matching, charging and the discrete-event loop driving them.
package app

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/openfleet/ridehail/config"
	"github.com/openfleet/ridehail/core/charging"
	"github.com/openfleet/ridehail/core/events"
	"github.com/openfleet/ridehail/core/fleet"
	coremetrics "github.com/openfleet/ridehail/core/metrics"
	"github.com/openfleet/ridehail/core/model"
	"github.com/openfleet/ridehail/core/pooling"
	"github.com/openfleet/ridehail/core/power"
	"github.com/openfleet/ridehail/core/scheduler"
	"github.com/openfleet/ridehail/infra/logger"
	inframetrics "github.com/openfleet/ridehail/infra/metrics"
	"github.com/openfleet/ridehail/infra/mqtt"
	infrarouting "github.com/openfleet/ridehail/infra/routing"
	"github.com/openfleet/ridehail/infra/sessionlog"
	"github.com/openfleet/ridehail/internal/eventbus"
)

// Trigger kinds of the event loop.
const (
	triggerMatchCycle   = "match-cycle"
	triggerTripComplete = "trip-complete"
	triggerChargePlan   = "charge-plan"
	triggerChargeDone   = "charge-complete"
)

// Service orchestrates the managers over one simulation run.
type Service struct {
	Fleet     *fleet.Manager
	Matcher   *pooling.Matcher
	Network   *charging.Network
	Power     *power.SitePowerManager
	Scheduler *scheduler.Scheduler

	cfg      *config.Config
	bus      eventbus.EventBus
	log      logger.Logger
	sink     coremetrics.Sink
	store    sessionlog.Store
	pub      *mqtt.Publisher
	stations []charging.Station

	mu       sync.Mutex
	pending  []model.Request
	queued   map[string]struct{}
	charging map[string]*model.Vehicle
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")

	bus := eventbus.New()
	router := infrarouting.NewFreeFlowRouter(cfg.Routing.SpeedMps)
	skim := infrarouting.NewHaversineSkim(cfg.Routing.SpeedMps)
	pricing := fleet.NewSurgePricing(cfg.Pricing)

	mgr, err := fleet.NewManager(cfg.Fleet, router, pricing, bus, logger.New("fleet"))
	if err != nil {
		return nil, fmt.Errorf("fleet manager: %w", err)
	}
	matcher := pooling.NewMatcher(cfg.Pooling, skim, logger.New("pooling"))
	spm := power.NewSitePowerManager(logger.New("power"))
	stations := cfg.Charging.DomainStations()
	network, err := charging.NewNetwork(stations, spm, cfg.Power.BoundsProvider(), bus, logger.New("charging"))
	if err != nil {
		return nil, fmt.Errorf("charging network: %w", err)
	}
	sched := scheduler.New(cfg.Sim.HorizonSec, logger.New("scheduler"))

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := cfg.SessionLog.Open()
	if err != nil {
		return nil, fmt.Errorf("session log: %w", err)
	}
	var pub *mqtt.Publisher
	if cfg.MQTT.Enabled {
		if pub, err = mqtt.NewPublisher(cfg.MQTT); err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
	}

	s := &Service{
		Fleet:     mgr,
		Matcher:   matcher,
		Network:   network,
		Power:     spm,
		Scheduler: sched,
		cfg:       cfg,
		bus:       bus,
		log:       log,
		sink:      sink,
		store:     store,
		pub:       pub,
		stations:  stations,
		queued:    make(map[string]struct{}),
		charging:  make(map[string]*model.Vehicle),
	}
	for kind, h := range map[string]scheduler.Handler{
		triggerMatchCycle:   s.onMatchCycle,
		triggerTripComplete: s.onTripComplete,
		triggerChargePlan:   s.onChargePlan,
		triggerChargeDone:   s.onChargeDone,
	} {
		if err := sched.RegisterHandler(kind, h); err != nil {
			return nil, err
		}
	}
	sched.Schedule(scheduler.Trigger{Tick: cfg.Sim.MatchIntervalSec, Kind: triggerMatchCycle})
	if len(stations) > 0 {
		sched.Schedule(scheduler.Trigger{Tick: cfg.Sim.ChargeStepSec, Kind: triggerChargePlan})
	}
	return s, nil
}

// AddVehicle registers a vehicle with the fleet.
func (s *Service) AddVehicle(v model.Vehicle) error {
	return s.Fleet.AddVehicle(v)
}

// SubmitRequest queues a request for the next matching cycle.
func (s *Service) SubmitRequest(r model.Request) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.queued[r.ID]; dup {
		return fmt.Errorf("request %s already queued", r.ID)
	}
	s.queued[r.ID] = struct{}{}
	s.pending = append(s.pending, r)
	return nil
}

// Run executes the simulation until the horizon or cancellation, then closes
// out all charging sessions.
func (s *Service) Run(ctx context.Context) error {
	inframetrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.pub != nil {
		mqtt.StartEventForwarder(ctx, s.bus, s.pub)
	}

	last, err := s.Scheduler.Run(ctx)
	s.finish(last)
	return err
}

// finish force-completes charging and rolls demand observations over.
func (s *Service) finish(tick int64) {
	for _, sum := range s.Network.EndOfSimulation(tick) {
		s.recordCharge(sum, tick)
		s.mu.Lock()
		v := s.charging[sum.VehicleID]
		delete(s.charging, sum.VehicleID)
		s.mu.Unlock()
		if v != nil {
			if err := s.Fleet.UpdateVehicle(*v); err != nil {
				s.log.Errorf("reintegrate %s: %v", sum.VehicleID, err)
			}
		}
	}
	s.Power.EndIteration()
	s.log.Infof("simulation finished at tick %d", tick)
}

// onMatchCycle runs one pooled matching cycle over the pending batch.
func (s *Service) onMatchCycle(tr scheduler.Trigger) []scheduler.Trigger {
	s.mu.Lock()
	batch := append([]model.Request(nil), s.pending...)
	s.mu.Unlock()

	followups := []scheduler.Trigger{{Tick: tr.Tick + s.cfg.Sim.MatchIntervalSec, Kind: triggerMatchCycle}}
	if len(batch) == 0 {
		return followups
	}

	res := s.Matcher.Match(batch, s.Fleet.AvailableVehicles())
	served := make(map[string]struct{})
	for _, a := range res.Assignments {
		if err := s.Fleet.CommitSchedule(a.VehicleID, a.Schedule); err != nil {
			s.log.Warnf("commit schedule to %s: %v", a.VehicleID, err)
			continue
		}
		for _, id := range a.RequestIDs {
			served[id] = struct{}{}
		}
		followups = append(followups, scheduler.Trigger{
			Tick:    a.Schedule.EndTime(tr.Tick),
			Kind:    triggerTripComplete,
			Subject: a.VehicleID,
		})
	}

	s.mu.Lock()
	kept := s.pending[:0]
	for _, r := range s.pending {
		if _, ok := served[r.ID]; ok {
			delete(s.queued, r.ID)
			continue
		}
		kept = append(kept, r)
	}
	s.pending = kept
	s.mu.Unlock()

	s.bus.Publish(events.MatchCycleEvent{
		Tick:      tr.Tick,
		Requests:  len(batch),
		Matched:   len(served),
		Unmatched: res.Unmatched,
	})
	return followups
}

// onTripComplete returns the vehicle to the pool or routes it to a depot.
func (s *Service) onTripComplete(tr scheduler.Trigger) []scheduler.Trigger {
	before, err := s.Fleet.Vehicle(tr.Subject)
	if err != nil {
		s.log.Errorf("trip complete %s: %v", tr.Subject, err)
		return nil
	}
	rideStart := tr.Tick
	if !before.Schedule.Empty() {
		rideStart = before.Schedule.Stops[0].PlannedTime
	}

	v, err := s.Fleet.CompleteTrip(tr.Subject, tr.Tick)
	if err != nil {
		s.log.Errorf("trip complete %s: %v", tr.Subject, err)
		return nil
	}
	if s.store != nil {
		rec := sessionlog.Record{
			Kind:        sessionlog.KindRide,
			Tick:        tr.Tick,
			VehicleID:   v.ID,
			RequestIDs:  before.Schedule.RequestIDs(),
			DurationSec: tr.Tick - rideStart,
		}
		if err := s.store.Append(context.Background(), rec); err != nil {
			s.log.Errorf("record ride: %v", err)
		}
	}

	if v.State == model.StateOnWayToDepot {
		s.sendToCharge(v, tr.Tick)
	}
	return nil
}

// sendToCharge connects the vehicle to the nearest station, prioritized by
// how empty its battery is.
func (s *Service) sendToCharge(v model.Vehicle, tick int64) {
	st, ok := s.nearestStation(v.Where.Loc)
	if !ok {
		s.log.Warnf("vehicle %s needs charge but no stations are configured", v.ID)
		v.State = model.StateAvailable
		if err := s.Fleet.UpdateVehicle(v); err != nil {
			s.log.Errorf("reintegrate %s: %v", v.ID, err)
		}
		return
	}

	owned := v
	status, err := s.Network.AttemptConnect(&owned, st.ID, 1-owned.SoC, tick)
	if err != nil {
		s.log.Errorf("connect %s to %s: %v", v.ID, st.ID, err)
		return
	}
	s.mu.Lock()
	s.charging[v.ID] = &owned
	s.mu.Unlock()
	s.log.Debugf("vehicle %s sent to %s: %s", v.ID, st.ID, status)
}

func (s *Service) nearestStation(loc model.Coord) (charging.Station, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, st := range s.stations {
		if d := loc.DistanceM(st.Loc); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return charging.Station{}, false
	}
	return s.stations[best], true
}

// onChargePlan dispatches one energy planning step.
func (s *Service) onChargePlan(tr scheduler.Trigger) []scheduler.Trigger {
	followups := []scheduler.Trigger{{Tick: tr.Tick + s.cfg.Sim.ChargeStepSec, Kind: triggerChargePlan}}
	for _, done := range s.Network.PlanEnergyDispatch(tr.Tick, s.cfg.Sim.ChargeStepSec) {
		followups = append(followups, scheduler.Trigger{
			Tick:    done.Tick,
			Kind:    triggerChargeDone,
			Subject: done.VehicleID,
		})
	}
	return followups
}

// onChargeDone unplugs a fully charged vehicle and returns it to the fleet.
func (s *Service) onChargeDone(tr scheduler.Trigger) []scheduler.Trigger {
	s.mu.Lock()
	v := s.charging[tr.Subject]
	delete(s.charging, tr.Subject)
	s.mu.Unlock()
	if v == nil {
		return nil
	}

	sum, err := s.Network.Disconnect(tr.Subject, tr.Tick)
	if err != nil {
		s.log.Warnf("disconnect %s: %v", tr.Subject, err)
		return nil
	}
	s.recordCharge(sum, tr.Tick)
	if err := s.Fleet.UpdateVehicle(*v); err != nil {
		s.log.Errorf("reintegrate %s: %v", tr.Subject, err)
	}
	return nil
}

func (s *Service) recordCharge(sum charging.SessionSummary, tick int64) {
	if s.store == nil {
		return
	}
	rec := sessionlog.Record{
		Kind:        sessionlog.KindCharge,
		Tick:        tick,
		VehicleID:   sum.VehicleID,
		StationID:   sum.StationID,
		EnergyKWh:   sum.EnergyKWh,
		DurationSec: sum.DurationSec,
	}
	if err := s.store.Append(context.Background(), rec); err != nil {
		s.log.Errorf("record charge: %v", err)
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.pub != nil {
		s.pub.Close()
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
