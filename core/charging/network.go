package charging

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/openfleet/ridehail/core/events"
	"github.com/openfleet/ridehail/core/logger"
	"github.com/openfleet/ridehail/core/model"
	"github.com/openfleet/ridehail/core/power"
	"github.com/openfleet/ridehail/internal/eventbus"
)

// session tracks one vehicle at one station, connected or queued.
type session struct {
	vehicle     *model.Vehicle
	stationID   string
	connectedAt int64
	cycles      []Cycle
	charging    bool
}

func (s *session) summary() SessionSummary {
	out := SessionSummary{VehicleID: s.vehicle.ID, StationID: s.stationID}
	for _, c := range s.cycles {
		out.EnergyKWh += c.EnergyKWh
		out.DurationSec += c.DurationSec
	}
	return out
}

type stationState struct {
	Station
	connected map[string]*session
	queue     waitQueue
}

// Network owns all charging stations. All mutation happens under one lock;
// callers from different goroutines never observe a stall count above the
// configured stalls.
type Network struct {
	mu       sync.Mutex
	stations map[string]*stationState
	tracking map[string]*session
	spm      *power.SitePowerManager
	bounds   power.BoundsProvider
	bus      eventbus.EventBus
	log      logger.Logger
	seq      uint64
	ended    bool
}

// NewNetwork creates a charging network over the given stations. The bus may
// be nil when no event sink is wired.
func NewNetwork(stations []Station, spm *power.SitePowerManager, bounds power.BoundsProvider, bus eventbus.EventBus, log logger.Logger) (*Network, error) {
	n := &Network{
		stations: make(map[string]*stationState, len(stations)),
		tracking: make(map[string]*session),
		spm:      spm,
		bounds:   bounds,
		bus:      bus,
		log:      log,
	}
	for _, s := range stations {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := n.stations[s.ID]; dup {
			return nil, fmt.Errorf("charging: duplicate station id %s", s.ID)
		}
		n.stations[s.ID] = &stationState{Station: s, connected: make(map[string]*session)}
	}
	return n, nil
}

// AttemptConnect plugs the vehicle into a free stall or queues it by
// priority. Higher priority values are served first.
func (n *Network) AttemptConnect(v *model.Vehicle, stationID string, priority float64, tick int64) (ConnectStatus, error) {
	if !v.IsElectric {
		return 0, fmt.Errorf("%w: %s", ErrNotElectric, v.ID)
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	st, ok := n.stations[stationID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownStation, stationID)
	}
	if prev, tracked := n.tracking[v.ID]; tracked {
		if prev.stationID == stationID {
			return AlreadyAtStation, nil
		}
		return 0, fmt.Errorf("charging: vehicle %s already tracked at station %s", v.ID, prev.stationID)
	}

	s := &session{vehicle: v, stationID: stationID}
	n.tracking[v.ID] = s
	if len(st.connected) < st.Stalls {
		n.plugIn(st, s, tick)
		return Connected, nil
	}

	v.State = model.StateWaitingToCharge
	n.seq++
	st.queue.push(s, priority, n.seq)
	queuedVehicles.Inc()
	n.log.Debugf("vehicle %s queued at station %s (priority %.2f, %d waiting)", v.ID, stationID, priority, st.queue.Len())
	return Waiting, nil
}

// plugIn occupies a stall. Caller holds the lock.
func (n *Network) plugIn(st *stationState, s *session, tick int64) {
	s.charging = true
	s.connectedAt = tick
	s.vehicle.State = model.StateCharging
	st.connected[s.vehicle.ID] = s
	plugInsTotal.Inc()
	connectedVehicles.Inc()
	if n.bus != nil {
		n.bus.Publish(events.PlugInEvent{VehicleID: s.vehicle.ID, StationID: st.ID, Tick: tick})
	}
	n.log.Debugf("vehicle %s plugged in at station %s", s.vehicle.ID, st.ID)
}

// Disconnect closes the vehicle's session, frees the stall and promotes the
// highest-priority waiting vehicle into it.
func (n *Network) Disconnect(vehicleID string, tick int64) (SessionSummary, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.disconnectLocked(vehicleID, tick, true)
}

func (n *Network) disconnectLocked(vehicleID string, tick int64, promote bool) (SessionSummary, error) {
	s, ok := n.tracking[vehicleID]
	if !ok {
		return SessionSummary{}, fmt.Errorf("%w: %s", ErrVehicleNotTracked, vehicleID)
	}
	st := n.stations[s.stationID]
	delete(n.tracking, vehicleID)

	if !s.charging {
		// Still waiting, never occupied a stall.
		st.queue.remove(vehicleID)
		queuedVehicles.Dec()
		s.vehicle.State = model.StateAvailable
		return s.summary(), nil
	}

	delete(st.connected, vehicleID)
	connectedVehicles.Dec()
	plugOutsTotal.Inc()
	s.vehicle.State = model.StateAvailable
	sum := s.summary()
	if n.bus != nil {
		n.bus.Publish(events.PlugOutEvent{VehicleID: vehicleID, StationID: st.ID, Tick: tick})
		n.bus.Publish(events.RefuelSessionEvent{
			VehicleID:   vehicleID,
			StationID:   st.ID,
			EnergyKWh:   sum.EnergyKWh,
			DurationSec: sum.DurationSec,
			Tick:        tick,
		})
	}
	n.log.Debugf("vehicle %s unplugged from station %s: %.2f kWh over %ds", vehicleID, st.ID, sum.EnergyKWh, sum.DurationSec)

	if promote {
		if next := st.queue.pop(); next != nil {
			queuedVehicles.Dec()
			n.plugIn(st, next, tick)
		}
	}
	return sum, nil
}

// PlanEnergyDispatch allocates energy to every connected vehicle for one
// planning step. Station demand is observed and estimated, the grid provider
// turns the estimate into a power ceiling, and each vehicle receives its plug
// power scaled by the constrained-to-unconstrained ratio. Vehicles reaching
// full charge within the step are returned so the caller can schedule their
// completion triggers.
func (n *Network) PlanEnergyDispatch(tick, stepSec int64) []Completion {
	n.mu.Lock()
	defer n.mu.Unlock()

	var completions []Completion
	for _, id := range n.stationIDs() {
		st := n.stations[id]
		unconstrained := 0.0
		for _, s := range st.connected {
			if s.vehicle.HeadroomKWh() > 0 {
				unconstrained += chargePowerKW(st.Station, s.vehicle)
			}
		}
		n.spm.ObserveDemand(id, unconstrained)
		bounds := n.bounds.Bounds(id, n.spm.EstimateDemand(id), tick)

		ratio := 1.0
		if unconstrained > 0 && bounds.CeilingKW < unconstrained {
			ratio = bounds.CeilingKW / unconstrained
			if ratio < 0 {
				ratio = 0
			}
		}
		stationPowerRatio.WithLabelValues(id).Set(ratio)

		for _, vid := range connectedIDs(st) {
			s := st.connected[vid]
			completions = n.dispatchTo(st, s, ratio, tick, stepSec, completions)
		}
	}
	return completions
}

// dispatchTo delivers one step of energy to a single session. Caller holds
// the lock.
func (n *Network) dispatchTo(st *stationState, s *session, ratio float64, tick, stepSec int64, completions []Completion) []Completion {
	powerKW := chargePowerKW(st.Station, s.vehicle) * ratio
	headroom := s.vehicle.HeadroomKWh()
	if powerKW <= 0 || headroom <= 0 {
		return completions
	}

	energy := powerKW * float64(stepSec) / 3600
	duration := stepSec
	if energy >= headroom {
		energy = headroom
		duration = int64(math.Ceil(headroom / powerKW * 3600))
		completions = append(completions, Completion{
			VehicleID: s.vehicle.ID,
			StationID: st.ID,
			Tick:      tick + duration,
		})
	}
	s.cycles = append(s.cycles, Cycle{StartTime: tick, DurationSec: duration, EnergyKWh: energy})
	s.vehicle.SoC = math.Min(1, s.vehicle.SoC+energy/s.vehicle.BatteryKWh)
	energyDispatchedKWh.Add(energy)
	return completions
}

// EndOfSimulation force-completes every tracked vehicle: connected vehicles
// receive their remaining energy as if time were unbounded and are
// disconnected, queued vehicles are released. Safe to call once; later calls
// are no-ops.
func (n *Network) EndOfSimulation(tick int64) []SessionSummary {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ended {
		return nil
	}
	n.ended = true

	var sums []SessionSummary
	for _, id := range n.stationIDs() {
		st := n.stations[id]
		for _, vid := range connectedIDs(st) {
			s := st.connected[vid]
			if powerKW := chargePowerKW(st.Station, s.vehicle); powerKW > 0 {
				if headroom := s.vehicle.HeadroomKWh(); headroom > 0 {
					duration := int64(math.Ceil(headroom / powerKW * 3600))
					s.cycles = append(s.cycles, Cycle{StartTime: tick, DurationSec: duration, EnergyKWh: headroom})
					s.vehicle.SoC = 1
					energyDispatchedKWh.Add(headroom)
				}
			}
			sum, err := n.disconnectLocked(vid, tick, false)
			if err != nil {
				n.log.Errorf("end of simulation: disconnect %s: %v", vid, err)
				continue
			}
			sums = append(sums, sum)
		}
		for {
			s := st.queue.pop()
			if s == nil {
				break
			}
			queuedVehicles.Dec()
			delete(n.tracking, s.vehicle.ID)
			s.vehicle.State = model.StateAvailable
		}
	}
	n.log.Infof("end of simulation: closed %d charging sessions", len(sums))
	return sums
}

// Connected returns the ids of vehicles currently occupying a stall.
func (n *Network) Connected(stationID string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	st, ok := n.stations[stationID]
	if !ok {
		return nil
	}
	return connectedIDs(st)
}

// Waiting returns the number of vehicles queued at the station.
func (n *Network) Waiting(stationID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	st, ok := n.stations[stationID]
	if !ok {
		return 0
	}
	return st.queue.Len()
}

// Cycles returns a copy of the cycles recorded so far for a tracked vehicle.
func (n *Network) Cycles(vehicleID string) ([]Cycle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	s, ok := n.tracking[vehicleID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrVehicleNotTracked, vehicleID)
	}
	return append([]Cycle(nil), s.cycles...), nil
}

func (n *Network) stationIDs() []string {
	ids := make([]string, 0, len(n.stations))
	for id := range n.stations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func connectedIDs(st *stationState) []string {
	ids := make([]string, 0, len(st.connected))
	for id := range st.connected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// chargePowerKW is the unconstrained power a vehicle draws at a station: the
// station's plug rating, further limited by what the vehicle accepts.
func chargePowerKW(st Station, v *model.Vehicle) float64 {
	p := st.PlugPowerKW
	if v.PlugPowerKW > 0 && v.PlugPowerKW < p {
		p = v.PlugPowerKW
	}
	return p
}
