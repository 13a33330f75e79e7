package model

// StopKind distinguishes pickup from dropoff stops in a schedule.
type StopKind int

const (
	StopPickup StopKind = iota
	StopDropoff
)

func (k StopKind) String() string {
	if k == StopPickup {
		return "pickup"
	}
	return "dropoff"
}

// Stop is one scheduled stop of a vehicle: picking up or dropping off the
// riders of a request.
type Stop struct {
	RequestID   string
	Kind        StopKind
	Loc         Coord
	PlannedTime int64
	Riders      int
}

// PassengerSchedule is the ordered stop sequence a vehicle is committed to.
type PassengerSchedule struct {
	Stops []Stop
}

// Empty reports whether the schedule has no committed stops.
func (s PassengerSchedule) Empty() bool { return len(s.Stops) == 0 }

// OnboardAfter returns the passenger count after the i-th stop is served.
func (s PassengerSchedule) OnboardAfter(i int) int {
	onboard := 0
	for j := 0; j <= i && j < len(s.Stops); j++ {
		if s.Stops[j].Kind == StopPickup {
			onboard += s.Stops[j].Riders
		} else {
			onboard -= s.Stops[j].Riders
		}
	}
	return onboard
}

// MaxOnboard returns the peak passenger count over the whole schedule.
func (s PassengerSchedule) MaxOnboard() int {
	peak, onboard := 0, 0
	for _, st := range s.Stops {
		if st.Kind == StopPickup {
			onboard += st.Riders
		} else {
			onboard -= st.Riders
		}
		if onboard > peak {
			peak = onboard
		}
	}
	return peak
}

// EndTime returns the planned time of the final stop, or now when empty.
func (s PassengerSchedule) EndTime(now int64) int64 {
	if len(s.Stops) == 0 {
		return now
	}
	return s.Stops[len(s.Stops)-1].PlannedTime
}

// RequestIDs returns the distinct request ids appearing in the schedule.
func (s PassengerSchedule) RequestIDs() []string {
	seen := make(map[string]struct{}, len(s.Stops))
	var ids []string
	for _, st := range s.Stops {
		if _, ok := seen[st.RequestID]; ok {
			continue
		}
		seen[st.RequestID] = struct{}{}
		ids = append(ids, st.RequestID)
	}
	return ids
}
