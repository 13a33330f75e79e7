package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/openfleet/ridehail/core/metrics"
)

// PromSink records simulation outcomes in Prometheus metrics.
type PromSink struct {
	reservations *prometheus.CounterVec
	fares        prometheus.Histogram
	matched      prometheus.Counter
	unmatched    prometheus.Counter
	energy       prometheus.Counter
}

// NewPromSink registers metrics on the default Prometheus registerer.
func NewPromSink() (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reservations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sink_reservations_total",
		Help: "Reservation outcomes recorded by the metrics sink",
	}, []string{"confirmed"})
	fares := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sink_reservation_fare",
		Help:    "Fares of confirmed reservations",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})
	matched := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sink_matched_requests_total",
		Help: "Requests matched across pooling cycles",
	})
	unmatched := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sink_unmatched_requests_total",
		Help: "Requests left unmatched across pooling cycles",
	})
	energy := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sink_charging_energy_kwh",
		Help: "Energy delivered across completed charging sessions",
	})

	s := &PromSink{reservations: reservations, fares: fares, matched: matched, unmatched: unmatched, energy: energy}
	for _, c := range []prometheus.Collector{reservations, fares, matched, unmatched, energy} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordReservation counts the outcome and observes the fare when confirmed.
func (s *PromSink) RecordReservation(r coremetrics.ReservationRecord) error {
	s.reservations.WithLabelValues(strconv.FormatBool(r.Confirmed)).Inc()
	if r.Confirmed {
		s.fares.Observe(r.Fare)
	}
	return nil
}

// RecordMatchCycle accumulates matched and unmatched request counts.
func (s *PromSink) RecordMatchCycle(r coremetrics.MatchCycleRecord) error {
	s.matched.Add(float64(r.Assigned))
	s.unmatched.Add(float64(r.Unmatched))
	return nil
}

// RecordChargingSession accumulates delivered energy.
func (s *PromSink) RecordChargingSession(r coremetrics.ChargingSessionRecord) error {
	s.energy.Add(r.EnergyKWh)
	return nil
}
