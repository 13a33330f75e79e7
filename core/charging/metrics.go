package charging

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	plugInsTotal        prometheus.Counter
	plugOutsTotal       prometheus.Counter
	connectedVehicles   prometheus.Gauge
	queuedVehicles      prometheus.Gauge
	energyDispatchedKWh prometheus.Counter
	stationPowerRatio   *prometheus.GaugeVec
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Counter, prometheus.Counter, prometheus.Gauge, prometheus.Gauge, prometheus.Counter, *prometheus.GaugeVec) {
	ins := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "charging_plug_ins_total",
			Help: "Number of vehicles plugged into a stall",
		},
	)
	outs := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "charging_plug_outs_total",
			Help: "Number of vehicles unplugged from a stall",
		},
	)
	connected := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "charging_connected_vehicles",
			Help: "Vehicles currently occupying a stall",
		},
	)
	queued := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "charging_queued_vehicles",
			Help: "Vehicles currently waiting for a stall",
		},
	)
	energy := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "charging_energy_dispatched_kwh",
			Help: "Total energy delivered to vehicles",
		},
	)
	ratio := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "charging_station_power_ratio",
			Help: "Constrained-to-unconstrained power ratio per station",
		},
		[]string{"station"},
	)
	return ins, outs, connected, queued, energy, ratio
}

func init() {
	plugInsTotal, plugOutsTotal, connectedVehicles, queuedVehicles, energyDispatchedKWh, stationPowerRatio = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers charging metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(plugInsTotal, plugOutsTotal, connectedVehicles, queuedVehicles, energyDispatchedKWh, stationPowerRatio)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	plugInsTotal, plugOutsTotal, connectedVehicles, queuedVehicles, energyDispatchedKWh, stationPowerRatio = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
