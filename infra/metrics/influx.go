package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/openfleet/ridehail/core/metrics"
	"github.com/openfleet/ridehail/infra/logger"
)

// InfluxSink writes simulation records to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

// RecordReservation writes the reservation outcome as a point.
func (s *InfluxSink) RecordReservation(r coremetrics.ReservationRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("reservation_event").
		AddTag("request_id", r.RequestID).
		AddTag("vehicle_id", r.VehicleID).
		AddTag("confirmed", strconv.FormatBool(r.Confirmed)).
		AddTag("reason", r.Reason).
		AddField("fare", r.Fare).
		AddField("time_to_pickup_s", r.TimeToPickupSec).
		AddField("tick", r.Tick).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordMatchCycle writes the pooling cycle summary as a point.
func (s *InfluxSink) RecordMatchCycle(r coremetrics.MatchCycleRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("match_cycle").
		AddField("requests", r.Requests).
		AddField("assigned", r.Assigned).
		AddField("unmatched", r.Unmatched).
		AddField("tick", r.Tick).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordChargingSession writes the completed session as a point.
func (s *InfluxSink) RecordChargingSession(r coremetrics.ChargingSessionRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("refuel_session").
		AddTag("vehicle_id", r.VehicleID).
		AddTag("station_id", r.StationID).
		AddField("energy_kwh", r.EnergyKWh).
		AddField("duration_s", r.DurationSec).
		AddField("tick", r.Tick).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}
