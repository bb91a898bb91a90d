package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/mobilitylabs/evsim/core/metrics"
	"github.com/mobilitylabs/evsim/core/sim"
	"github.com/mobilitylabs/evsim/infra/logger"
)

// InfluxSink writes one point per step to an InfluxDB instance, tagged with
// the run id so concurrent runs stay separable.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	runID    string
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.Config, runID string) *InfluxSink {
	client := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		runID:    runID,
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails, so a missing database never aborts a
// run.
func NewInfluxSinkWithFallback(cfg coremetrics.Config, runID string) coremetrics.Sink {
	sink := NewInfluxSink(cfg, runID)
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

// RecordStep writes the aggregate step point plus one point per station.
func (s *InfluxSink) RecordStep(st sim.Stats) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	now := time.Now()
	p := write.NewPointWithMeasurement("simulation_step").
		AddTag("run_id", s.runID).
		AddField("sim_time_minutes", st.TimeMinutes).
		AddField("agents_at_home", st.AgentsAtHome).
		AddField("agents_at_office", st.AgentsAtOffice).
		AddField("agents_commuting", st.AgentsCommuting).
		AddField("agents_charging", st.AgentsCharging).
		AddField("agents_waiting", st.AgentsWaiting).
		AddField("avg_battery", st.AvgBattery).
		AddField("low_battery_agents", st.LowBattery).
		AddField("occupied_ports", st.OccupiedPorts).
		AddField("total_ports", st.TotalPorts).
		SetTime(now)
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		return err
	}
	for _, station := range st.Stations {
		sp := write.NewPointWithMeasurement("station_state").
			AddTag("run_id", s.runID).
			AddTag("station_id", strconv.Itoa(station.ID)).
			AddField("occupied", station.Occupied).
			AddField("capacity", station.Capacity).
			AddField("queue_length", station.QueueLength).
			SetTime(now)
		if err := s.writeAPI.WritePoint(ctx, sp); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
