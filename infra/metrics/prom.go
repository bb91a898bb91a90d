// Package metrics implements the core metrics sinks: Prometheus gauges,
// InfluxDB points and a fan-out combinator.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mobilitylabs/evsim/core/sim"
)

// PromSink exposes per-step simulation statistics as Prometheus gauges.
type PromSink struct {
	agentsByState *prometheus.GaugeVec
	avgBattery    prometheus.Gauge
	lowBattery    prometheus.Gauge
	occupiedPorts prometheus.Gauge
	totalPorts    prometheus.Gauge
	queueLength   *prometheus.GaugeVec
}

// NewPromSink registers the simulation gauges on the provided registerer.
// If reg is nil, the default registerer is used. Collectors that are
// already registered are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		agentsByState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "evsim_agents",
			Help: "Number of agents per behaviour state",
		}, []string{"state"}),
		avgBattery: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evsim_avg_battery_percent",
			Help: "Average battery level across all agents",
		}),
		lowBattery: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evsim_low_battery_agents",
			Help: "Number of agents below their charging threshold",
		}),
		occupiedPorts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evsim_occupied_ports",
			Help: "Charging ports currently in use",
		}),
		totalPorts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evsim_total_ports",
			Help: "Total charging ports in the scenario",
		}),
		queueLength: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "evsim_station_queue_length",
			Help: "Agents waiting per charging station",
		}, []string{"station_id"}),
	}
	collectors := []prometheus.Collector{
		s.agentsByState, s.avgBattery, s.lowBattery, s.occupiedPorts, s.totalPorts, s.queueLength,
	}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			collectors[i] = are.ExistingCollector
		}
	}
	s.agentsByState = collectors[0].(*prometheus.GaugeVec)
	s.avgBattery = collectors[1].(prometheus.Gauge)
	s.lowBattery = collectors[2].(prometheus.Gauge)
	s.occupiedPorts = collectors[3].(prometheus.Gauge)
	s.totalPorts = collectors[4].(prometheus.Gauge)
	s.queueLength = collectors[5].(*prometheus.GaugeVec)
	return s, nil
}

// RecordStep implements the metrics sink contract.
func (s *PromSink) RecordStep(st sim.Stats) error {
	s.agentsByState.WithLabelValues("at_home").Set(float64(st.AgentsAtHome))
	s.agentsByState.WithLabelValues("at_office").Set(float64(st.AgentsAtOffice))
	s.agentsByState.WithLabelValues("commuting").Set(float64(st.AgentsCommuting))
	s.agentsByState.WithLabelValues("charging").Set(float64(st.AgentsCharging))
	s.agentsByState.WithLabelValues("waiting_to_charge").Set(float64(st.AgentsWaiting))
	s.avgBattery.Set(st.AvgBattery)
	s.lowBattery.Set(float64(st.LowBattery))
	s.occupiedPorts.Set(float64(st.OccupiedPorts))
	s.totalPorts.Set(float64(st.TotalPorts))
	for _, station := range st.Stations {
		s.queueLength.WithLabelValues(strconv.Itoa(station.ID)).Set(float64(station.QueueLength))
	}
	return nil
}
