// Package app assembles the simulation from configuration and drives it to
// completion.
package app

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/mobilitylabs/evsim/config"
	coremetrics "github.com/mobilitylabs/evsim/core/metrics"
	"github.com/mobilitylabs/evsim/core/scenario"
	"github.com/mobilitylabs/evsim/core/sim"
	"github.com/mobilitylabs/evsim/infra/geoload"
	"github.com/mobilitylabs/evsim/infra/logger"
	"github.com/mobilitylabs/evsim/infra/metrics"
	"github.com/mobilitylabs/evsim/infra/mqtt"
	"github.com/mobilitylabs/evsim/internal/eventbus"
)

// Service owns the assembled simulation and its collaborators for one run.
type Service struct {
	cfg  *config.Config
	sim  *sim.Simulation
	sink coremetrics.Sink
	bus  *eventbus.Bus[sim.Snapshot]
	pub  *mqtt.SnapshotPublisher
	log  logger.Logger
}

// New loads the network, generates the scenario and wires the sinks.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("logging level: %w", err)
	}
	logg := logger.New("service")

	net, err := geoload.LoadRoadNetwork(cfg.Network.RoadsFile)
	if err != nil {
		return nil, err
	}
	logg.Infof("road network loaded: %d nodes, %d edges", net.NumNodes(), net.NumEdges())

	params := scenario.Params{
		NumAgents:   cfg.Scenario.NumAgents,
		NumStations: cfg.Scenario.NumStations,
		Seed:        cfg.Scenario.Seed,
	}
	var stations []*sim.Station
	if cfg.Network.StationsFile != "" {
		// Stations come from data; only agents are generated.
		params.NumStations = 0
		rng := rand.New(rand.NewSource(cfg.Scenario.Seed))
		stations, err = geoload.LoadStations(cfg.Network.StationsFile, rng)
		if err != nil {
			return nil, err
		}
	}
	agents, generated, err := scenario.Generate(net, params)
	if err != nil {
		return nil, err
	}
	if stations == nil {
		stations = generated
	}
	for _, a := range agents {
		a.BatteryCapacityKWh = cfg.Agents.BatteryCapacityKWh
		a.LowBatteryPct = cfg.Agents.LowBatteryThresholdPct
		a.ConsumptionKWhKm = cfg.Agents.ConsumptionKWhPerKm
		a.ChargingRateKWh = cfg.Agents.ChargingRateKWhPerHour
		a.SpeedKmh = cfg.Agents.SpeedKmh
	}

	simulation, err := sim.New(net, stations, agents, cfg.Simulation.StepMinutes)
	if err != nil {
		return nil, err
	}
	logg.Infof("run %s: %d agents, %d stations, step %d min, duration %d min",
		simulation.RunID(), len(agents), len(stations),
		cfg.Simulation.StepMinutes, cfg.Simulation.DurationMinutes)

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		promSink, err := metrics.NewPromSink(nil)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, promSink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics, simulation.RunID()))
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	svc := &Service{
		cfg:  cfg,
		sim:  simulation,
		sink: sink,
		bus:  eventbus.New[sim.Snapshot](),
		log:  logg,
	}
	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewSnapshotPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("snapshot publisher: %w", err)
		}
		svc.pub = pub
	}
	return svc, nil
}

// Simulation exposes the assembled engine, mainly for inspection commands.
func (s *Service) Simulation() *sim.Simulation { return s.sim }

// Run drives the loop until the configured duration is reached or ctx is
// canceled. Per-step conditions never abort a run; only setup can fail.
func (s *Service) Run(ctx context.Context) error {
	if s.pub != nil {
		go s.pub.Listen(ctx, s.bus)
	}
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	for s.sim.Now() < s.cfg.Simulation.DurationMinutes {
		select {
		case <-ctx.Done():
			s.log.Warnf("run interrupted at sim time %d min", s.sim.Now())
			return ctx.Err()
		default:
		}
		s.sim.Step()
		stats := s.sim.Stats()
		if err := s.sink.RecordStep(stats); err != nil {
			s.log.Warnf("metrics sink: %v", err)
		}
		s.bus.Publish(s.sim.Snapshot())
		if stats.TimeMinutes%s.cfg.Simulation.ReportIntervalMinutes == 0 {
			s.logProgress(stats)
		}
	}
	s.report()
	return nil
}

// Close releases external connections.
func (s *Service) Close() error {
	s.bus.Close()
	if s.pub != nil {
		s.pub.Close()
	}
	if c, ok := s.sink.(coremetrics.Closer); ok {
		c.Close()
	}
	return nil
}

func (s *Service) logProgress(st sim.Stats) {
	day := st.TimeMinutes/sim.MinutesPerDay + 1
	tod := st.TimeMinutes % sim.MinutesPerDay
	s.log.Infof("day %d %02d:%02d | home=%d office=%d commuting=%d charging=%d waiting=%d | avg battery %.1f%% (low: %d) | ports %d/%d",
		day, tod/60, tod%60,
		st.AgentsAtHome, st.AgentsAtOffice, st.AgentsCommuting, st.AgentsCharging, st.AgentsWaiting,
		st.AvgBattery, st.LowBattery, st.OccupiedPorts, st.TotalPorts)
}

// report prints the end-of-run station utilization summary.
func (s *Service) report() {
	st := s.sim.Stats()
	s.log.Infof("simulation complete at %d min: avg battery %.1f%%, %d agents below threshold",
		st.TimeMinutes, st.AvgBattery, st.LowBattery)
	for _, station := range s.sim.Stations() {
		s.log.Infof("station %d: capacity %d, avg busy %.2f, peak busy %d, left in queue %d",
			station.ID, station.Capacity, station.AvgUtilization(), station.PeakUtilization(), station.QueueLength())
	}
}
