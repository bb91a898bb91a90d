// Package sim contains the simulation engine: the agent state machine, the
// charging stations and the fixed-step update loop that drives them.
package sim

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/mobilitylabs/evsim/core/roadnet"
)

// Simulation owns the road network, the stations and the agents for the
// lifetime of a run and drives the fixed-step update loop. There is no
// ambient global state: everything hangs off this value.
type Simulation struct {
	runID    string
	net      *roadnet.Network
	stations []*Station
	agents   []*Agent
	byID     map[int]*Agent
	clock    Clock
}

// New validates the inputs and assembles a Simulation. Agents and stations
// are kept in ascending id order, which fixes every per-step tie-break.
// Duplicate ids are a setup error.
func New(net *roadnet.Network, stations []*Station, agents []*Agent, stepMinutes int) (*Simulation, error) {
	if net == nil {
		return nil, fmt.Errorf("sim: road network is required")
	}
	if stepMinutes <= 0 {
		return nil, fmt.Errorf("sim: step size must be positive, got %d", stepMinutes)
	}

	ags := make([]*Agent, len(agents))
	copy(ags, agents)
	sort.Slice(ags, func(i, j int) bool { return ags[i].ID < ags[j].ID })
	byID := make(map[int]*Agent, len(ags))
	for _, a := range ags {
		if _, dup := byID[a.ID]; dup {
			return nil, fmt.Errorf("sim: duplicate agent id %d", a.ID)
		}
		byID[a.ID] = a
	}

	sts := make([]*Station, len(stations))
	copy(sts, stations)
	sort.Slice(sts, func(i, j int) bool { return sts[i].ID < sts[j].ID })
	seen := make(map[int]struct{}, len(sts))
	for _, s := range sts {
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("sim: duplicate station id %d", s.ID)
		}
		seen[s.ID] = struct{}{}
	}

	return &Simulation{
		runID:    uuid.NewString(),
		net:      net,
		stations: sts,
		agents:   ags,
		byID:     byID,
		clock:    NewClock(stepMinutes),
	}, nil
}

// RunID identifies this run in snapshots and metrics.
func (s *Simulation) RunID() string { return s.runID }

// Now returns the current simulation time in minutes.
func (s *Simulation) Now() int { return s.clock.Now() }

// StepMinutes returns the fixed step size.
func (s *Simulation) StepMinutes() int { return s.clock.StepMinutes() }

// Agents returns the agent collection in ascending id order. Callers must
// not mutate it.
func (s *Simulation) Agents() []*Agent { return s.agents }

// Stations returns the station collection in ascending id order. Callers
// must not mutate it.
func (s *Simulation) Stations() []*Station { return s.stations }

// Step performs one simulation step: first every agent updates, in
// ascending id order, against the current clock value; then every station
// processes completions and queue promotions; then the clock advances.
// Agent order doubles as the port-allocation tie-break when several agents
// request the same station in one step.
func (s *Simulation) Step() {
	now := s.clock.Now()
	for _, a := range s.agents {
		a.Update(now, s.stations, s.net, s.clock.StepMinutes())
	}
	for _, st := range s.stations {
		st.Update(now, s.agent)
	}
	s.clock.Advance()
}

func (s *Simulation) agent(id int) *Agent { return s.byID[id] }

// Snapshot returns the externally visible state of every agent and station.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		RunID:       s.runID,
		TimeMinutes: s.clock.Now(),
		Agents:      make([]AgentSnapshot, 0, len(s.agents)),
		Stations:    make([]StationSnapshot, 0, len(s.stations)),
	}
	for _, a := range s.agents {
		snap.Agents = append(snap.Agents, AgentSnapshot{
			ID:      a.ID,
			Lat:     a.CurrentLocation.Lat,
			Lon:     a.CurrentLocation.Lon,
			Battery: a.Battery,
			State:   a.State.String(),
		})
	}
	for _, st := range s.stations {
		snap.Stations = append(snap.Stations, StationSnapshot{
			ID:          st.ID,
			Occupied:    st.Occupied(),
			Capacity:    st.Capacity,
			QueueLength: st.QueueLength(),
		})
	}
	return snap
}

// Stats aggregates the current state for reporting and metrics sinks.
func (s *Simulation) Stats() Stats {
	st := Stats{TimeMinutes: s.clock.Now()}
	batteries := make([]float64, 0, len(s.agents))
	for _, a := range s.agents {
		switch a.State {
		case StateAtHome:
			st.AgentsAtHome++
		case StateAtOffice:
			st.AgentsAtOffice++
		case StateCharging:
			st.AgentsCharging++
		case StateWaitingToCharge:
			st.AgentsWaiting++
		default:
			st.AgentsCommuting++
		}
		if a.NeedsCharging() {
			st.LowBattery++
		}
		batteries = append(batteries, a.Battery)
	}
	if len(batteries) > 0 {
		st.AvgBattery = stat.Mean(batteries, nil)
	}
	for _, station := range s.stations {
		st.TotalPorts += station.Capacity
		st.OccupiedPorts += station.Occupied()
		st.Stations = append(st.Stations, StationSnapshot{
			ID:          station.ID,
			Occupied:    station.Occupied(),
			Capacity:    station.Capacity,
			QueueLength: station.QueueLength(),
		})
	}
	return st
}
