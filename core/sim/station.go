package sim

import (
	"fmt"
	"sort"

	"github.com/mobilitylabs/evsim/core/geo"
)

// Station is a charging site with a fixed number of ports and a FIFO
// waiting queue. Agents are referenced by id only; the simulation resolves
// ids back to agents during the station update phase.
type Station struct {
	ID       int
	Location geo.Location
	Capacity int

	queue    []int
	charging map[int]struct{}

	utilization []int // occupied ports per step, for the end-of-run report
}

// NewStation validates the definition and returns an empty station.
func NewStation(id int, loc geo.Location, capacity int) (*Station, error) {
	if !loc.Valid() {
		return nil, fmt.Errorf("station %d: invalid coordinates (%v, %v)", id, loc.Lat, loc.Lon)
	}
	if capacity < 1 {
		return nil, fmt.Errorf("station %d: capacity must be positive, got %d", id, capacity)
	}
	return &Station{ID: id, Location: loc, Capacity: capacity, charging: make(map[int]struct{})}, nil
}

// IsAvailable reports whether a port is free.
func (s *Station) IsAvailable() bool { return len(s.charging) < s.Capacity }

// Occupied returns the number of ports in use.
func (s *Station) Occupied() int { return len(s.charging) }

// QueueLength returns the number of agents waiting.
func (s *Station) QueueLength() int { return len(s.queue) }

// QueuedIDs returns the waiting agent ids in FIFO order.
func (s *Station) QueuedIDs() []int {
	out := make([]int, len(s.queue))
	copy(out, s.queue)
	return out
}

// ChargingIDs returns the ids of agents holding a port, ascending.
func (s *Station) ChargingIDs() []int {
	out := make([]int, 0, len(s.charging))
	for id := range s.charging {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// IsCharging reports whether the agent currently holds a port here.
func (s *Station) IsCharging(agentID int) bool {
	_, ok := s.charging[agentID]
	return ok
}

// AddToQueue appends the agent to the waiting queue unless it is already
// queued at this station.
func (s *Station) AddToQueue(agentID int) {
	for _, id := range s.queue {
		if id == agentID {
			return
		}
	}
	s.queue = append(s.queue, agentID)
}

// StartCharging allocates a port and transitions the agent into the
// charging state. It reports false, with no side effect, when every port is
// taken; the caller must fall back to queueing.
func (s *Station) StartCharging(a *Agent, nowMin int) bool {
	if !s.IsAvailable() {
		return false
	}
	s.charging[a.ID] = struct{}{}
	a.StartCharging(nowMin)
	return true
}

// FinishCharging frees the agent's port and invokes its charge-completion
// transition. Unknown agents are ignored.
func (s *Station) FinishCharging(a *Agent, nowMin int) {
	if _, ok := s.charging[a.ID]; !ok {
		return
	}
	delete(s.charging, a.ID)
	a.FinishCharging(nowMin)
}

// Update finishes every complete charging session, then drains the queue
// into the freed ports in FIFO order, one agent per free port. Completions
// run strictly first so a finishing agent and a queued agent can both
// advance within the same step. Charging agents are processed in ascending
// id order to keep runs reproducible. lookup resolves an agent id to the
// agent; ids that no longer resolve are dropped.
func (s *Station) Update(nowMin int, lookup func(id int) *Agent) {
	for _, id := range s.ChargingIDs() {
		a := lookup(id)
		if a == nil {
			delete(s.charging, id)
			continue
		}
		if a.ChargeComplete(nowMin) {
			s.FinishCharging(a, nowMin)
		}
	}
	for len(s.queue) > 0 && s.IsAvailable() {
		id := s.queue[0]
		s.queue = s.queue[1:]
		if a := lookup(id); a != nil {
			s.StartCharging(a, nowMin)
		}
	}
	s.utilization = append(s.utilization, len(s.charging))
}

// AvgUtilization returns the mean number of busy ports per step so far.
func (s *Station) AvgUtilization() float64 {
	if len(s.utilization) == 0 {
		return 0
	}
	sum := 0
	for _, n := range s.utilization {
		sum += n
	}
	return float64(sum) / float64(len(s.utilization))
}

// PeakUtilization returns the maximum number of busy ports seen in a step.
func (s *Station) PeakUtilization() int {
	peak := 0
	for _, n := range s.utilization {
		if n > peak {
			peak = n
		}
	}
	return peak
}
