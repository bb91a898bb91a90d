package sim

import (
	"math"

	"github.com/mobilitylabs/evsim/core/geo"
	"github.com/mobilitylabs/evsim/core/roadnet"
)

// Vehicle and behaviour defaults applied by NewAgent. All of them can be
// overridden before the first step.
const (
	DefaultBatteryCapacityKWh = 100.0
	DefaultLowBatteryPct      = 30.0
	DefaultConsumptionKWhKm   = 2.0
	DefaultChargingRateKWh    = 50.0
	DefaultSpeedKmh           = 40.0
)

const (
	morningDepartureMin = 8 * 60
	eveningDepartureMin = 17 * 60
	departureWindowMin  = 120

	chargeTargetPct  = 80.0
	minChargeMinutes = 30
	maxBatteryPct    = 100.0
)

// Agent is one simulated EV commuter: a state machine owning a position, a
// battery level, a schedule offset and an active path. All fields are
// mutated by the simulation loop only; an Agent is not safe for concurrent
// use.
type Agent struct {
	ID     int
	Home   geo.Location
	Office geo.Location

	CurrentLocation geo.Location

	BatteryCapacityKWh float64
	Battery            float64 // percent of capacity, clamped to [0,100]
	LowBatteryPct      float64
	ConsumptionKWhKm   float64 // kWh drawn per km driven
	ChargingRateKWh    float64 // kWh added per hour on a port
	SpeedKmh           float64

	// ScheduleOffsetMin desynchronises departures: the commute windows start
	// at 08:00/17:00 plus this many minutes. Must be in [0,60).
	ScheduleOffsetMin int

	State       State
	Destination geo.Location
	hasDest     bool

	path           []int64
	pathIndex      int
	edgeProgressKm float64

	chargingStartMin int
}

// NewAgent returns an agent parked at home with a full battery and default
// vehicle parameters.
func NewAgent(id int, home, office geo.Location) *Agent {
	return &Agent{
		ID:                 id,
		Home:               home,
		Office:             office,
		CurrentLocation:    home,
		BatteryCapacityKWh: DefaultBatteryCapacityKWh,
		Battery:            maxBatteryPct,
		LowBatteryPct:      DefaultLowBatteryPct,
		ConsumptionKWhKm:   DefaultConsumptionKWhKm,
		ChargingRateKWh:    DefaultChargingRateKWh,
		SpeedKmh:           DefaultSpeedKmh,
		State:              StateAtHome,
	}
}

// NeedsCharging reports whether the battery is below the low-battery
// threshold. The check happens at step boundaries only, before movement, so
// a battery that crosses the threshold mid-step is not acted on until the
// next step.
func (a *Agent) NeedsCharging() bool { return a.Battery < a.LowBatteryPct }

// Path returns the remaining planned route, if any.
func (a *Agent) Path() []int64 { return a.path }

// SetPath installs a route directly, resetting progress. Used by tests and
// scenario tooling; the state machine normally computes its own paths.
func (a *Agent) SetPath(p []int64) {
	a.path = p
	a.pathIndex = 0
	a.edgeProgressKm = 0
}

// Update advances the agent by one step. Transition checks follow a fixed
// priority: charging and waiting agents do nothing here (the station update
// owns their progress), then departure windows are evaluated, then commuting
// agents either request a charge or move along their path. stations must be
// in ascending id order so that equidistant stations resolve the same way in
// every run.
func (a *Agent) Update(nowMin int, stations []*Station, net *roadnet.Network, stepMinutes int) {
	switch a.State {
	case StateCharging, StateWaitingToCharge:
		// Completion and queue promotion happen in Station.Update.
		return
	case StateAtHome:
		if inDepartureWindow(nowMin%MinutesPerDay, morningDepartureMin+a.ScheduleOffsetMin) {
			a.beginCommute(a.Office, StateCommutingToOffice, net)
		}
	case StateAtOffice:
		if inDepartureWindow(nowMin%MinutesPerDay, eveningDepartureMin+a.ScheduleOffsetMin) {
			a.beginCommute(a.Home, StateCommutingToHome, net)
		}
	}

	if !a.State.IsCommuting() {
		return
	}

	if a.NeedsCharging() {
		st := nearestStation(stations, a.CurrentLocation)
		if st == nil {
			// No charging infrastructure: the agent stalls in its commuting
			// state. Not an error; the battery is clamped at zero.
			return
		}
		// Arrival at the station is implicit: no detour travel is modeled.
		if !st.StartCharging(a, nowMin) {
			st.AddToQueue(a.ID)
			a.State = StateWaitingToCharge
		}
		return
	}

	moved := a.moveAlongPath(net, stepMinutes)
	if len(a.path) == 0 {
		// Empty path from an unreachable destination: stall here until the
		// next departure window recomputes it.
		return
	}
	if !moved || a.pathIndex >= len(a.path)-1 {
		a.arrive()
	}
}

// beginCommute sets the destination, computes a fresh path and resets
// progress. A failed path query leaves an empty path; it is not retried
// until the state machine re-enters a commuting transition.
func (a *Agent) beginCommute(dest geo.Location, s State, net *roadnet.Network) {
	a.Destination = dest
	a.hasDest = true
	a.State = s
	a.SetPath(net.ShortestPath(a.CurrentLocation, dest))
}

// arrive ends the commute at whichever endpoint the agent was bound for.
func (a *Agent) arrive() {
	if a.headedToOffice() {
		a.State = StateAtOffice
	} else {
		a.State = StateAtHome
	}
	a.SetPath(nil)
	a.hasDest = false
}

// headedToOffice resolves which end of the commute the agent is bound for.
// When no destination is set it falls back to whichever endpoint is
// geographically nearer.
func (a *Agent) headedToOffice() bool {
	if a.hasDest {
		if a.Destination == a.Office {
			return true
		}
		if a.Destination == a.Home {
			return false
		}
	}
	return a.CurrentLocation.DistanceTo(a.Office) < a.CurrentLocation.DistanceTo(a.Home)
}

// StartCharging moves the agent onto a port. Called by Station only.
func (a *Agent) StartCharging(nowMin int) {
	a.State = StateCharging
	a.chargingStartMin = nowMin
}

// ChargeComplete reports whether the current charging session is finished:
// either 30 simulated minutes have elapsed or the projected battery level
// has reached 80%.
func (a *Agent) ChargeComplete(nowMin int) bool {
	if a.State != StateCharging {
		return false
	}
	elapsed := nowMin - a.chargingStartMin
	if elapsed >= minChargeMinutes {
		return true
	}
	return a.projectedBattery(elapsed) >= chargeTargetPct
}

// projectedBattery is the level the battery will have after charging for
// elapsed minutes. The capacity is 100 kWh, so percent and kWh coincide.
func (a *Agent) projectedBattery(elapsedMin int) float64 {
	return a.Battery + float64(elapsedMin)/60*a.ChargingRateKWh
}

// FinishCharging credits the energy delivered over the whole session and
// resumes the interrupted commute. Called by Station only.
func (a *Agent) FinishCharging(nowMin int) {
	a.Battery = math.Min(maxBatteryPct, a.projectedBattery(nowMin-a.chargingStartMin))
	a.chargingStartMin = 0
	if a.headedToOffice() {
		a.State = StateCommutingToOffice
	} else {
		a.State = StateCommutingToHome
	}
}

// moveAlongPath walks forward through the remaining path edges, spending
// this step's travel distance against edge lengths and draining the battery
// per km driven. Fully traversed edges snap the position to the endpoint
// node; a partially traversed edge interpolates between its endpoints.
// Movement stops the instant the step's distance is spent, even mid-edge.
// It reports whether any movement occurred.
func (a *Agent) moveAlongPath(net *roadnet.Network, stepMinutes int) bool {
	if len(a.path) == 0 || a.pathIndex >= len(a.path)-1 {
		return false
	}
	budgetKm := a.SpeedKmh / 60 * float64(stepMinutes)
	moved := false
	for budgetKm > 0 && a.pathIndex < len(a.path)-1 {
		u, v := a.path[a.pathIndex], a.path[a.pathIndex+1]
		lengthM, ok := net.EdgeLengthM(u, v)
		if !ok {
			// Path no longer matches the graph; stop here.
			return moved
		}
		edgeKm := lengthM / 1000
		remainKm := edgeKm - a.edgeProgressKm
		if budgetKm >= remainKm {
			a.drain(remainKm)
			budgetKm -= remainKm
			a.pathIndex++
			a.edgeProgressKm = 0
			if loc, ok := net.NodeLocation(v); ok {
				a.CurrentLocation = loc
			}
		} else {
			a.drain(budgetKm)
			a.edgeProgressKm += budgetKm
			budgetKm = 0
			uLoc, _ := net.NodeLocation(u)
			vLoc, _ := net.NodeLocation(v)
			a.CurrentLocation = uLoc.Interpolate(vLoc, a.edgeProgressKm/edgeKm)
		}
		moved = true
	}
	return moved
}

// drain subtracts the energy for km driven, clamped at zero. An empty
// battery does not halt the agent; depletion is an observable end state,
// not an error.
func (a *Agent) drain(km float64) {
	a.Battery = math.Max(0, a.Battery-km*a.ConsumptionKWhKm)
}

// inDepartureWindow reports whether the time of day falls inside the
// 120-minute window starting at startMin, wrapping around midnight.
func inDepartureWindow(tod, startMin int) bool {
	d := (tod - startMin%MinutesPerDay + MinutesPerDay) % MinutesPerDay
	return d < departureWindowMin
}

// nearestStation returns the station closest to loc by great-circle
// distance, or nil when none exist. With stations in ascending id order,
// ties go to the lower id.
func nearestStation(stations []*Station, loc geo.Location) *Station {
	var best *Station
	bestD := math.Inf(1)
	for _, s := range stations {
		if d := loc.DistanceTo(s.Location); d < bestD {
			bestD = d
			best = s
		}
	}
	return best
}
