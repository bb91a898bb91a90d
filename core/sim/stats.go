package sim

// AgentSnapshot is the externally visible state of one agent.
type AgentSnapshot struct {
	ID      int     `json:"id"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Battery float64 `json:"battery"`
	State   string  `json:"state"`
}

// StationSnapshot is the externally visible state of one station.
type StationSnapshot struct {
	ID          int `json:"id"`
	Occupied    int `json:"occupied"`
	Capacity    int `json:"capacity"`
	QueueLength int `json:"queue_length"`
}

// Snapshot captures the whole simulation at one instant, for visualization
// and reporting collaborators. It is a value copy: holding one does not
// reach into live simulation state.
type Snapshot struct {
	RunID       string            `json:"run_id"`
	TimeMinutes int               `json:"time_minutes"`
	Agents      []AgentSnapshot   `json:"agents"`
	Stations    []StationSnapshot `json:"stations"`
}

// Stats aggregates one step for reporting and metrics sinks.
type Stats struct {
	TimeMinutes     int
	AgentsAtHome    int
	AgentsAtOffice  int
	AgentsCommuting int
	AgentsCharging  int
	AgentsWaiting   int
	AvgBattery      float64
	LowBattery      int
	TotalPorts      int
	OccupiedPorts   int
	Stations        []StationSnapshot
}
