package sim

// State enumerates the behaviour states of an agent. The set is closed:
// every agent is in exactly one of these at any simulated instant.
type State int

const (
	StateAtHome State = iota
	StateCommutingToOffice
	StateAtOffice
	StateCommutingToHome
	StateWaitingToCharge
	StateCharging
)

var stateNames = [...]string{
	StateAtHome:            "at_home",
	StateCommutingToOffice: "commuting_to_office",
	StateAtOffice:          "at_office",
	StateCommutingToHome:   "commuting_to_home",
	StateWaitingToCharge:   "waiting_to_charge",
	StateCharging:          "charging",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// IsCommuting reports whether the agent is en route in either direction.
func (s State) IsCommuting() bool {
	return s == StateCommutingToOffice || s == StateCommutingToHome
}
