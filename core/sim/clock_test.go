package sim

import "testing"

func TestClockAdvance(t *testing.T) {
	c := NewClock(10)
	for i := 0; i < 3; i++ {
		c.Advance()
	}
	if c.Now() != 30 {
		t.Fatalf("expected 30, got %d", c.Now())
	}
}

func TestClockTimeOfDayWraps(t *testing.T) {
	c := NewClock(60)
	for c.Now() < MinutesPerDay+120 {
		c.Advance()
	}
	if got := c.TimeOfDay(); got != 120 {
		t.Fatalf("expected 120 into the second day, got %d", got)
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateAtHome:            "at_home",
		StateCommutingToOffice: "commuting_to_office",
		StateAtOffice:          "at_office",
		StateCommutingToHome:   "commuting_to_home",
		StateWaitingToCharge:   "waiting_to_charge",
		StateCharging:          "charging",
		State(42):              "unknown",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Fatalf("State(%d).String(): expected %q, got %q", s, want, got)
		}
	}
}
