package sim

// MinutesPerDay folds multi-day simulation time into a single day.
const MinutesPerDay = 24 * 60

// Clock tracks discrete simulation time in minutes. It advances by a fixed
// step and only ever moves forward; runs may span multiple days.
type Clock struct {
	now  int
	step int
}

// NewClock returns a clock at minute zero with the given step size.
func NewClock(stepMinutes int) Clock {
	return Clock{step: stepMinutes}
}

// Now returns the current simulation time in minutes since the start.
func (c Clock) Now() int { return c.now }

// StepMinutes returns the fixed step size.
func (c Clock) StepMinutes() int { return c.step }

// TimeOfDay returns the current time folded into a single day.
func (c Clock) TimeOfDay() int { return c.now % MinutesPerDay }

// Advance moves the clock forward by one step.
func (c *Clock) Advance() { c.now += c.step }
