package scheduler

import "time"

// Clock answers "what is the current simulated time". The production
// implementation derives it from monotonic wall time; tests substitute a
// manually advanced clock.
type Clock interface {
	Now() time.Time
	HoursSince(t time.Time) float64
}

// SimClock accelerates wall time by a fixed factor. It is lock-free: both
// reference points are fixed at construction and the monotonic wall clock
// never moves backwards.
type SimClock struct {
	realStart time.Time
	simStart  time.Time
	factor    float64
}

// NewSimClock starts a simulated clock at the current wall time.
func NewSimClock(factor float64) *SimClock {
	return NewSimClockAt(factor, time.Now().UTC())
}

// NewSimClockAt starts a simulated clock at an arbitrary simulated instant,
// useful for driving tariff-sensitive scenarios from a known hour of day.
func NewSimClockAt(factor float64, simStart time.Time) *SimClock {
	if factor <= 0 {
		factor = 1
	}
	return &SimClock{
		realStart: time.Now(),
		simStart:  simStart,
		factor:    factor,
	}
}

func (c *SimClock) Now() time.Time {
	elapsed := time.Since(c.realStart)
	return c.simStart.Add(time.Duration(float64(elapsed) * c.factor))
}

// HoursSince returns the simulated decimal hours elapsed since t.
func (c *SimClock) HoursSince(t time.Time) float64 {
	return c.Now().Sub(t).Hours()
}
