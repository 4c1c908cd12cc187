package domain

import (
	"math"
	"time"
)

// Countdown computes remaining whole seconds from a fixed end time, so the
// value stays correct however late each tick arrives.
type Countdown struct {
	totalSeconds int
	remaining    int
	end          time.Time
	finished     bool
	signalled    bool
}

// TickResult is the outcome of one countdown tick.
type TickResult struct {
	Remaining int
	// Finished is true on the single tick that observed completion.
	Finished bool
}

// NewCountdown starts a countdown at now. A positive initialRemaining within
// totalSeconds resumes from that point instead of from the full length.
func NewCountdown(totalSeconds, initialRemaining int, now time.Time) *Countdown {
	remaining := totalSeconds
	if initialRemaining > 0 && initialRemaining <= totalSeconds {
		remaining = initialRemaining
	}
	if remaining < 0 {
		remaining = 0
	}
	c := &Countdown{
		totalSeconds: totalSeconds,
		remaining:    remaining,
		end:          now.Add(time.Duration(remaining) * time.Second),
	}
	if remaining == 0 {
		c.finished = true
	}
	return c
}

// Tick recomputes the remaining time at now. Completion is reported once;
// later ticks return zero with Finished unset.
func (c *Countdown) Tick(now time.Time) TickResult {
	if c.finished {
		if c.signalled {
			return TickResult{}
		}
		c.signalled = true
		return TickResult{Remaining: 0, Finished: true}
	}

	left := int(math.Round(c.end.Sub(now).Seconds()))
	if left < 0 {
		left = 0
	}
	// Never move backwards if the wall clock does.
	if left > c.remaining {
		left = c.remaining
	}
	c.remaining = left

	if left == 0 {
		c.finished = true
		c.signalled = true
		return TickResult{Remaining: 0, Finished: true}
	}
	return TickResult{Remaining: left}
}

// Remaining returns the last computed remaining seconds.
func (c *Countdown) Remaining() int {
	return c.remaining
}

// TotalSeconds returns the full length of the countdown.
func (c *Countdown) TotalSeconds() int {
	return c.totalSeconds
}

// Finished returns true once the countdown has reached zero.
func (c *Countdown) Finished() bool {
	return c.finished
}

// Active returns true while further ticks are expected.
func (c *Countdown) Active() bool {
	return !c.signalled
}

// End returns the wall-clock time at which the countdown reaches zero.
func (c *Countdown) End() time.Time {
	return c.end
}

// Progress returns the fraction of time left (1.0 at start, 0 when done).
func (c *Countdown) Progress() float64 {
	if c.totalSeconds <= 0 {
		return 0
	}
	return float64(c.remaining) / float64(c.totalSeconds)
}

// MinutesDisplay rounds remaining seconds up to whole minutes, so "55" stays
// on screen until 54:00 is reached.
func MinutesDisplay(remainingSeconds int) int {
	if remainingSeconds <= 0 {
		return 0
	}
	return (remainingSeconds + 59) / 60
}
