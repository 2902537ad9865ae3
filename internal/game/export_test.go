package game

import "time"

// Test hooks for the external test package.

// SetClock replaces the controller's time source.
func (c *Controller) SetClock(now func() time.Time) {
	c.now = now
}

// SetRevealDelay overrides the delay between round-end detection and advance.
func (c *Controller) SetRevealDelay(d time.Duration) {
	c.revealDelay = d
}

// SetClock replaces the reaper's time source.
func (r *Reaper) SetClock(now func() time.Time) {
	r.now = now
}
