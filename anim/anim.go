// Package anim provides the timing primitives the engine drives from
// its frame loop: a trailing-edge throttle for coalescing bursts of
// work and a fixed-duration animation clock. Neither spawns goroutines
// or timers; callers poll them with the current frame time.
package anim

import (
	"math"
	"time"
)

// Throttle coalesces repeated requests so that work runs at most once
// per Interval. The trailing edge is guaranteed: a request made during
// the cooldown window runs as soon as the window expires, so the last
// request is never lost.
type Throttle struct {
	Interval time.Duration

	last    time.Time
	pending bool
}

// Request records that the throttled work should run.
func (t *Throttle) Request() {
	t.pending = true
}

// Due reports whether the pending work should run now, consuming the
// request when it returns true. With no pending request it returns
// false.
func (t *Throttle) Due(now time.Time) bool {
	if !t.pending {
		return false
	}
	if !t.last.IsZero() && now.Sub(t.last) < t.Interval {
		return false
	}
	t.last = now
	t.pending = false
	return true
}

// Cancel drops any pending request without running it.
func (t *Throttle) Cancel() {
	t.pending = false
}

// Animation tracks progress through a fixed time window. The zero
// value is stopped.
type Animation struct {
	Duration time.Duration

	start   time.Time
	running bool
}

// Start begins the animation at now, restarting it if already running.
func (a *Animation) Start(now time.Time) {
	a.start = now
	a.running = true
}

// Stop halts the animation.
func (a *Animation) Stop() {
	a.running = false
}

// Running reports whether the animation has started and not stopped.
func (a *Animation) Running() bool {
	return a.running
}

// Progress returns linear progress in [0, 1] at the given time. A
// stopped animation reports 1; a zero Duration completes immediately.
func (a *Animation) Progress(now time.Time) float64 {
	if !a.running || a.Duration <= 0 {
		return 1
	}
	t := float64(now.Sub(a.start)) / float64(a.Duration)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// EaseOut maps linear progress to a decelerating curve that starts
// fast and lands softly.
func EaseOut(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return 1 - math.Pow(1-t, 3)
}
