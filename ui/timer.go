package ui

import "time"

// Timer calls a function periodically from Tick.
type Timer struct {
	tk      *Toolkit
	period  time.Duration
	last    time.Time
	fn      func(t *Timer)
	paused  bool
	repeat  int // -1: forever
	deleted bool
}

// NewTimer creates a timer that runs fn every period, starting one period
// from now.
func (tk *Toolkit) NewTimer(period time.Duration, fn func(t *Timer)) *Timer {
	t := &Timer{
		tk:     tk,
		period: period,
		last:   tk.now(),
		fn:     fn,
		repeat: -1,
	}
	tk.timers = append(tk.timers, t)
	return t
}

// SetPeriod changes the period.
func (t *Timer) SetPeriod(period time.Duration) {
	t.period = period
}

// SetRepeatCount limits the number of runs, after which the timer deletes
// itself. -1 means forever.
func (t *Timer) SetRepeatCount(n int) {
	t.repeat = n
}

// Pause stops the timer from running until Resume is called.
func (t *Timer) Pause() {
	t.paused = true
}

// Resume continues a paused timer.
func (t *Timer) Resume() {
	t.paused = false
}

// Paused returns whether the timer is paused.
func (t *Timer) Paused() bool {
	return t.paused
}

// Reset restarts the period from now.
func (t *Timer) Reset() {
	t.last = t.tk.now()
}

// Delete removes the timer.
func (t *Timer) Delete() {
	t.deleted = true
}

// Run all due timers and return the time until the next one is due.
func (tk *Toolkit) runTimers() time.Duration {
	now := tk.now()
	next := maxIdle
	for i := 0; i < len(tk.timers); i++ {
		t := tk.timers[i]
		if !t.deleted && !t.paused && now.Sub(t.last) >= t.period {
			t.last = now
			t.fn(t)
			if t.repeat > 0 {
				t.repeat--
				if t.repeat == 0 {
					t.deleted = true
				}
			}
		}
		if t.deleted {
			tk.timers = append(tk.timers[:i], tk.timers[i+1:]...)
			i--
			continue
		}
		if t.paused {
			continue
		}
		if remaining := t.period - now.Sub(t.last); remaining < next {
			next = remaining
		}
	}
	if next < 0 {
		next = 0
	}
	return next
}
