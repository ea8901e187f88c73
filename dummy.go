package board

import (
	"time"

	"tinygo.org/x/drivers"
)

// This file contains dummy devices, for devices which don't support a
// particular kind of device (or couldn't be found).

// Dummy touch object that doesn't read any input.
// Used when the touch controller doesn't respond.
type noTouch struct{}

func (t noTouch) Configure(width, height int16, rotation drivers.Rotation) {
}

func (t noTouch) HasSignal() bool {
	return false
}

func (t noTouch) Touched() bool {
	return false
}

func (t noTouch) Released() bool {
	return true
}

func (t noTouch) LastPoint() (x, y int16) {
	return 0, 0
}

var lastVBlank time.Time

// Wait until defaultInterval has passed since the previous call, for displays
// without a vblank signal.
func dummyWaitForVBlank(defaultInterval time.Duration) {
	now := time.Now()
	next := lastVBlank.Add(defaultInterval)
	if delay := next.Sub(now); delay > 0 {
		time.Sleep(delay)
		now = next
	}
	lastVBlank = now
}
