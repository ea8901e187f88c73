// Package ui is a small retained mode widget toolkit for microcontroller
// displays.
//
// The toolkit never talks to hardware directly. It renders into a draw buffer
// owned by the application and hands finished areas to a Flusher, and it
// polls pointer input through an InputReader. All work happens inside Tick,
// which is expected to be called periodically from the main loop.
package ui

import (
	"errors"
	"time"
)

const (
	VersionMajor = 1
	VersionMinor = 2
	VersionPatch = 0
)

// Version returns the toolkit version.
func Version() (major, minor, patch int) {
	return VersionMajor, VersionMinor, VersionPatch
}

var (
	ErrNotInitialized = errors.New("ui: toolkit not initialized")
	ErrNoBuffer       = errors.New("ui: no draw buffer")
	ErrBufferTooSmall = errors.New("ui: draw buffer smaller than one line")
	ErrNoFlush        = errors.New("ui: no flush callback")
	ErrNoReader       = errors.New("ui: no input read callback")
	ErrNoDisplay      = errors.New("ui: no display registered")
	ErrGeometry       = errors.New("ui: invalid display size")
)

// Time returned by Tick when no timer is pending.
const maxIdle = 500 * time.Millisecond

// Toolkit is the root object of the toolkit. There is usually exactly one.
type Toolkit struct {
	initialized bool
	now         func() time.Time
	displays    []*Display
	inputs      []*InputDevice
	timers      []*Timer
}

// New returns a toolkit that still needs to be initialized with Init.
func New() *Toolkit {
	return &Toolkit{now: time.Now}
}

// Init initializes the toolkit. It must be called before any other method.
func (tk *Toolkit) Init() {
	tk.initialized = true
}

// Initialized returns whether Init has been called.
func (tk *Toolkit) Initialized() bool {
	return tk.initialized
}

// SetClock replaces the time source used by timers and animations.
func (tk *Toolkit) SetClock(now func() time.Time) {
	tk.now = now
}

// DefaultDisplay returns the first registered display, or nil.
func (tk *Toolkit) DefaultDisplay() *Display {
	if len(tk.displays) == 0 {
		return nil
	}
	return tk.displays[0]
}

// Tick does all pending work: it runs due timers, reads all input devices
// once, dispatches the resulting events and redraws invalidated areas. It
// returns the time until the next timer is due.
func (tk *Toolkit) Tick() time.Duration {
	if !tk.initialized {
		return 0
	}
	next := tk.runTimers()
	for _, in := range tk.inputs {
		in.read()
	}
	for _, d := range tk.displays {
		d.refresh()
	}
	return next
}
