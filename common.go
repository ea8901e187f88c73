package board

import (
	"time"

	"github.com/aykevl/tinygl/pixel"
	"tinygo.org/x/drivers"
)

// Settings for the simulator. These can be modified at any time, but it is
// recommended to modify them before configuring any of the board peripherals.
//
// The defaults match the JC4827W543 board, so that the simulator window looks
// like the real display.
var Simulator = struct {
	WindowTitle string

	// Width and height in virtual pixels (matching Size()). The window will
	// take up more physical pixels on high-DPI screens.
	WindowWidth  int
	WindowHeight int

	// Pixels per inch. The default is 120, which matches many commonly used
	// high-DPI screens (for example, Apple screens).
	WindowPPI int

	// How long it takes to write a single pixel to the panel. Drawing is
	// slowed down to match, to get a feel for the speed of the real bus.
	// Zero means as fast as possible.
	WindowDrawSpeed time.Duration
}{
	WindowTitle:  "JC4827W543",
	WindowWidth:  480,
	WindowHeight: 272,
	WindowPPI:    120, // common on many modern displays (for example Retina is 254 / 2 = 127)
}

// Panel is the display panel shared by all supported boards. Pixels are
// written in transactions: StartWrite, then any number of SetAddrWindow and
// WritePixels calls, then EndWrite.
type Panel interface {
	// Bring up the panel. After this it is ready to receive pixel data.
	Begin() error

	// The display size in pixels, taking rotation into account.
	Size() (width, height int16)
	Rotation() drivers.Rotation

	// Fill the whole screen with a single color.
	FillScreen(c pixel.RGB565BE) error

	StartWrite()
	EndWrite()

	// Set the area that following pixel data is written to.
	SetAddrWindow(x, y, w, h int16) error

	// Write data to the address window in the usual row-major order (which
	// matches the usual order of text on a page: first left to right and then
	// each line top to bottom).
	WritePixels(buf []pixel.RGB565BE) error
}

// TouchInput is a single-point touch screen.
type TouchInput interface {
	// Set the coordinate space to match the display.
	Configure(width, height int16, rotation drivers.Rotation)

	// Whether the touch controller is responding.
	HasSignal() bool

	// Poll the controller. It returns true while the screen is touched, and
	// updates LastPoint.
	Touched() bool

	// Whether the last poll reported no touch.
	Released() bool

	LastPoint() (x, y int16)
}
