package port

import (
	"image/color"
	"time"
)

// Config holds the settings of the application. On the device these never
// change, so DefaultConfig is what the board uses.
type Config struct {
	Width       int16
	Height      int16
	BufferLines int // lines of the panel width in the draw buffer

	Brightness          uint8 // 0..255
	BacklightFrequency  uint32
	BacklightResolution uint8

	Background color.RGBA // screen color after bring-up

	IdleDelay  time.Duration // sleep between ticks
	TickBudget time.Duration // ticks taking longer than this are counted
}

// DefaultConfig returns the configuration of the JC4827W543 board.
func DefaultConfig() Config {
	return Config{
		Width:               480,
		Height:              272,
		BufferLines:         32,
		Brightness:          250,
		BacklightFrequency:  5000,
		BacklightResolution: 12,
		Background:          color.RGBA{A: 0xFF},
		IdleDelay:           5 * time.Millisecond,
		TickBudget:          20 * time.Millisecond,
	}
}
