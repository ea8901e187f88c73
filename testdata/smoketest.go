package main

import (
	"time"

	"github.com/aykevl/tinygl/pixel"
	"tinygo.org/x/drivers"

	"github.com/jc4827w543/board"
)

func main() {
	// Verify board name constant.
	var _ string = board.Name

	// Assert that board.Display returns the usual panel and touch input.
	var panel board.Panel = board.Display.Configure()
	var touch board.TouchInput = board.Display.ConfigureTouch()
	checkPanel(panel)
	touch.Configure(480, 272, drivers.Rotation0)

	// Assert that Display uses the usual interface.
	var _ interface {
		PPI() int
		ConfigureTouch() board.TouchInput
		WaitForVBlank(time.Duration)
	} = board.Display

	// Assert that board.Backlight uses the usual interface.
	var _ interface {
		Configure(frequency uint32, resolution uint8) error
		MaxDuty() uint32
		Set(duty uint32)
	} = board.Backlight
}

func checkPanel(panel board.Panel) {
	panel.Begin()
	panel.FillScreen(pixel.RGB565BE(0))
}
