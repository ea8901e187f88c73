// Widgets runs the ui widgets demo on the JC4827W543 board, or in a window
// when built for the host.
package main

import (
	"os"

	"github.com/jc4827w543/board"
	"github.com/jc4827w543/board/esplog"
	"github.com/jc4827w543/board/port"
	"github.com/jc4827w543/board/ui"
	"github.com/jc4827w543/board/ui/demo"
)

var (
	log *esplog.Logger
	app *port.App
)

func setup() {
	log = esplog.New(os.Stdout, "main")

	tk := ui.New()
	app = port.New(port.DefaultConfig(), port.Deps{
		Panel:     board.Display.Configure(),
		Touch:     board.Display.ConfigureTouch(),
		Backlight: board.Backlight,
		Toolkit:   tk,
		Content: func(d *ui.Display) {
			demo.Widgets(tk, d)
		},
		Log: log.With("port"),
	})
	if err := app.Setup(); err != nil {
		// Keep running: the touch screen or the log may still be useful.
		log.Errorf("setup: %v", err)
	}
	log.Infof("Setup done")
}

func loop() {
	app.Loop()
}

func main() {
	setup()
	for {
		loop()
	}
}
