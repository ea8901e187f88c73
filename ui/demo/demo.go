// Package demo contains the widgets demo screen of the ui toolkit.
package demo

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jc4827w543/board/ui"
)

const animationPeriod = 30 * time.Millisecond

// Demo holds the widgets of the demo screen, mostly so that tests can poke
// at them.
type Demo struct {
	Screen   *ui.Screen
	Counter  *ui.Button
	Count    *ui.Label
	Slider   *ui.Slider
	Level    *ui.Bar
	Percent  *ui.Label
	Dark     *ui.Switch
	Animate  *ui.Checkbox
	Progress *ui.Bar
	Timer    *ui.Timer

	clicks int
	step   int32
}

// Widgets builds the demo screen on d and makes it the active screen.
func Widgets(tk *ui.Toolkit, d *ui.Display) *Demo {
	width, height := d.Size()
	s := ui.NewScreen(ui.DefaultTheme)
	demo := &Demo{Screen: s, step: 1}

	ui.NewLabel(s, 16, 12, "Widgets demo")
	major, minor, patch := ui.Version()
	version := ui.NewLabel(s, 0, 12, fmt.Sprintf("v%d.%d.%d", major, minor, patch))
	version.SetPos(width-16-version.Area().Width(), 12)
	version.SetColor(s.Theme().TextMuted)

	demo.Counter = ui.NewButton(s, ui.Rect(16, 48, 120, 40), "Click me")
	demo.Count = ui.NewLabel(s, 152, 60, "Clicks: 0")
	demo.Counter.OnEvent(ui.EventClicked, func(*ui.Event) {
		demo.clicks++
		demo.Count.SetText("Clicks: " + strconv.Itoa(demo.clicks))
	})

	demo.Slider = ui.NewSlider(s, ui.Rect(16, 108, width/2-32, 24), 0, 100)
	demo.Level = ui.NewBar(s, ui.Rect(width/2, 116, width/2-80, 8), 0, 100)
	demo.Percent = ui.NewLabel(s, width-56, 112, "0%")
	demo.Slider.OnEvent(ui.EventValueChanged, func(*ui.Event) {
		v := demo.Slider.Value()
		demo.Level.SetValue(v)
		demo.Percent.SetText(strconv.Itoa(int(v)) + "%")
	})

	ui.NewLabel(s, 16, 160, "Dark theme")
	demo.Dark = ui.NewSwitch(s, ui.Rect(120, 154, 48, 24))
	demo.Dark.OnEvent(ui.EventValueChanged, func(*ui.Event) {
		if demo.Dark.On() {
			s.SetTheme(ui.DarkTheme)
		} else {
			s.SetTheme(ui.DefaultTheme)
		}
	})

	demo.Animate = ui.NewCheckbox(s, 16, 200, "Animate")
	demo.Animate.SetChecked(true)
	demo.Progress = ui.NewBar(s, ui.Rect(16, height-36, width-32, 12), 0, 100)
	demo.Timer = tk.NewTimer(animationPeriod, demo.animate)
	demo.Animate.OnEvent(ui.EventValueChanged, func(*ui.Event) {
		if demo.Animate.Checked() {
			demo.Timer.Resume()
		} else {
			demo.Timer.Pause()
		}
	})

	d.LoadScreen(s)
	return demo
}

// Move the progress bar back and forth.
func (demo *Demo) animate(*ui.Timer) {
	v := demo.Progress.Value() + demo.step
	if v >= 100 || v <= 0 {
		demo.step = -demo.step
	}
	demo.Progress.SetValue(v)
}
