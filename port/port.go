// Package port connects the panel, touch and backlight drivers to the ui
// toolkit.
//
// An App is created once at startup. Its Setup method brings up the
// hardware and registers the App itself as flush callback, input reader and
// feedback handler of the toolkit. After that, Loop (or Run) drives the
// toolkit forever.
package port

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aykevl/tinygl/pixel"
	"tinygo.org/x/drivers"

	"github.com/jc4827w543/board/esplog"
	"github.com/jc4827w543/board/ui"
)

var (
	ErrDisplayInit  = errors.New("port: display initialization failed")
	ErrNoDrawBuffer = errors.New("port: draw buffer allocation failed")
)

// Panel is the display panel driver.
type Panel interface {
	Begin() error
	FillScreen(c pixel.RGB565BE) error
	StartWrite()
	SetAddrWindow(x, y, w, h int16) error
	WritePixels(buf []pixel.RGB565BE) error
	EndWrite()
	Size() (width, height int16)
	Rotation() drivers.Rotation
}

// Touch is a single-point touch controller driver.
type Touch interface {
	Configure(width, height int16, rotation drivers.Rotation)
	HasSignal() bool
	Touched() bool
	Released() bool
	LastPoint() (x, y int16)
}

// Backlight is the PWM channel driving the display backlight.
type Backlight interface {
	Configure(frequency uint32, resolution uint8) error
	MaxDuty() uint32
	Set(duty uint32)
}

// Toolkit is the part of the ui toolkit used by the App.
type Toolkit interface {
	Init()
	RegisterDisplay(config ui.DisplayConfig) (*ui.Display, error)
	RegisterInput(config ui.InputConfig) (*ui.InputDevice, error)
	Tick() time.Duration
}

// Deps are the collaborators of an App. Panel, Touch, Backlight and Toolkit
// are required.
type Deps struct {
	Panel     Panel
	Touch     Touch
	Backlight Backlight
	Toolkit   Toolkit

	// Content builds the widgets once the display is registered. It is
	// optional.
	Content func(d *ui.Display)

	// Feedback receives every input event, for example to beep. It is
	// optional.
	Feedback ui.Feedbacker

	Log *esplog.Logger
}

// State is the life cycle state of an App.
type State uint8

const (
	Uninitialized State = iota
	Initializing
	Running
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// App is the application context.
type App struct {
	config Config
	deps   Deps
	log    *esplog.Logger
	state  State

	display *ui.Display
	input   *ui.InputDevice

	now   func() time.Time
	sleep func(time.Duration)

	ticks     int
	overruns  int
	lastTick  time.Duration
	flushErrs int
}

// New returns an uninitialized App.
func New(config Config, deps Deps) *App {
	return &App{
		config: config,
		deps:   deps,
		log:    deps.Log,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// State returns the current life cycle state.
func (a *App) State() State {
	return a.state
}

// Display returns the registered toolkit display, or nil when setup didn't
// get that far.
func (a *App) Display() *ui.Display {
	return a.display
}

// Input returns the registered pointer input device, or nil.
func (a *App) Input() *ui.InputDevice {
	return a.input
}

// InitializeDisplay configures the backlight, brings up the panel and clears
// it. A failing panel is logged and reported but nothing is rolled back: the
// screen is simply in an unknown state.
func (a *App) InitializeDisplay() error {
	if err := a.deps.Backlight.Configure(a.config.BacklightFrequency, a.config.BacklightResolution); err != nil {
		a.log.Errorf("backlight: %v", err)
	} else {
		a.SetBrightness(a.config.Brightness)
	}

	if err := a.deps.Panel.Begin(); err != nil {
		a.log.Errorf("panel begin failed: %v", err)
		return fmt.Errorf("%w: %w", ErrDisplayInit, err)
	}
	bg := a.config.Background
	if err := a.deps.Panel.FillScreen(pixel.NewColor[pixel.RGB565BE](bg.R, bg.G, bg.B)); err != nil {
		a.log.Errorf("panel fill failed: %v", err)
		return fmt.Errorf("%w: %w", ErrDisplayInit, err)
	}
	return nil
}

// InitializeTouch makes touch coordinates match the display geometry.
func (a *App) InitializeTouch(width, height int16, rotation drivers.Rotation) {
	a.deps.Touch.Configure(width, height, rotation)
}

// Setup runs the whole initialization sequence. It always ends in the
// Running state, even when something failed: the returned error joins all
// failures so that the caller can decide whether to carry on without a
// working display.
func (a *App) Setup() error {
	a.state = Initializing
	defer func() { a.state = Running }()

	var errs []error
	if err := a.InitializeDisplay(); err != nil {
		errs = append(errs, err)
	}
	width, height := a.deps.Panel.Size()
	a.InitializeTouch(width, height, a.deps.Panel.Rotation())

	a.deps.Toolkit.Init()

	buf, err := ui.NewDrawBuffer(int(a.config.Width) * a.config.BufferLines)
	if err != nil {
		a.log.Errorf("draw buffer allocation failed")
		errs = append(errs, fmt.Errorf("%w: %w", ErrNoDrawBuffer, err))
	} else if err := a.register(buf); err != nil {
		errs = append(errs, err)
	}

	major, minor, patch := ui.Version()
	a.log.Infof("ui v%d.%d.%d initialized", major, minor, patch)
	return errors.Join(errs...)
}

func (a *App) register(buf *ui.DrawBuffer) error {
	d, err := a.deps.Toolkit.RegisterDisplay(ui.DisplayConfig{
		Width:  a.config.Width,
		Height: a.config.Height,
		Buffer: buf,
		Flush:  a,
	})
	if err != nil {
		a.log.Errorf("display registration failed: %v", err)
		return err
	}
	a.display = d

	in, err := a.deps.Toolkit.RegisterInput(ui.InputConfig{
		Type:     ui.InputPointer,
		Read:     a,
		Feedback: a,
	})
	if err != nil {
		a.log.Errorf("input registration failed: %v", err)
		return err
	}
	a.input = in

	if a.deps.Content != nil {
		a.deps.Content(d)
	}
	return nil
}

// Flush writes a rendered area to the panel. It implements ui.Flusher.
//
// The acknowledgment is sent even when writing failed, otherwise the toolkit
// would wait for it forever.
func (a *App) Flush(area ui.Area, pixels []pixel.RGB565BE, done *ui.FlushDone) {
	w, h := area.Width(), area.Height()
	p := a.deps.Panel
	p.StartWrite()
	if err := p.SetAddrWindow(area.X1, area.Y1, w, h); err != nil {
		a.flushErrs++
		a.log.Errorf("flush %v: %v", area, err)
	} else if err := p.WritePixels(pixels[:int(w)*int(h)]); err != nil {
		a.flushErrs++
		a.log.Errorf("flush %v: %v", area, err)
	}
	p.EndWrite()
	done.Ready()
}

// ReadInput reports the touch state. It implements ui.InputReader.
//
// Without a signal from the controller the pointer is released, whatever the
// previous state was. A release keeps the last pressed point.
func (a *App) ReadInput(data *ui.InputData) {
	t := a.deps.Touch
	if !t.HasSignal() {
		data.State = ui.Released
		return
	}
	if t.Touched() {
		x, y := t.LastPoint()
		data.State = ui.Pressed
		data.Point = ui.Point{X: x, Y: y}
	} else if t.Released() {
		data.State = ui.Released
	}
}

// Feedback implements ui.Feedbacker.
func (a *App) Feedback(code ui.EventCode) {
	if a.deps.Feedback != nil {
		a.deps.Feedback.Feedback(code)
	}
}

// BrightnessDuty converts a brightness level to a PWM duty cycle, rounding
// to the nearest step.
func BrightnessDuty(level uint8, maxDuty uint32) uint32 {
	return uint32((uint64(maxDuty)*uint64(level) + 127) / 255)
}

// SetBrightness changes the backlight brightness immediately.
func (a *App) SetBrightness(level uint8) {
	bl := a.deps.Backlight
	bl.Set(BrightnessDuty(level, bl.MaxDuty()))
}

// Loop runs a single iteration of the main loop: a toolkit tick followed by
// the idle delay.
func (a *App) Loop() {
	a.tick()
	a.sleep(a.config.IdleDelay)
}

// Run calls Loop until the context is canceled. On the device the context is
// never canceled.
func (a *App) Run(ctx context.Context) error {
	for {
		a.tick()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.config.IdleDelay):
		}
	}
}

func (a *App) tick() {
	start := a.now()
	a.deps.Toolkit.Tick()
	a.ticks++
	a.lastTick = a.now().Sub(start)
	if a.config.TickBudget > 0 && a.lastTick > a.config.TickBudget {
		a.overruns++
		a.log.Debugf("tick took %v", a.lastTick)
	}
}

// Stats is a snapshot of the main loop counters.
type Stats struct {
	Ticks       int
	Overruns    int // ticks over the budget
	LastTick    time.Duration
	FlushErrors int
}

// Stats returns the main loop counters.
func (a *App) Stats() Stats {
	return Stats{
		Ticks:       a.ticks,
		Overruns:    a.overruns,
		LastTick:    a.lastTick,
		FlushErrors: a.flushErrs,
	}
}
