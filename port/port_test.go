package port

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aykevl/tinygl/pixel"
	qt "github.com/frankban/quicktest"
	"tinygo.org/x/drivers"

	"github.com/jc4827w543/board/esplog"
	"github.com/jc4827w543/board/ui"
)

type calls []string

func (c *calls) add(format string, args ...any) {
	*c = append(*c, fmt.Sprintf(format, args...))
}

type fakePanel struct {
	calls     *calls
	beginErr  error
	windowErr error
	writes    []int
	// Called during WritePixels and EndWrite, to check the acknowledgment
	// order.
	during func()
}

func (p *fakePanel) Begin() error {
	p.calls.add("begin")
	return p.beginErr
}

func (p *fakePanel) FillScreen(c pixel.RGB565BE) error {
	p.calls.add("fill %d", uint16(c))
	return nil
}

func (p *fakePanel) StartWrite() { p.calls.add("start") }

func (p *fakePanel) SetAddrWindow(x, y, w, h int16) error {
	p.calls.add("window %d %d %d %d", x, y, w, h)
	return p.windowErr
}

func (p *fakePanel) WritePixels(buf []pixel.RGB565BE) error {
	p.calls.add("pixels %d", len(buf))
	p.writes = append(p.writes, len(buf))
	if p.during != nil {
		p.during()
	}
	return nil
}

func (p *fakePanel) EndWrite() {
	p.calls.add("end")
	if p.during != nil {
		p.during()
	}
}

func (p *fakePanel) Size() (int16, int16)       { return 480, 272 }
func (p *fakePanel) Rotation() drivers.Rotation { return drivers.Rotation0 }

type sample struct {
	signal   bool
	touched  bool
	released bool
	x, y     int16
}

type fakeTouch struct {
	calls   *calls
	samples []sample
	cur     sample
}

func (t *fakeTouch) Configure(width, height int16, rotation drivers.Rotation) {
	t.calls.add("touch %d %d %d", width, height, rotation)
}

// HasSignal starts the next sample; the other methods report on it.
func (t *fakeTouch) HasSignal() bool {
	if len(t.samples) > 0 {
		t.cur = t.samples[0]
		t.samples = t.samples[1:]
	}
	return t.cur.signal
}

func (t *fakeTouch) Touched() bool           { return t.cur.touched }
func (t *fakeTouch) Released() bool          { return t.cur.released }
func (t *fakeTouch) LastPoint() (x, y int16) { return t.cur.x, t.cur.y }

type fakeBacklight struct {
	calls     *calls
	configErr error
	max       uint32
	duty      uint32
}

func (b *fakeBacklight) Configure(frequency uint32, resolution uint8) error {
	b.calls.add("backlight %d %d", frequency, resolution)
	b.max = 1<<resolution - 1
	return b.configErr
}

func (b *fakeBacklight) MaxDuty() uint32 { return b.max }

func (b *fakeBacklight) Set(duty uint32) {
	b.calls.add("duty %d", duty)
	b.duty = duty
}

type fakeToolkit struct {
	*ui.Toolkit
	calls *calls
	ticks int
}

func (tk *fakeToolkit) Init() {
	tk.calls.add("init")
	tk.Toolkit.Init()
}

func (tk *fakeToolkit) RegisterDisplay(config ui.DisplayConfig) (*ui.Display, error) {
	tk.calls.add("display %dx%d buffer %d", config.Width, config.Height, config.Buffer.Len())
	return tk.Toolkit.RegisterDisplay(config)
}

func (tk *fakeToolkit) RegisterInput(config ui.InputConfig) (*ui.InputDevice, error) {
	tk.calls.add("input")
	return tk.Toolkit.RegisterInput(config)
}

func (tk *fakeToolkit) Tick() time.Duration {
	tk.ticks++
	return tk.Toolkit.Tick()
}

type fixture struct {
	calls     *calls
	panel     *fakePanel
	touch     *fakeTouch
	backlight *fakeBacklight
	toolkit   *fakeToolkit
	logs      *bytes.Buffer
	deps      Deps
}

func newFixture() *fixture {
	c := &calls{}
	f := &fixture{
		calls:     c,
		panel:     &fakePanel{calls: c},
		touch:     &fakeTouch{calls: c},
		backlight: &fakeBacklight{calls: c},
		toolkit:   &fakeToolkit{Toolkit: ui.New(), calls: c},
		logs:      &bytes.Buffer{},
	}
	log := esplog.New(f.logs, "port")
	log.SetLevel(esplog.Debug)
	f.deps = Deps{
		Panel:     f.panel,
		Touch:     f.touch,
		Backlight: f.backlight,
		Toolkit:   f.toolkit,
		Log:       log,
	}
	return f
}

func TestStateString(t *testing.T) {
	c := qt.New(t)
	c.Assert(Uninitialized.String(), qt.Equals, "uninitialized")
	c.Assert(Initializing.String(), qt.Equals, "initializing")
	c.Assert(Running.String(), qt.Equals, "running")
	c.Assert(State(7).String(), qt.Equals, "State(7)")
}

func TestSetup(t *testing.T) {
	c := qt.New(t)
	f := newFixture()
	var content *ui.Display
	f.deps.Content = func(d *ui.Display) {
		f.calls.add("content")
		content = d
	}
	app := New(DefaultConfig(), f.deps)
	c.Assert(app.State(), qt.Equals, Uninitialized)

	err := app.Setup()
	c.Assert(err, qt.IsNil)
	c.Assert(app.State(), qt.Equals, Running)
	c.Assert(*f.calls, qt.DeepEquals, calls{
		"backlight 5000 12",
		"duty 4015",
		"begin",
		"fill 0",
		"touch 480 272 0",
		"init",
		"display 480x272 buffer 15360",
		"input",
		"content",
	})
	c.Assert(content, qt.Not(qt.IsNil))
	c.Assert(app.Display(), qt.Equals, content)
	c.Assert(app.Input(), qt.Not(qt.IsNil))
	c.Assert(f.logs.String(), qt.Contains, "I (")
	c.Assert(f.logs.String(), qt.Contains, "port: ui v1.2.0 initialized")
}

func TestSetupDisplayFailure(t *testing.T) {
	c := qt.New(t)
	f := newFixture()
	errBus := errors.New("no response")
	f.panel.beginErr = errBus
	app := New(DefaultConfig(), f.deps)

	err := app.Setup()
	c.Assert(errors.Is(err, ErrDisplayInit), qt.IsTrue)
	c.Assert(errors.Is(err, errBus), qt.IsTrue)
	// Not fatal: everything else is still set up.
	c.Assert(app.State(), qt.Equals, Running)
	c.Assert(app.Display(), qt.Not(qt.IsNil))
	c.Assert(*f.calls, qt.Not(qt.Contains), "fill 0")
	c.Assert(f.logs.String(), qt.Contains, "E (")
}

func TestSetupBacklightFailure(t *testing.T) {
	c := qt.New(t)
	f := newFixture()
	f.backlight.configErr = errors.New("bad frequency")
	app := New(DefaultConfig(), f.deps)
	c.Assert(app.Setup(), qt.IsNil)
	c.Assert((*f.calls)[1], qt.Equals, "begin")
	c.Assert(f.logs.String(), qt.Contains, "backlight: bad frequency")
}

func TestSetupNoDrawBuffer(t *testing.T) {
	c := qt.New(t)
	f := newFixture()
	cfg := DefaultConfig()
	cfg.BufferLines = 0
	app := New(cfg, f.deps)

	err := app.Setup()
	c.Assert(errors.Is(err, ErrNoDrawBuffer), qt.IsTrue)
	c.Assert(errors.Is(err, ui.ErrNoBuffer), qt.IsTrue)
	c.Assert(app.State(), qt.Equals, Running)
	c.Assert(app.Display(), qt.IsNil)
	c.Assert(app.Input(), qt.IsNil)
	c.Assert((*f.calls)[len(*f.calls)-1], qt.Equals, "init")

	// Ticking without a display is harmless.
	app.sleep = func(time.Duration) {}
	app.Loop()
	c.Assert(f.toolkit.ticks, qt.Equals, 1)
}

func TestSetupErrorsJoined(t *testing.T) {
	c := qt.New(t)
	f := newFixture()
	f.panel.beginErr = errors.New("no response")
	cfg := DefaultConfig()
	cfg.BufferLines = 0
	err := New(cfg, f.deps).Setup()
	c.Assert(errors.Is(err, ErrDisplayInit), qt.IsTrue)
	c.Assert(errors.Is(err, ErrNoDrawBuffer), qt.IsTrue)
}

func TestFlushFullScreen(t *testing.T) {
	c := qt.New(t)
	f := newFixture()
	app := New(DefaultConfig(), f.deps)
	var done ui.FlushDone
	app.Flush(ui.Area{X1: 0, Y1: 0, X2: 479, Y2: 271}, make([]pixel.RGB565BE, 480*272), &done)
	c.Assert(*f.calls, qt.DeepEquals, calls{
		"start",
		"window 0 0 480 272",
		"pixels 130560",
		"end",
	})
	c.Assert(done.Pending(), qt.IsFalse)
}

func TestFlushOffsetArea(t *testing.T) {
	c := qt.New(t)
	f := newFixture()
	app := New(DefaultConfig(), f.deps)
	var done ui.FlushDone
	app.Flush(ui.Area{X1: 10, Y1: 20, X2: 39, Y2: 24}, make([]pixel.RGB565BE, 150), &done)
	c.Assert(*f.calls, qt.DeepEquals, calls{
		"start",
		"window 10 20 30 5",
		"pixels 150",
		"end",
	})
	c.Assert(f.panel.writes, qt.DeepEquals, []int{150})
	c.Assert(done.Pending(), qt.IsFalse)
	c.Assert(app.Stats().FlushErrors, qt.Equals, 0)
}

func TestFlushThroughToolkit(t *testing.T) {
	c := qt.New(t)
	f := newFixture()
	app := New(DefaultConfig(), f.deps)
	c.Assert(app.Setup(), qt.IsNil)
	*f.calls = nil

	// The acknowledgment comes after the write is complete.
	var pendingDuring []bool
	f.panel.during = func() {
		pendingDuring = append(pendingDuring, app.Display().Flushing())
	}
	app.sleep = func(time.Duration) {}
	app.Loop()

	c.Assert(f.panel.writes, qt.HasLen, 9)
	total := 0
	for i, n := range f.panel.writes {
		if i < 8 {
			c.Assert(n, qt.Equals, 480*32)
		}
		total += n
	}
	c.Assert(total, qt.Equals, 480*272)
	c.Assert(f.panel.writes[8], qt.Equals, 480*16)
	c.Assert((*f.calls)[:4], qt.DeepEquals, calls{"start", "window 0 0 480 32", "pixels 15360", "end"})
	c.Assert((*f.calls)[len(*f.calls)-3], qt.Equals, "window 0 256 480 16")
	for _, pending := range pendingDuring {
		c.Assert(pending, qt.IsTrue)
	}
	c.Assert(pendingDuring, qt.HasLen, 18)
	c.Assert(app.Display().Flushing(), qt.IsFalse)
	c.Assert(app.Display().FlushCount(), qt.Equals, 9)
}

func TestFlushError(t *testing.T) {
	c := qt.New(t)
	f := newFixture()
	f.panel.windowErr = errors.New("out of bounds")
	app := New(DefaultConfig(), f.deps)
	var done ui.FlushDone
	app.Flush(ui.Rect(0, 0, 10, 10), make([]pixel.RGB565BE, 100), &done)
	c.Assert(*f.calls, qt.DeepEquals, calls{"start", "window 0 0 10 10", "end"})
	c.Assert(done.Pending(), qt.IsFalse)
	c.Assert(app.Stats().FlushErrors, qt.Equals, 1)
	c.Assert(f.logs.String(), qt.Contains, "out of bounds")
}

func TestReadInputSequence(t *testing.T) {
	c := qt.New(t)
	f := newFixture()
	f.touch.samples = []sample{
		{signal: false},
		{signal: true, touched: true, x: 100, y: 50},
		{signal: true, released: true},
	}
	app := New(DefaultConfig(), f.deps)
	var data ui.InputData
	var got []ui.InputData
	for i := 0; i < 3; i++ {
		app.ReadInput(&data)
		got = append(got, data)
	}
	c.Assert(got[0].State, qt.Equals, ui.Released)
	c.Assert(got[1], qt.Equals, ui.InputData{State: ui.Pressed, Point: ui.Point{X: 100, Y: 50}})
	c.Assert(got[2].State, qt.Equals, ui.Released)
	// A release doesn't report coordinates, the last point stays.
	c.Assert(got[2].Point, qt.Equals, ui.Point{X: 100, Y: 50})
}

func TestNoSignalReleases(t *testing.T) {
	c := qt.New(t)
	f := newFixture()
	f.touch.samples = []sample{
		{signal: true, touched: true, x: 7, y: 9},
		{signal: false, touched: true},
		{signal: false, touched: true},
	}
	app := New(DefaultConfig(), f.deps)
	var data ui.InputData
	app.ReadInput(&data)
	c.Assert(data.State, qt.Equals, ui.Pressed)
	for i := 0; i < 2; i++ {
		app.ReadInput(&data)
		c.Assert(data.State, qt.Equals, ui.Released)
	}
}

func TestReadInputNoChange(t *testing.T) {
	c := qt.New(t)
	f := newFixture()
	f.touch.samples = []sample{
		{signal: true, touched: true, x: 3, y: 4},
		{signal: true},
	}
	app := New(DefaultConfig(), f.deps)
	var data ui.InputData
	app.ReadInput(&data)
	app.ReadInput(&data)
	c.Assert(data, qt.Equals, ui.InputData{State: ui.Pressed, Point: ui.Point{X: 3, Y: 4}})
}

type recordFeedback []ui.EventCode

func (r *recordFeedback) Feedback(code ui.EventCode) {
	*r = append(*r, code)
}

func TestFeedback(t *testing.T) {
	c := qt.New(t)
	f := newFixture()
	app := New(DefaultConfig(), f.deps)
	app.Feedback(ui.EventClicked) // no handler: ignored

	var rec recordFeedback
	f.deps.Feedback = &rec
	app = New(DefaultConfig(), f.deps)
	app.Feedback(ui.EventPressed)
	app.Feedback(ui.EventClicked)
	c.Assert([]ui.EventCode(rec), qt.DeepEquals, []ui.EventCode{ui.EventPressed, ui.EventClicked})
}

func TestBrightnessDuty(t *testing.T) {
	c := qt.New(t)
	c.Assert(BrightnessDuty(0, 4095), qt.Equals, uint32(0))
	c.Assert(BrightnessDuty(255, 4095), qt.Equals, uint32(4095))
	c.Assert(BrightnessDuty(250, 4095), qt.Equals, uint32(4015))
	c.Assert(BrightnessDuty(128, 255), qt.Equals, uint32(128))
	c.Assert(BrightnessDuty(255, 1<<14-1), qt.Equals, uint32(1<<14-1))

	prev := uint32(0)
	for level := 0; level <= 255; level++ {
		duty := BrightnessDuty(uint8(level), 4095)
		if duty < prev {
			t.Fatalf("duty for %d is %d, less than %d", level, duty, prev)
		}
		prev = duty
	}
}

func TestSetBrightness(t *testing.T) {
	c := qt.New(t)
	f := newFixture()
	f.backlight.max = 4095
	app := New(DefaultConfig(), f.deps)
	app.SetBrightness(0)
	c.Assert(f.backlight.duty, qt.Equals, uint32(0))
	app.SetBrightness(255)
	c.Assert(f.backlight.duty, qt.Equals, uint32(4095))
}

func TestLoop(t *testing.T) {
	c := qt.New(t)
	f := newFixture()
	app := New(DefaultConfig(), f.deps)
	c.Assert(app.Setup(), qt.IsNil)

	now := time.Unix(0, 0)
	step := time.Millisecond
	app.now = func() time.Time {
		now = now.Add(step)
		return now
	}
	var slept []time.Duration
	app.sleep = func(d time.Duration) { slept = append(slept, d) }

	app.Loop()
	app.Loop()
	step = 25 * time.Millisecond
	app.Loop()

	c.Assert(f.toolkit.ticks, qt.Equals, 3)
	c.Assert(slept, qt.DeepEquals, []time.Duration{5 * time.Millisecond, 5 * time.Millisecond, 5 * time.Millisecond})
	c.Assert(app.Stats(), qt.Equals, Stats{Ticks: 3, Overruns: 1, LastTick: 25 * time.Millisecond})
	c.Assert(f.logs.String(), qt.Contains, "D (")
}

func TestRun(t *testing.T) {
	c := qt.New(t)
	f := newFixture()
	app := New(DefaultConfig(), f.deps)
	c.Assert(app.Setup(), qt.IsNil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := app.Run(ctx)
	c.Assert(err, qt.Equals, context.Canceled)
	c.Assert(f.toolkit.ticks, qt.Equals, 1)
}
