//go:build !baremetal

package board

// The generic board exists for testing locally without running on real
// hardware. This avoids potentially long edit-flash-test cycles.

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/aykevl/tinygl/pixel"
	"github.com/google/shlex"
	"tinygo.org/x/drivers"
)

const (
	// The board name, as passed to TinyGo in the "-target" flag.
	// This is the special name "simulator" for the simulator.
	Name = "simulator"
)

// List of all devices.
//
// Support varies by board, but all boards have the following peripherals
// defined.
var (
	Display   = mainDisplay{}
	Backlight = &simulatedBacklight{}
)

var (
	errOutOfBounds   = errors.New("board: drawing out of bounds")
	errWindowOverrun = errors.New("board: pixel data overflows the address window")
	errResolution    = errors.New("board: unsupported PWM resolution")
)

type mainDisplay struct{}

// The simulated panel. Pixels are sent to the window process line by line.
type fyneScreen struct {
	width  int16
	height int16

	// Address window and the position of the next pixel in it.
	x, y, w, h int16
	col, row   int16
	depth      int
	lineBuf    []byte

	drawStart time.Time
	drawn     int

	touchLock sync.Mutex
	pressed   bool
	touchX    int16
	touchY    int16
}

var screen = &fyneScreen{}

// Configure returns a new display ready to draw on, after calling Begin.
func (d mainDisplay) Configure() Panel {
	startWindow()
	screen.width = int16(Simulator.WindowWidth)
	screen.height = int16(Simulator.WindowHeight)
	return screen
}

// Wait until the next vertical blanking interval (vblank) interrupt is
// received. If the vblank interrupt is not available, it waits until the time
// since the previous call to WaitForVBlank is the default interval instead.
//
// Don't use this method for timing, because vblank varies by hardware. Instead,
// use time.Now() to determine the current time and the amount of time since the
// last screen refresh.
func (d mainDisplay) WaitForVBlank(defaultInterval time.Duration) {
	// The window doesn't have a refresh signal we can use, so just emulate it.
	dummyWaitForVBlank(defaultInterval)
}

// Pixels per inch for this display.
func (d mainDisplay) PPI() int {
	return Simulator.WindowPPI
}

// ConfigureTouch returns the touch input of the display. In the simulator
// this is the mouse.
func (d mainDisplay) ConfigureTouch() TouchInput {
	startWindow()
	return simulatedTouch{}
}

func (s *fyneScreen) Begin() error {
	windowSendCommand(fmt.Sprintf("display %d %d", s.width, s.height), nil)
	return nil
}

func (s *fyneScreen) Size() (width, height int16) {
	return s.width, s.height
}

func (s *fyneScreen) Rotation() drivers.Rotation {
	return drivers.Rotation0
}

func (s *fyneScreen) StartWrite() {
	if s.depth == 0 {
		s.drawStart = time.Now()
		s.drawn = 0
	}
	s.depth++
}

func (s *fyneScreen) EndWrite() {
	if s.depth > 0 {
		s.depth--
	}
}

func (s *fyneScreen) SetAddrWindow(x, y, w, h int16) error {
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > s.width || y+h > s.height {
		return errOutOfBounds
	}
	s.x, s.y, s.w, s.h = x, y, w, h
	s.col, s.row = 0, 0
	return nil
}

func (s *fyneScreen) WritePixels(buf []pixel.RGB565BE) error {
	for len(buf) > 0 {
		if s.row >= s.h {
			return errWindowOverrun
		}
		n := int(s.w - s.col)
		if n > len(buf) {
			n = len(buf)
		}
		line := s.lineBuf[:0]
		for _, c := range buf[:n] {
			r, g, b := rgb565ToRGB(c)
			line = append(line, r, g, b)
		}
		s.lineBuf = line
		s.delay(n)
		windowSendCommand(fmt.Sprintf("draw %d %d %d", s.x+s.col, s.y+s.row, n), line)

		s.col += int16(n)
		if s.col == s.w {
			s.col = 0
			s.row++
		}
		buf = buf[n:]
	}
	return nil
}

func (s *fyneScreen) FillScreen(c pixel.RGB565BE) error {
	s.StartWrite()
	defer s.EndWrite()
	if err := s.SetAddrWindow(0, 0, s.width, s.height); err != nil {
		return err
	}
	line := make([]pixel.RGB565BE, s.width)
	for i := range line {
		line[i] = c
	}
	for y := int16(0); y < s.height; y++ {
		if err := s.WritePixels(line); err != nil {
			return err
		}
	}
	return nil
}

// Delay drawing a bit, to simulate a slow bus.
func (s *fyneScreen) delay(pixels int) {
	if Simulator.WindowDrawSpeed == 0 {
		return
	}
	s.drawn += pixels
	expected := s.drawStart.Add(Simulator.WindowDrawSpeed * time.Duration(s.drawn))
	if delay := time.Until(expected); delay > 0 {
		time.Sleep(delay)
	}
}

// Convert a big endian RGB565 pixel to 8 bits per channel.
func rgb565ToRGB(c pixel.RGB565BE) (r, g, b uint8) {
	v := uint16(uint8(c))<<8 | uint16(uint8(c>>8))
	r5 := uint8(v >> 11)
	g6 := uint8(v>>5) & 0x3f
	b5 := uint8(v) & 0x1f
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// The mouse, acting as a touch screen. The window always has the same size
// as the display, so no coordinate mapping is needed.
type simulatedTouch struct{}

func (t simulatedTouch) Configure(width, height int16, rotation drivers.Rotation) {
}

func (t simulatedTouch) HasSignal() bool {
	return true
}

func (t simulatedTouch) Touched() bool {
	screen.touchLock.Lock()
	defer screen.touchLock.Unlock()
	return screen.pressed
}

func (t simulatedTouch) Released() bool {
	return !t.Touched()
}

func (t simulatedTouch) LastPoint() (x, y int16) {
	screen.touchLock.Lock()
	defer screen.touchLock.Unlock()
	return screen.touchX, screen.touchY
}

// The backlight, shown by dimming the window contents.
type simulatedBacklight struct {
	maxDuty uint32
}

// Configure the backlight PWM. The frequency isn't used in the simulator.
func (b *simulatedBacklight) Configure(frequency uint32, resolution uint8) error {
	if resolution == 0 || resolution > 20 {
		return errResolution
	}
	startWindow()
	b.maxDuty = 1<<resolution - 1
	return nil
}

// MaxDuty returns the duty cycle at full brightness.
func (b *simulatedBacklight) MaxDuty() uint32 {
	return b.maxDuty
}

// Set the duty cycle, 0 ≤ duty ≤ MaxDuty. A value of 0 turns the backlight
// off entirely.
func (b *simulatedBacklight) Set(duty uint32) {
	if duty > b.maxDuty {
		duty = b.maxDuty
	}
	// Send the current and max brightness levels.
	windowSendCommand(fmt.Sprintf("display-brightness %d %d", duty, b.maxDuty), nil)
}

var (
	fyneStart    sync.Once
	windowLock   sync.Mutex
	windowStdin  io.Writer
	windowStdout io.Reader
)

// Ensure the window is running in a separate process, starting it if necessary.
func startWindow() {
	// Create a main loop for Fyne.
	windowRunning := make(chan struct{})
	fyneStart.Do(func() {
		// Start the separate process that manages the window.
		go func() {
			cmd := exec.Command(os.Args[0], runWindowCommand)
			cmd.Stderr = os.Stderr
			windowStdin, _ = cmd.StdinPipe()
			windowStdout, _ = cmd.StdoutPipe()
			err := cmd.Start()
			if err != nil {
				fmt.Fprintln(os.Stdout, "could not start window process:", err)
				os.Exit(1)
			}
			close(windowRunning)
			err = cmd.Wait()
			if err != nil {
				if exitErr, ok := err.(*exec.ExitError); ok {
					os.Exit(exitErr.ExitCode())
				}
				os.Exit(1)
			}
			// The window was closed, so exit.
			os.Exit(0)
		}()
		<-windowRunning

		// Listen for events (touch).
		go windowListenEvents(windowStdout)

		// Do some initialization.
		windowSendCommand("title "+strconv.Quote(Simulator.WindowTitle), nil)
	})
}

// Send a command to the separate process that manages the window.
// The command is a single line (without newline). The data part is optional
// binary data that can be sent with the command. The size of this binary data
// must be part of the textual command.
func windowSendCommand(command string, data []byte) {
	windowLock.Lock()
	defer windowLock.Unlock()

	windowStdin.Write([]byte(command + "\n"))
	windowStdin.Write(data)
}

// Goroutine that listens for window events like mouse presses.
func windowListenEvents(stdout io.Reader) {
	r := bufio.NewReader(stdout)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				fmt.Fprintln(os.Stderr, "failed to read I/O events from child process:", err)
			}
			return
		}
		if err := handleWindowEvent(line); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// Update the touch state from a single event line of the window process.
func handleWindowEvent(line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("board: bad event %q: %w", line, err)
	}
	if len(args) == 0 {
		return nil
	}
	ints, err := parseInts(args[1:])
	if err != nil {
		return fmt.Errorf("board: bad event %q: %w", line, err)
	}
	screen.touchLock.Lock()
	defer screen.touchLock.Unlock()
	switch args[0] {
	case "mousedown", "mousemove":
		if len(ints) != 2 {
			return fmt.Errorf("board: bad event %q", line)
		}
		if args[0] == "mousemove" && !screen.pressed {
			return nil
		}
		screen.pressed = true
		screen.touchX = clampCoord(ints[0], screen.width)
		screen.touchY = clampCoord(ints[1], screen.height)
	case "mouseup":
		// End the current touch, keeping the last point.
		screen.pressed = false
	default:
		return fmt.Errorf("board: unknown event %q", args[0])
	}
	return nil
}

// Dragging may continue outside the window.
func clampCoord(v int, size int16) int16 {
	if v < 0 {
		return 0
	}
	if size > 0 && v >= int(size) {
		return size - 1
	}
	return int16(v)
}

func parseInts(args []string) ([]int, error) {
	ints := make([]int, len(args))
	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, err
		}
		ints[i] = n
	}
	return ints, nil
}
