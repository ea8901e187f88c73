//go:build !baremetal

package board

// The simulator for the JC4827W543 board: a touch screen with a dimmable
// backlight.
//
// The board API doesn't use a mainloop of any kind, which would not be
// necessary anyway on embedded systems. But it is necessary on OSes, so to work
// around this the simulator is actually run in a separate process by starting
// the current process again and communicating over pipes (stdin/stdout in the
// simulator process).
//
// Commands are single text lines, split into words like a shell would (so the
// title can contain spaces when quoted). Some are followed by binary data:
//
//	display <width> <height>
//	display-brightness <duty> <max duty>
//	title <title>
//	draw <x> <y> <width>         followed by width*3 bytes of RGB data
//
// Events sent back are mousedown <x> <y>, mousemove <x> <y> and mouseup.

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/google/shlex"
	"golang.org/x/image/draw"
)

const runWindowCommand = "run-simulator-window"

func init() {
	if len(os.Args) >= 2 && os.Args[1] == runWindowCommand {
		// This is the simulator process.
		// Run the entire window in an init function, because that's the only
		// way to do this with the API that is exposed by the board package.
		windowMain()
		os.Exit(0)
	}
}

// State of the simulated display, owned by the window process.
type windowState struct {
	lock          sync.Mutex
	image         *image.RGBA
	brightness    uint32
	maxBrightness uint32
}

var (
	offColor   = color.RGBA{R: 96, G: 96, B: 96, A: 255}
	bezelColor = color.RGBA{R: 192, G: 192, B: 192, A: 255}
)

func newWindowState(width, height int) *windowState {
	return &windowState{
		image:         image.NewRGBA(image.Rect(0, 0, width, height)),
		maxBrightness: 1,
	}
}

// Render the display, scaled to the given size and dimmed by the backlight
// brightness.
func (s *windowState) render(w, h int) image.Image {
	s.lock.Lock()
	defer s.lock.Unlock()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Rect, image.NewUniform(bezelColor), image.Pt(0, 0), draw.Src)
	rect := s.image.Bounds()
	scale := h / rect.Dy()
	if sx := w / rect.Dx(); sx < scale {
		scale = sx
	}
	if scale < 1 {
		scale = 1
	}
	width := rect.Dx() * scale
	height := rect.Dy() * scale
	x := (w - width) / 2
	y := (h - height) / 2
	displayRect := image.Rect(x, y, x+width, y+height)
	if s.brightness == 0 {
		// The backlight is off, so indicate this by making the screen gray.
		draw.Draw(img, displayRect, image.NewUniform(offColor), image.Pt(0, 0), draw.Src)
		return img
	}
	draw.NearestNeighbor.Scale(img, displayRect, s.dimmed(), rect, draw.Src, nil)
	return img
}

// Return the display image as it looks with the current backlight level.
func (s *windowState) dimmed() *image.RGBA {
	if s.brightness >= s.maxBrightness {
		return s.image
	}
	out := image.NewRGBA(s.image.Rect)
	for i, v := range s.image.Pix {
		if i%4 == 3 {
			out.Pix[i] = v // alpha
			continue
		}
		out.Pix[i] = uint8(uint32(v) * s.brightness / s.maxBrightness)
	}
	return out
}

// Run a single command, reading its binary data from r if it has any. It
// returns whether the display needs to be redrawn.
func (s *windowState) command(line string, r io.Reader, setTitle func(string), setSize func(w, h int)) (bool, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return false, err
	}
	if len(args) == 0 {
		return false, nil
	}
	switch args[0] {
	case "title":
		if len(args) != 2 {
			return false, fmt.Errorf("bad command: %q", line)
		}
		setTitle(args[1])
		return false, nil
	case "display":
		ints, err := parseInts(args[1:])
		if err != nil || len(ints) != 2 || ints[0] <= 0 || ints[1] <= 0 {
			return false, fmt.Errorf("bad command: %q", line)
		}
		s.lock.Lock()
		s.image = image.NewRGBA(image.Rect(0, 0, ints[0], ints[1]))
		s.lock.Unlock()
		setSize(ints[0], ints[1])
		return true, nil
	case "display-brightness":
		ints, err := parseInts(args[1:])
		if err != nil || len(ints) != 2 || ints[0] < 0 || ints[1] <= 0 {
			return false, fmt.Errorf("bad command: %q", line)
		}
		s.lock.Lock()
		s.brightness = uint32(ints[0])
		s.maxBrightness = uint32(ints[1])
		s.lock.Unlock()
		return true, nil
	case "draw":
		ints, err := parseInts(args[1:])
		if err != nil || len(ints) != 3 || ints[2] < 0 {
			return false, fmt.Errorf("bad command: %q", line)
		}
		startX, startY, width := ints[0], ints[1], ints[2]
		// Read the image data (which is a single line).
		buf := make([]byte, width*3)
		if _, err := io.ReadFull(r, buf); err != nil {
			return false, err
		}
		s.lock.Lock()
		for x := 0; x < width; x++ {
			s.image.SetRGBA(startX+x, startY, color.RGBA{
				R: buf[x*3+0],
				G: buf[x*3+1],
				B: buf[x*3+2],
				A: 255,
			})
		}
		s.lock.Unlock()
		return true, nil
	}
	return false, fmt.Errorf("unknown command: %q", args[0])
}

// The main function for the window process.
func windowMain() {
	state := newWindowState(Simulator.WindowWidth, Simulator.WindowHeight)
	display := &displayWidget{}
	display.Generator = state.render

	// Create a window.
	a := app.New()
	w := a.NewWindow("Simulator")
	w.SetPadded(false)
	w.SetFixedSize(true)
	w.SetContent(fyne.NewContainerWithLayout(layout.NewVBoxLayout(), display))

	// Listen for events from the parent process (which includes display data).
	go windowReceiveEvents(w, state, display)

	// Show the window.
	w.ShowAndRun()
}

// Goroutine that listens for commands from the parent process.
func windowReceiveEvents(w fyne.Window, state *windowState, display *displayWidget) {
	r := bufio.NewReader(os.Stdin)
	setSize := func(width, height int) {
		display.SetMinSize(fyne.NewSize(float32(width), float32(height)))
	}
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			// The parent process exited.
			os.Exit(0)
		}
		refresh, err := state.command(line, r, w.SetTitle, setSize)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		if refresh {
			display.Refresh()
		}
	}
}

var _ desktop.Mouseable = (*displayWidget)(nil)
var _ fyne.Draggable = (*displayWidget)(nil)

// Wrapper for canvas.Render that sends mouse events to the parent process.
type displayWidget struct {
	canvas.Raster
}

func (r *displayWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(&r.Raster)
}

func (r *displayWidget) MouseDown(event *desktop.MouseEvent) {
	if event.Button == desktop.MouseButtonPrimary {
		fmt.Printf("mousedown %d %d\n", int(event.Position.X), int(event.Position.Y))
	}
}

func (r *displayWidget) MouseUp(event *desktop.MouseEvent) {
	if event.Button == desktop.MouseButtonPrimary {
		fmt.Printf("mouseup\n")
	}
}

func (r *displayWidget) Dragged(event *fyne.DragEvent) {
	fmt.Printf("mousemove %d %d\n", int(event.PointEvent.Position.X), int(event.PointEvent.Position.Y))
}

func (r *displayWidget) DragEnd() {
	// handled in MouseUp
}
