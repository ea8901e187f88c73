package ui

import (
	"github.com/aykevl/tinygl/pixel"
)

// Maximum number of separate invalidated areas. When more are needed the
// whole screen is redrawn instead.
const maxInvalidAreas = 32

// Flusher writes a rendered area to the physical display.
//
// The pixels are in row-major order and there are exactly area.Size() of
// them. The buffer is only borrowed: it is reused for the next area as soon
// as done.Ready() is called, which must happen exactly once per Flush call.
// Until then the display doesn't render anything else.
type Flusher interface {
	Flush(area Area, pixels []pixel.RGB565BE, done *FlushDone)
}

// FlushDone is the acknowledgment handle passed to Flusher.Flush.
type FlushDone struct {
	pending bool
}

// Ready signals that the flushed pixels were written and the draw buffer may
// be reused.
func (f *FlushDone) Ready() {
	f.pending = false
}

// Pending returns whether a flush is still waiting for Ready.
func (f *FlushDone) Pending() bool {
	return f.pending
}

// DrawBuffer is the memory the toolkit renders into before flushing.
type DrawBuffer struct {
	pixels []pixel.RGB565BE
}

// NewDrawBuffer allocates a draw buffer of the given number of pixels. A
// buffer holding a number of full display lines works best.
func NewDrawBuffer(size int) (*DrawBuffer, error) {
	if size <= 0 {
		return nil, ErrNoBuffer
	}
	return &DrawBuffer{pixels: make([]pixel.RGB565BE, size)}, nil
}

// Len returns the buffer size in pixels.
func (b *DrawBuffer) Len() int {
	return len(b.pixels)
}

// DisplayConfig is the configuration passed to RegisterDisplay.
type DisplayConfig struct {
	Width  int16
	Height int16
	Buffer *DrawBuffer
	Flush  Flusher
}

// Display is a registered display.
type Display struct {
	tk     *Toolkit
	width  int16
	height int16
	buf    []pixel.RGB565BE
	flush  Flusher
	done   FlushDone
	screen *Screen

	invalid []Area
	current Area // area being flushed, in chunks
	cursor  int16
	busy    bool

	flushCount int
}

// RegisterDisplay adds a display. The first registered display is the
// default display that input devices act on.
func (tk *Toolkit) RegisterDisplay(config DisplayConfig) (*Display, error) {
	if !tk.initialized {
		return nil, ErrNotInitialized
	}
	if config.Width <= 0 || config.Height <= 0 {
		return nil, ErrGeometry
	}
	if config.Buffer == nil {
		return nil, ErrNoBuffer
	}
	if config.Buffer.Len() < int(config.Width) {
		return nil, ErrBufferTooSmall
	}
	if config.Flush == nil {
		return nil, ErrNoFlush
	}
	d := &Display{
		tk:      tk,
		width:   config.Width,
		height:  config.Height,
		buf:     config.Buffer.pixels,
		flush:   config.Flush,
		invalid: make([]Area, 0, maxInvalidAreas),
	}
	tk.displays = append(tk.displays, d)
	d.LoadScreen(NewScreen(DefaultTheme))
	return d, nil
}

// Size returns the display size in pixels.
func (d *Display) Size() (width, height int16) {
	return d.width, d.height
}

// Area returns the full display area.
func (d *Display) Area() Area {
	return Rect(0, 0, d.width, d.height)
}

// Toolkit returns the toolkit this display belongs to.
func (d *Display) Toolkit() *Toolkit {
	return d.tk
}

// ActiveScreen returns the currently shown screen.
func (d *Display) ActiveScreen() *Screen {
	return d.screen
}

// LoadScreen makes the screen the active one and redraws everything.
func (d *Display) LoadScreen(s *Screen) {
	if d.screen != nil {
		d.screen.disp = nil
	}
	s.disp = d
	s.area = d.Area()
	d.screen = s
	d.Invalidate(d.Area())
}

// FlushCount returns the number of Flush calls so far.
func (d *Display) FlushCount() int {
	return d.flushCount
}

// Flushing returns whether the display waits for a flush acknowledgment.
func (d *Display) Flushing() bool {
	return d.done.pending
}

// Dirty returns whether there is anything left to redraw.
func (d *Display) Dirty() bool {
	return d.busy || len(d.invalid) != 0
}

// Invalidate marks an area for redrawing on the next tick.
func (d *Display) Invalidate(a Area) {
	a = a.Intersect(d.Area())
	if a.Empty() {
		return
	}
	for i := 0; i < len(d.invalid); i++ {
		cur := d.invalid[i]
		if a.In(cur) {
			return
		}
		// Merge when the union isn't larger than both areas drawn separately.
		union := a.Union(cur)
		if union.Size() <= a.Size()+cur.Size() {
			d.invalid = append(d.invalid[:i], d.invalid[i+1:]...)
			a = union
			i = -1
		}
	}
	if len(d.invalid) == maxInvalidAreas {
		d.invalid = append(d.invalid[:0], d.Area())
		return
	}
	d.invalid = append(d.invalid, a)
}

// Refresh redraws all invalidated areas immediately instead of waiting for
// the next tick.
func (d *Display) Refresh() {
	d.refresh()
}

// Render and flush invalidated areas, one buffer-sized chunk at a time. When
// the flusher doesn't acknowledge synchronously, rendering stops until it
// does.
func (d *Display) refresh() {
	for {
		if d.done.pending {
			return
		}
		if !d.busy {
			if len(d.invalid) == 0 {
				return
			}
			d.current = d.invalid[0]
			d.invalid = append(d.invalid[:0], d.invalid[1:]...)
			d.cursor = d.current.Y1
			d.busy = true
		}

		width := d.current.Width()
		// Computed as int: a large buffer and a narrow area don't fit int16.
		rows := len(d.buf) / int(width)
		if left := int(d.current.Y2-d.cursor) + 1; rows > left {
			rows = left
		}
		chunk := d.current
		chunk.Y1 = d.cursor
		chunk.Y2 = d.cursor + int16(rows) - 1
		pixels := d.buf[:chunk.Size()]

		canvas := Canvas{
			area:   chunk,
			buf:    pixels,
			width:  d.width,
			height: d.height,
		}
		if d.screen != nil {
			d.screen.draw(&canvas)
		}

		d.cursor = chunk.Y2 + 1
		if d.cursor > d.current.Y2 {
			d.busy = false
		}
		d.done.pending = true
		d.flushCount++
		d.flush.Flush(chunk, pixels, &d.done)
	}
}
