package ui

import (
	"image/color"

	"github.com/aykevl/tinygl/pixel"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Canvas is the part of the draw buffer that is currently being rendered. All
// coordinates are absolute screen coordinates; anything outside the canvas
// area is clipped.
//
// Canvas implements drivers.Displayer so that tinyfont (and other drawing
// libraries) can draw on it directly.
type Canvas struct {
	area   Area
	buf    []pixel.RGB565BE
	width  int16 // screen size
	height int16
}

var _ drivers.Displayer = (*Canvas)(nil)

// Area returns the area this canvas covers.
func (c *Canvas) Area() Area {
	return c.area
}

// Size returns the screen size.
func (c *Canvas) Size() (x, y int16) {
	return c.width, c.height
}

// SetPixel implements drivers.Displayer.
func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	c.Set(x, y, RGB(col))
}

// Display implements drivers.Displayer. It is a no-op: the toolkit flushes
// the canvas when it is complete.
func (c *Canvas) Display() error {
	return nil
}

// Set sets a single pixel.
func (c *Canvas) Set(x, y int16, col pixel.RGB565BE) {
	if !c.area.Contains(Point{x, y}) {
		return
	}
	c.buf[int(y-c.area.Y1)*int(c.area.Width())+int(x-c.area.X1)] = col
}

// Get returns the pixel at x, y, or 0 when outside the canvas.
func (c *Canvas) Get(x, y int16) pixel.RGB565BE {
	if !c.area.Contains(Point{x, y}) {
		return 0
	}
	return c.buf[int(y-c.area.Y1)*int(c.area.Width())+int(x-c.area.X1)]
}

// FillRect fills the part of a that overlaps with the canvas.
func (c *Canvas) FillRect(a Area, col pixel.RGB565BE) {
	a = a.Intersect(c.area)
	if a.Empty() {
		return
	}
	stride := int(c.area.Width())
	for y := a.Y1; y <= a.Y2; y++ {
		row := int(y-c.area.Y1) * stride
		line := c.buf[row+int(a.X1-c.area.X1) : row+int(a.X2-c.area.X1)+1]
		for i := range line {
			line[i] = col
		}
	}
}

// Border draws a border of the given width on the inside of a.
func (c *Canvas) Border(a Area, width int16, col pixel.RGB565BE) {
	if width <= 0 {
		return
	}
	c.FillRect(Area{a.X1, a.Y1, a.X2, a.Y1 + width - 1}, col)
	c.FillRect(Area{a.X1, a.Y2 - width + 1, a.X2, a.Y2}, col)
	c.FillRect(Area{a.X1, a.Y1, a.X1 + width - 1, a.Y2}, col)
	c.FillRect(Area{a.X2 - width + 1, a.Y1, a.X2, a.Y2}, col)
}

// Text draws a single line of text with its top-left corner at x, y.
func (c *Canvas) Text(font tinyfont.Fonter, x, y int16, text string, col color.RGBA) {
	if y > c.area.Y2 || y+lineHeight(font) <= c.area.Y1 {
		return
	}
	tinyfont.WriteLine(c, font, x, y+ascent(font), text, col)
}

// RGB converts a color to the pixel format of the draw buffer.
func RGB(col color.RGBA) pixel.RGB565BE {
	return pixel.NewColor[pixel.RGB565BE](col.R, col.G, col.B)
}

// TextSize returns the size of a line of text in pixels.
func TextSize(font tinyfont.Fonter, text string) (width, height int16) {
	_, outer := tinyfont.LineWidth(font, text)
	return int16(outer), lineHeight(font)
}

func lineHeight(font tinyfont.Fonter) int16 {
	return int16(font.GetYAdvance())
}

// Distance between the top of a line and the baseline.
func ascent(font tinyfont.Fonter) int16 {
	return lineHeight(font) * 3 / 4
}
