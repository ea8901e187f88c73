package ui

import (
	"image/color"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// EventCode identifies the kind of event sent to an object.
type EventCode uint8

const (
	EventPressed EventCode = iota + 1
	EventPressing
	EventPressLost
	EventReleased
	EventClicked
	EventValueChanged
)

func (e EventCode) String() string {
	switch e {
	case EventPressed:
		return "pressed"
	case EventPressing:
		return "pressing"
	case EventPressLost:
		return "press-lost"
	case EventReleased:
		return "released"
	case EventClicked:
		return "clicked"
	case EventValueChanged:
		return "value-changed"
	}
	return "unknown"
}

// Event is sent to an object when something happens to it.
type Event struct {
	Code   EventCode
	Target Object
	Point  Point
}

// Object is a widget on a screen.
type Object interface {
	base() *Base
	draw(c *Canvas)
	handle(e *Event)
}

// Theme holds the colors and font used by the widgets on a screen.
type Theme struct {
	Background color.RGBA
	Surface    color.RGBA
	Primary    color.RGBA
	Pressed    color.RGBA
	Border     color.RGBA
	Text       color.RGBA
	TextMuted  color.RGBA
	Font       tinyfont.Fonter
}

var DefaultTheme = &Theme{
	Background: color.RGBA{R: 0xF5, G: 0xF5, B: 0xF5, A: 0xFF},
	Surface:    color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
	Primary:    color.RGBA{R: 0x21, G: 0x96, B: 0xF3, A: 0xFF},
	Pressed:    color.RGBA{R: 0x15, G: 0x65, B: 0xC0, A: 0xFF},
	Border:     color.RGBA{R: 0xBD, G: 0xBD, B: 0xBD, A: 0xFF},
	Text:       color.RGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xFF},
	TextMuted:  color.RGBA{R: 0x75, G: 0x75, B: 0x75, A: 0xFF},
	Font:       &proggy.TinySZ8pt7b,
}

var DarkTheme = &Theme{
	Background: color.RGBA{R: 0x12, G: 0x12, B: 0x12, A: 0xFF},
	Surface:    color.RGBA{R: 0x2C, G: 0x2C, B: 0x2C, A: 0xFF},
	Primary:    color.RGBA{R: 0x21, G: 0x96, B: 0xF3, A: 0xFF},
	Pressed:    color.RGBA{R: 0x64, G: 0xB5, B: 0xF6, A: 0xFF},
	Border:     color.RGBA{R: 0x42, G: 0x42, B: 0x42, A: 0xFF},
	Text:       color.RGBA{R: 0xEE, G: 0xEE, B: 0xEE, A: 0xFF},
	TextMuted:  color.RGBA{R: 0x9E, G: 0x9E, B: 0x9E, A: 0xFF},
	Font:       &proggy.TinySZ8pt7b,
}

type handler struct {
	code EventCode
	fn   func(e *Event)
}

// Base holds the state shared by all widgets.
type Base struct {
	screen    *Screen
	area      Area
	hidden    bool
	clickable bool
	handlers  []handler
}

func (b *Base) base() *Base { return b }

// Area returns the position and size of the object.
func (b *Base) Area() Area {
	return b.area
}

// SetPos moves the object, keeping its size.
func (b *Base) SetPos(x, y int16) {
	b.Invalidate()
	b.area = Rect(x, y, b.area.Width(), b.area.Height())
	b.Invalidate()
}

// SetSize resizes the object, keeping its position.
func (b *Base) SetSize(width, height int16) {
	b.Invalidate()
	b.area = Rect(b.area.X1, b.area.Y1, width, height)
	b.Invalidate()
}

// SetHidden hides or shows the object.
func (b *Base) SetHidden(hidden bool) {
	if b.hidden == hidden {
		return
	}
	b.hidden = hidden
	if b.screen != nil {
		b.screen.invalidate(b.area)
	}
}

// Hidden returns whether the object is hidden.
func (b *Base) Hidden() bool {
	return b.hidden
}

// OnEvent adds an event handler for the given event.
func (b *Base) OnEvent(code EventCode, fn func(e *Event)) {
	b.handlers = append(b.handlers, handler{code, fn})
}

// Invalidate marks the object for redrawing.
func (b *Base) Invalidate() {
	if b.screen != nil && !b.hidden {
		b.screen.invalidate(b.area)
	}
}

func (b *Base) theme() *Theme {
	if b.screen == nil {
		return DefaultTheme
	}
	return b.screen.theme
}

// Send an event to the user handlers of obj.
func emit(obj Object, e *Event) {
	for _, h := range obj.base().handlers {
		if h.code == e.Code {
			h.fn(e)
		}
	}
}

// Screen is the root of a widget tree. Only one screen per display is shown
// at a time.
type Screen struct {
	Base
	theme    *Theme
	disp     *Display
	children []Object
}

// NewScreen returns an empty screen using the given theme.
func NewScreen(theme *Theme) *Screen {
	if theme == nil {
		theme = DefaultTheme
	}
	s := &Screen{theme: theme}
	s.Base.screen = s
	return s
}

// Theme returns the theme of this screen.
func (s *Screen) Theme() *Theme {
	return s.theme
}

// SetTheme changes the theme and redraws the whole screen.
func (s *Screen) SetTheme(theme *Theme) {
	s.theme = theme
	s.invalidate(s.area)
}

// Children returns the objects on this screen, in drawing order.
func (s *Screen) Children() []Object {
	return s.children
}

func (s *Screen) add(obj Object, area Area) {
	b := obj.base()
	b.screen = s
	b.area = area
	s.children = append(s.children, obj)
	s.invalidate(area)
}

func (s *Screen) invalidate(a Area) {
	if s.disp != nil {
		s.disp.Invalidate(a)
	}
}

// Find the topmost visible clickable object at the point.
func (s *Screen) hit(p Point) Object {
	for i := len(s.children) - 1; i >= 0; i-- {
		b := s.children[i].base()
		if !b.hidden && b.clickable && b.area.Contains(p) {
			return s.children[i]
		}
	}
	return nil
}

func (s *Screen) draw(c *Canvas) {
	c.FillRect(c.area, RGB(s.theme.Background))
	for _, child := range s.children {
		b := child.base()
		if b.hidden || !b.area.Overlaps(c.area) {
			continue
		}
		child.draw(c)
	}
}

func (s *Screen) handle(e *Event) {}
