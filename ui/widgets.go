package ui

import (
	"image/color"
)

// Label is a single line of text.
type Label struct {
	Base
	text  string
	color *color.RGBA // nil: theme text color
}

// NewLabel adds a label to the screen. Its size follows the text.
func NewLabel(s *Screen, x, y int16, text string) *Label {
	l := &Label{text: text}
	w, h := TextSize(s.theme.Font, text)
	s.add(l, Rect(x, y, w, h))
	return l
}

// Text returns the label text.
func (l *Label) Text() string {
	return l.text
}

// SetText changes the text and resizes the label to fit.
func (l *Label) SetText(text string) {
	if text == l.text {
		return
	}
	l.Invalidate()
	l.text = text
	w, h := TextSize(l.theme().Font, text)
	l.area = Rect(l.area.X1, l.area.Y1, w, h)
	l.Invalidate()
}

// SetColor overrides the theme text color.
func (l *Label) SetColor(col color.RGBA) {
	l.color = &col
	l.Invalidate()
}

func (l *Label) draw(c *Canvas) {
	col := l.theme().Text
	if l.color != nil {
		col = *l.color
	}
	c.Text(l.theme().Font, l.area.X1, l.area.Y1, l.text, col)
}

func (l *Label) handle(e *Event) {}

// Button is a clickable rectangle with a centered text.
type Button struct {
	Base
	text    string
	pressed bool
}

// NewButton adds a button to the screen.
func NewButton(s *Screen, area Area, text string) *Button {
	b := &Button{text: text}
	b.clickable = true
	s.add(b, area)
	return b
}

// Text returns the button text.
func (b *Button) Text() string {
	return b.text
}

// SetText changes the button text.
func (b *Button) SetText(text string) {
	b.text = text
	b.Invalidate()
}

// Pressed returns whether the button is currently held down.
func (b *Button) Pressed() bool {
	return b.pressed
}

func (b *Button) draw(c *Canvas) {
	t := b.theme()
	bg := t.Primary
	if b.pressed {
		bg = t.Pressed
	}
	c.FillRect(b.area, RGB(bg))
	w, h := TextSize(t.Font, b.text)
	x := b.area.X1 + (b.area.Width()-w)/2
	y := b.area.Y1 + (b.area.Height()-h)/2
	c.Text(t.Font, x, y, b.text, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
}

func (b *Button) handle(e *Event) {
	switch e.Code {
	case EventPressed:
		b.pressed = true
		b.Invalidate()
	case EventReleased, EventPressLost:
		b.pressed = false
		b.Invalidate()
	}
}

// Slider lets the user pick a value in a range by dragging.
type Slider struct {
	Base
	min, max int32
	value    int32
}

// NewSlider adds a horizontal slider to the screen.
func NewSlider(s *Screen, area Area, min, max int32) *Slider {
	sl := &Slider{min: min, max: max, value: min}
	sl.clickable = true
	s.add(sl, area)
	return sl
}

// Value returns the current value.
func (s *Slider) Value() int32 {
	return s.value
}

// SetValue changes the value, clamped to the slider range. It doesn't send
// EventValueChanged.
func (s *Slider) SetValue(v int32) {
	v = clamp32(v, s.min, s.max)
	if v != s.value {
		s.value = v
		s.Invalidate()
	}
}

// Position of the knob center for the current value.
func (s *Slider) knobX() int16 {
	span := int32(s.area.Width() - 1)
	if s.max == s.min {
		return s.area.X1
	}
	return s.area.X1 + int16((s.value-s.min)*span/(s.max-s.min))
}

func (s *Slider) draw(c *Canvas) {
	t := s.theme()
	mid := s.area.Y1 + s.area.Height()/2
	track := Area{s.area.X1, mid - 2, s.area.X2, mid + 2}
	c.FillRect(track, RGB(t.Border))
	x := s.knobX()
	c.FillRect(Area{s.area.X1, mid - 2, x, mid + 2}, RGB(t.Primary))
	c.FillRect(Area{x - 4, s.area.Y1, x + 4, s.area.Y2}, RGB(t.Pressed))
}

func (s *Slider) handle(e *Event) {
	switch e.Code {
	case EventPressed, EventPressing:
		span := int32(s.area.Width() - 1)
		if span <= 0 {
			return
		}
		offset := int32(e.Point.X - s.area.X1)
		v := s.min + (offset*(s.max-s.min)+span/2)/span
		v = clamp32(v, s.min, s.max)
		if v != s.value {
			s.value = v
			s.Invalidate()
			emit(s, &Event{Code: EventValueChanged, Target: s, Point: e.Point})
		}
	}
}

// Switch is an on/off toggle.
type Switch struct {
	Base
	on bool
}

// NewSwitch adds a switch to the screen.
func NewSwitch(s *Screen, area Area) *Switch {
	sw := &Switch{}
	sw.clickable = true
	s.add(sw, area)
	return sw
}

// On returns the switch state.
func (s *Switch) On() bool {
	return s.on
}

// SetOn changes the state without sending EventValueChanged.
func (s *Switch) SetOn(on bool) {
	if on != s.on {
		s.on = on
		s.Invalidate()
	}
}

func (s *Switch) draw(c *Canvas) {
	t := s.theme()
	bg := t.Border
	if s.on {
		bg = t.Primary
	}
	c.FillRect(s.area, RGB(bg))
	knob := s.area.Height() - 4
	x := s.area.X1 + 2
	if s.on {
		x = s.area.X2 - 1 - knob
	}
	c.FillRect(Rect(x, s.area.Y1+2, knob, knob), RGB(t.Surface))
}

func (s *Switch) handle(e *Event) {
	if e.Code == EventClicked {
		s.on = !s.on
		s.Invalidate()
		emit(s, &Event{Code: EventValueChanged, Target: s, Point: e.Point})
	}
}

// Checkbox is a box with a text that can be checked and unchecked.
type Checkbox struct {
	Base
	text    string
	checked bool
}

// NewCheckbox adds a checkbox to the screen. Its size follows the text.
func NewCheckbox(s *Screen, x, y int16, text string) *Checkbox {
	cb := &Checkbox{text: text}
	cb.clickable = true
	w, h := TextSize(s.theme.Font, text)
	if h < 16 {
		h = 16
	}
	s.add(cb, Rect(x, y, h+6+w, h))
	return cb
}

// Checked returns the checkbox state.
func (cb *Checkbox) Checked() bool {
	return cb.checked
}

// SetChecked changes the state without sending EventValueChanged.
func (cb *Checkbox) SetChecked(checked bool) {
	if checked != cb.checked {
		cb.checked = checked
		cb.Invalidate()
	}
}

func (cb *Checkbox) draw(c *Canvas) {
	t := cb.theme()
	size := cb.area.Height()
	box := Rect(cb.area.X1, cb.area.Y1, size, size)
	c.FillRect(box, RGB(t.Surface))
	c.Border(box, 2, RGB(t.Primary))
	if cb.checked {
		c.FillRect(Rect(box.X1+4, box.Y1+4, size-8, size-8), RGB(t.Primary))
	}
	_, h := TextSize(t.Font, cb.text)
	c.Text(t.Font, box.X2+6, cb.area.Y1+(size-h)/2, cb.text, t.Text)
}

func (cb *Checkbox) handle(e *Event) {
	if e.Code == EventClicked {
		cb.checked = !cb.checked
		cb.Invalidate()
		emit(cb, &Event{Code: EventValueChanged, Target: cb, Point: e.Point})
	}
}

// Bar shows a value in a range, for example progress.
type Bar struct {
	Base
	min, max int32
	value    int32
}

// NewBar adds a horizontal bar to the screen.
func NewBar(s *Screen, area Area, min, max int32) *Bar {
	b := &Bar{min: min, max: max, value: min}
	s.add(b, area)
	return b
}

// Value returns the current value.
func (b *Bar) Value() int32 {
	return b.value
}

// SetValue changes the value, clamped to the bar range.
func (b *Bar) SetValue(v int32) {
	v = clamp32(v, b.min, b.max)
	if v != b.value {
		b.value = v
		b.Invalidate()
	}
}

func (b *Bar) draw(c *Canvas) {
	t := b.theme()
	c.FillRect(b.area, RGB(t.Border))
	if b.max == b.min {
		return
	}
	w := int16((b.value - b.min) * int32(b.area.Width()) / (b.max - b.min))
	if w > 0 {
		c.FillRect(Rect(b.area.X1, b.area.Y1, w, b.area.Height()), RGB(t.Primary))
	}
}

func (b *Bar) handle(e *Event) {}

func clamp32(v, min, max int32) int32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
