package ui

// InputState is the state of a pointer.
type InputState uint8

const (
	Released InputState = iota
	Pressed
)

func (s InputState) String() string {
	if s == Pressed {
		return "pressed"
	}
	return "released"
}

// InputType is the kind of input device.
type InputType uint8

const (
	InputPointer InputType = iota + 1 // touch screen or mouse
)

// InputData is filled in by an InputReader. The same value is passed on
// every read, so fields that are not written keep their previous value.
type InputData struct {
	State InputState
	Point Point
}

// InputReader polls the current state of an input device. It is called once
// per tick and must not block.
type InputReader interface {
	ReadInput(data *InputData)
}

// Feedbacker is notified of every event that an input device caused, for
// example to give haptic or audible feedback.
type Feedbacker interface {
	Feedback(code EventCode)
}

// InputConfig is the configuration passed to RegisterInput.
type InputConfig struct {
	Type     InputType
	Read     InputReader
	Feedback Feedbacker // optional
}

// InputDevice is a registered input device.
type InputDevice struct {
	tk       *Toolkit
	typ      InputType
	reader   InputReader
	feedback Feedbacker

	data    InputData
	pressed bool
	target  Object
	lost    bool
	reads   int
}

// RegisterInput adds an input device. It acts on the default display.
func (tk *Toolkit) RegisterInput(config InputConfig) (*InputDevice, error) {
	if !tk.initialized {
		return nil, ErrNotInitialized
	}
	if config.Read == nil {
		return nil, ErrNoReader
	}
	if config.Type == 0 {
		config.Type = InputPointer
	}
	in := &InputDevice{
		tk:       tk,
		typ:      config.Type,
		reader:   config.Read,
		feedback: config.Feedback,
	}
	tk.inputs = append(tk.inputs, in)
	return in, nil
}

// Type returns the input device type.
func (in *InputDevice) Type() InputType {
	return in.typ
}

// Data returns the last read state.
func (in *InputDevice) Data() InputData {
	return in.data
}

// Reads returns how often the device was read.
func (in *InputDevice) Reads() int {
	return in.reads
}

// Poll the reader once and turn state changes into events on the active
// screen of the default display.
func (in *InputDevice) read() {
	in.reads++
	in.reader.ReadInput(&in.data)

	var screen *Screen
	if d := in.tk.DefaultDisplay(); d != nil {
		screen = d.screen
	}
	p := in.data.Point
	switch {
	case in.data.State == Pressed && !in.pressed:
		in.pressed = true
		in.lost = false
		in.target = nil
		if screen != nil {
			in.target = screen.hit(p)
		}
		in.send(EventPressed, p)
	case in.data.State == Pressed:
		if in.target == nil || in.lost {
			return
		}
		if _, drag := in.target.(*Slider); !drag && !in.target.base().area.Contains(p) {
			in.lost = true
			in.send(EventPressLost, p)
			return
		}
		in.send(EventPressing, p)
	case in.pressed:
		in.pressed = false
		if in.target == nil || in.lost {
			in.target = nil
			return
		}
		in.send(EventReleased, p)
		if in.target.base().area.Contains(p) {
			in.send(EventClicked, p)
		}
		in.target = nil
	}
}

func (in *InputDevice) send(code EventCode, p Point) {
	if in.target == nil {
		return
	}
	e := &Event{Code: code, Target: in.target, Point: p}
	in.target.handle(e)
	emit(in.target, e)
	if in.feedback != nil && code != EventPressing {
		in.feedback.Feedback(code)
	}
}
