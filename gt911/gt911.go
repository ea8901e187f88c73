// Package gt911 implements a driver for the Goodix GT911 capacitive touch
// controller. Only the first touch point is used.
package gt911

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/touch"
)

// I2C addresses. The address is selected by the level of the INT pin during
// reset.
const (
	Address    = 0x5D
	AddressAlt = 0x14
)

// Registers (16-bit, big endian).
const (
	regProductID = 0x8140
	regStatus    = 0x814E
	regPoint1    = 0x814F

	statusBufferReady = 0x80
	statusPointsMask  = 0x0F
)

var ErrUnknownProduct = errors.New("gt911: unexpected product ID")

// Pin is an output pin, for example machine.Pin.
type Pin interface {
	High()
	Low()
}

// Config is the controller configuration. The native size is the coordinate
// space the controller firmware reports in, which usually matches the panel.
type Config struct {
	Address      uint16
	Reset        Pin // optional
	NativeWidth  int16
	NativeHeight int16
}

// Device is a GT911 touch controller.
type Device struct {
	bus     drivers.I2C
	address uint16
	reset   Pin

	nativeWidth  int16
	nativeHeight int16
	width        int16
	height       int16
	rotation     drivers.Rotation

	signal  bool
	pressed bool
	lastX   int16
	lastY   int16

	buf [8]byte
}

// New returns a new GT911 driver. It doesn't communicate with the device
// until Configure or one of the read methods is called.
func New(bus drivers.I2C, config Config) *Device {
	if config.Address == 0 {
		config.Address = Address
	}
	if config.NativeWidth == 0 {
		config.NativeWidth = 480
	}
	if config.NativeHeight == 0 {
		config.NativeHeight = 272
	}
	return &Device{
		bus:          bus,
		address:      config.Address,
		reset:        config.Reset,
		nativeWidth:  config.NativeWidth,
		nativeHeight: config.NativeHeight,
		width:        config.NativeWidth,
		height:       config.NativeHeight,
		signal:       true,
	}
}

// Configure sets the logical coordinate space so that touch coordinates
// match the rendered image on a display with the given size and rotation.
func (d *Device) Configure(width, height int16, rotation drivers.Rotation) {
	if d.reset != nil {
		d.reset.Low()
		time.Sleep(10 * time.Millisecond)
		d.reset.High()
		time.Sleep(50 * time.Millisecond)
	}
	d.width = width
	d.height = height
	d.rotation = rotation % 4
	d.pressed = false
}

// ProductID reads the 4-character product ID ("911" on a GT911).
func (d *Device) ProductID() (string, error) {
	id := d.buf[:4]
	if err := d.readRegister(regProductID, id); err != nil {
		return "", err
	}
	n := 0
	for n < len(id) && id[n] != 0 {
		n++
	}
	return string(id[:n]), nil
}

// Probe checks that a GT911 is present on the bus.
func (d *Device) Probe() error {
	id, err := d.ProductID()
	if err != nil {
		return err
	}
	if id != "911" {
		return ErrUnknownProduct
	}
	return nil
}

// HasSignal returns whether the controller answered the last transaction.
func (d *Device) HasSignal() bool {
	return d.signal
}

// Touched reads the controller and returns whether a finger is on the screen.
// When it returns true, LastPoint returns the new coordinates.
func (d *Device) Touched() bool {
	d.read()
	return d.pressed
}

// Released returns whether the last read reported no touch.
func (d *Device) Released() bool {
	return !d.pressed
}

// LastPoint returns the last known touch coordinates in the logical space.
func (d *Device) LastPoint() (x, y int16) {
	return d.lastX, d.lastY
}

// ReadTouchPoint implements touch.Pointer. Z is non-zero while touched.
func (d *Device) ReadTouchPoint() touch.Point {
	if !d.Touched() {
		return touch.Point{}
	}
	return touch.Point{X: int(d.lastX), Y: int(d.lastY), Z: 1}
}

func (d *Device) read() {
	status := d.buf[:1]
	if err := d.readRegister(regStatus, status); err != nil {
		d.signal = false
		d.pressed = false
		return
	}
	d.signal = true
	if status[0]&statusBufferReady == 0 {
		// No new data yet: keep the previous state.
		return
	}
	points := status[0] & statusPointsMask
	if points == 0 {
		d.pressed = false
	} else {
		data := d.buf[:8]
		if err := d.readRegister(regPoint1, data); err != nil {
			d.signal = false
			d.pressed = false
			return
		}
		rawX := int16(uint16(data[1]) | uint16(data[2])<<8)
		rawY := int16(uint16(data[3]) | uint16(data[4])<<8)
		d.lastX, d.lastY = d.mapPoint(rawX, rawY)
		d.pressed = true
	}
	// Acknowledge the data so the controller can report the next sample.
	if err := d.writeRegister(regStatus, 0); err != nil {
		d.signal = false
	}
}

// Map raw controller coordinates to the logical (rotated and scaled)
// coordinate space.
func (d *Device) mapPoint(rawX, rawY int16) (x, y int16) {
	w, h := d.nativeWidth, d.nativeHeight
	switch d.rotation {
	case drivers.Rotation90:
		x, y = h-1-rawY, rawX
		w, h = h, w
	case drivers.Rotation180:
		x, y = w-1-rawX, h-1-rawY
	case drivers.Rotation270:
		x, y = rawY, w-1-rawX
		w, h = h, w
	default:
		x, y = rawX, rawY
	}
	x = scale(x, w, d.width)
	y = scale(y, h, d.height)
	return x, y
}

// Scale a coordinate in [0, from) to [0, to), clamping out of range values.
func scale(v, from, to int16) int16 {
	if from != to && from > 0 {
		v = int16(int32(v) * int32(to) / int32(from))
	}
	if v < 0 {
		v = 0
	}
	if v >= to {
		v = to - 1
	}
	return v
}

func (d *Device) readRegister(reg uint16, buf []byte) error {
	return d.bus.Tx(d.address, []byte{uint8(reg >> 8), uint8(reg)}, buf)
}

func (d *Device) writeRegister(reg uint16, value uint8) error {
	return d.bus.Tx(d.address, []byte{uint8(reg >> 8), uint8(reg), value}, nil)
}
