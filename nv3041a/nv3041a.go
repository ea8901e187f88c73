// Package nv3041a implements a driver for the NV3041A TFT controller as used
// in 480x272 IPS panels, connected over a quad SPI bus.
//
// The controller is written in frames: every command is sent on a single data
// line with the 0x02 opcode, pixel data is streamed over all four data lines
// with the 0x32 opcode. The bus implementation takes care of the framing, this
// package only knows about registers and pixels.
package nv3041a

import (
	"errors"
	"time"

	"github.com/aykevl/tinygl/pixel"
	"tinygo.org/x/drivers"
)

// Bus is a quad SPI bus with the NV3041A framing.
type Bus interface {
	// Begin acquires the bus for a sequence of frames.
	Begin()

	// End releases the bus.
	End()

	// Command sends a register write on a single data line.
	Command(cmd uint8, params ...uint8) error

	// Pixels sends a memory write with data on all four data lines.
	Pixels(cmd uint8, data []byte) error
}

// Pin is an output pin, for example machine.Pin.
type Pin interface {
	High()
	Low()
}

var (
	ErrOutOfBounds = errors.New("nv3041a: address window out of bounds")
	ErrNoResponse  = errors.New("nv3041a: panel did not accept init sequence")
)

// Registers.
const (
	SWRESET = 0x01
	SLPIN   = 0x10
	SLPOUT  = 0x11
	INVOFF  = 0x20
	INVON   = 0x21
	DISPOFF = 0x28
	DISPON  = 0x29
	CASET   = 0x2A
	RASET   = 0x2B
	RAMWR   = 0x2C
	MADCTL  = 0x36
	COLMOD  = 0x3A
	RAMWRC  = 0x3C
	CMDSET  = 0xFF // vendor command set unlock (0xA5) / lock (0x00)

	MADCTL_MY  = 0x80
	MADCTL_MX  = 0x40
	MADCTL_MV  = 0x20
	MADCTL_RGB = 0x00
	MADCTL_BGR = 0x08
)

const (
	// Native resolution of the panel.
	NativeWidth  = 480
	NativeHeight = 272

	// Pixels per quad frame, limited by the scratch buffer.
	chunkPixels = 256
)

// Config is the panel configuration.
type Config struct {
	Width    int16
	Height   int16
	Rotation drivers.Rotation
	IPS      bool // IPS panels need display inversion
	BGR      bool
}

// Device is a NV3041A panel.
type Device struct {
	bus      Bus
	reset    Pin
	width    int16 // native width
	height   int16 // native height
	rotation drivers.Rotation
	ips      bool
	bgr      bool

	depth   int // StartWrite nesting
	window  [4]int16
	winOK   bool
	scratch [chunkPixels * 2]byte

	sleep func(time.Duration)
}

// New returns a new panel driver. The reset pin is optional (nil). No bus
// traffic happens until Begin is called.
func New(bus Bus, reset Pin, config Config) *Device {
	if config.Width == 0 {
		config.Width = NativeWidth
	}
	if config.Height == 0 {
		config.Height = NativeHeight
	}
	return &Device{
		bus:      bus,
		reset:    reset,
		width:    config.Width,
		height:   config.Height,
		rotation: config.Rotation,
		ips:      config.IPS,
		bgr:      config.BGR,
		sleep:    time.Sleep,
	}
}

type initOp struct {
	cmd    uint8
	params []uint8
	delay  time.Duration
}

// Vendor registers (power, timing and gamma) as recommended for the 4.3"
// 480x272 IPS module.
var initSequence = []initOp{
	{cmd: CMDSET, params: []uint8{0xA5}},
	{cmd: COLMOD, params: []uint8{0x01}}, // RGB565
	{cmd: 0x41, params: []uint8{0x03}},   // 16-bit bus width
	{cmd: 0x44, params: []uint8{0x15}},   // VBP
	{cmd: 0x45, params: []uint8{0x15}},   // VFP
	{cmd: 0x7D, params: []uint8{0x03}},
	{cmd: 0xC1, params: []uint8{0xBB}},
	{cmd: 0xC2, params: []uint8{0x05}},
	{cmd: 0xC3, params: []uint8{0x10}},
	{cmd: 0xC6, params: []uint8{0x3E}},
	{cmd: 0xC7, params: []uint8{0x25}},
	{cmd: 0xC8, params: []uint8{0x11}},
	{cmd: 0x7A, params: []uint8{0x5F}},
	{cmd: 0x6F, params: []uint8{0x44}},
	{cmd: 0x78, params: []uint8{0x70}},
	{cmd: 0xC9, params: []uint8{0x00}},
	{cmd: 0x67, params: []uint8{0x21}},
	{cmd: 0x51, params: []uint8{0x0A}},
	{cmd: 0x52, params: []uint8{0x76}},
	{cmd: 0x53, params: []uint8{0x0A}},
	{cmd: 0x54, params: []uint8{0x76}},
	{cmd: 0x46, params: []uint8{0x0A}},
	{cmd: 0x47, params: []uint8{0x2A}},
	{cmd: 0x48, params: []uint8{0x0A}},
	{cmd: 0x49, params: []uint8{0x1A}},
	{cmd: 0x56, params: []uint8{0x43}},
	{cmd: 0x57, params: []uint8{0x42}},
	{cmd: 0x58, params: []uint8{0x3C}},
	{cmd: 0x59, params: []uint8{0x64}},
	{cmd: 0x5A, params: []uint8{0x41}},
	{cmd: 0x5B, params: []uint8{0x3C}},
	{cmd: 0x5C, params: []uint8{0x02}},
	{cmd: 0x5D, params: []uint8{0x3C}},
	{cmd: 0x5E, params: []uint8{0x1F}},
	{cmd: 0x60, params: []uint8{0x80}},
	{cmd: 0x61, params: []uint8{0x3F}},
	{cmd: 0x62, params: []uint8{0x21}},
	{cmd: 0x63, params: []uint8{0x07}},
	{cmd: 0x64, params: []uint8{0xE0}},
	{cmd: 0x65, params: []uint8{0x02}},
	{cmd: CMDSET, params: []uint8{0x00}},
	{cmd: SLPOUT, delay: 120 * time.Millisecond},
	{cmd: DISPON, delay: 20 * time.Millisecond},
}

// Begin resets the panel (if a reset pin is configured), runs the init
// sequence and applies the configured rotation. It returns ErrNoResponse
// wrapping the bus error when any of the commands failed.
func (d *Device) Begin() error {
	if d.reset != nil {
		d.reset.High()
		d.sleep(10 * time.Millisecond)
		d.reset.Low()
		d.sleep(10 * time.Millisecond)
		d.reset.High()
		d.sleep(120 * time.Millisecond)
	}

	d.StartWrite()
	defer d.EndWrite()

	if d.reset == nil {
		// No hardware reset, use the software reset instead.
		if err := d.bus.Command(SWRESET); err != nil {
			return errors.Join(ErrNoResponse, err)
		}
		d.sleep(120 * time.Millisecond)
	}
	for _, op := range initSequence {
		if err := d.bus.Command(op.cmd, op.params...); err != nil {
			return errors.Join(ErrNoResponse, err)
		}
		if op.delay != 0 {
			d.sleep(op.delay)
		}
	}
	inversion := uint8(INVOFF)
	if d.ips {
		inversion = INVON
	}
	if err := d.bus.Command(inversion); err != nil {
		return errors.Join(ErrNoResponse, err)
	}
	if err := d.setMADCTL(); err != nil {
		return errors.Join(ErrNoResponse, err)
	}
	d.winOK = false
	return nil
}

// Size returns the logical size of the panel, taking rotation into account.
func (d *Device) Size() (width, height int16) {
	if d.rotation == drivers.Rotation90 || d.rotation == drivers.Rotation270 {
		return d.height, d.width
	}
	return d.width, d.height
}

// Rotation returns the current rotation.
func (d *Device) Rotation() drivers.Rotation {
	return d.rotation
}

// SetRotation changes the rotation of the panel. It only affects content
// drawn afterwards.
func (d *Device) SetRotation(rotation drivers.Rotation) error {
	d.rotation = rotation % 4
	d.winOK = false
	d.StartWrite()
	defer d.EndWrite()
	return d.setMADCTL()
}

func (d *Device) setMADCTL() error {
	var madctl uint8
	switch d.rotation {
	case drivers.Rotation90:
		madctl = MADCTL_MX | MADCTL_MV
	case drivers.Rotation180:
		madctl = MADCTL_MX | MADCTL_MY
	case drivers.Rotation270:
		madctl = MADCTL_MY | MADCTL_MV
	default:
		madctl = 0
	}
	if d.bgr {
		madctl |= MADCTL_BGR
	}
	return d.bus.Command(MADCTL, madctl)
}

// StartWrite opens a write transaction. Transactions may be nested, the bus
// is only acquired by the outermost one.
func (d *Device) StartWrite() {
	d.depth++
	if d.depth == 1 {
		d.bus.Begin()
	}
}

// EndWrite closes the transaction opened by StartWrite.
func (d *Device) EndWrite() {
	if d.depth == 0 {
		return
	}
	d.depth--
	if d.depth == 0 {
		d.bus.End()
	}
}

// SetAddrWindow sets the area that the next WritePixels call will fill, in
// row-major order. The window is not resent if it didn't change.
func (d *Device) SetAddrWindow(x, y, w, h int16) error {
	width, height := d.Size()
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > width || y+h > height {
		return ErrOutOfBounds
	}
	window := [4]int16{x, y, x + w - 1, y + h - 1}
	if d.winOK && window == d.window {
		return nil
	}

	d.StartWrite()
	defer d.EndWrite()
	if err := d.bus.Command(CASET, uint8(window[0]>>8), uint8(window[0]), uint8(window[2]>>8), uint8(window[2])); err != nil {
		d.winOK = false
		return err
	}
	if err := d.bus.Command(RASET, uint8(window[1]>>8), uint8(window[1]), uint8(window[3]>>8), uint8(window[3])); err != nil {
		d.winOK = false
		return err
	}
	d.window = window
	d.winOK = true
	return nil
}

// WritePixels streams the pixels into the current address window. The first
// frame starts a memory write, the following frames continue it.
func (d *Device) WritePixels(buf []pixel.RGB565BE) error {
	d.StartWrite()
	defer d.EndWrite()

	cmd := uint8(RAMWR)
	for len(buf) > 0 {
		n := len(buf)
		if n > chunkPixels {
			n = chunkPixels
		}
		for i, c := range buf[:n] {
			// RGB565BE already has the big endian byte order in memory.
			d.scratch[i*2+0] = uint8(c)
			d.scratch[i*2+1] = uint8(c >> 8)
		}
		if err := d.bus.Pixels(cmd, d.scratch[:n*2]); err != nil {
			return err
		}
		cmd = RAMWRC
		buf = buf[n:]
	}
	return nil
}

// FillScreen fills the entire panel with a single color.
func (d *Device) FillScreen(c pixel.RGB565BE) error {
	width, height := d.Size()
	return d.FillRectangle(0, 0, width, height, c)
}

// FillRectangle fills the given area with a single color.
func (d *Device) FillRectangle(x, y, w, h int16, c pixel.RGB565BE) error {
	d.StartWrite()
	defer d.EndWrite()
	if err := d.SetAddrWindow(x, y, w, h); err != nil {
		return err
	}

	n := int(w) * int(h)
	if n > chunkPixels {
		n = chunkPixels
	}
	for i := 0; i < n; i++ {
		d.scratch[i*2+0] = uint8(c)
		d.scratch[i*2+1] = uint8(c >> 8)
	}
	cmd := uint8(RAMWR)
	for remaining := int(w) * int(h); remaining > 0; {
		n := remaining
		if n > chunkPixels {
			n = chunkPixels
		}
		if err := d.bus.Pixels(cmd, d.scratch[:n*2]); err != nil {
			return err
		}
		cmd = RAMWRC
		remaining -= n
	}
	return nil
}

// Sleep puts the panel in sleep mode, or wakes it up again.
func (d *Device) Sleep(sleepEnabled bool) error {
	d.StartWrite()
	defer d.EndWrite()
	if sleepEnabled {
		if err := d.bus.Command(DISPOFF); err != nil {
			return err
		}
		return d.bus.Command(SLPIN)
	}
	if err := d.bus.Command(SLPOUT); err != nil {
		return err
	}
	d.sleep(120 * time.Millisecond)
	return d.bus.Command(DISPON)
}
