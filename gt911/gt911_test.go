package gt911

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/touch"
)

// fakeBus emulates the register file of a GT911.
type fakeBus struct {
	regs   map[uint16]byte
	fail   bool
	writes []uint16
}

func newFakeBus() *fakeBus {
	b := &fakeBus{regs: map[uint16]byte{}}
	copy4 := []byte("911\x00")
	for i, v := range copy4 {
		b.regs[regProductID+uint16(i)] = v
	}
	return b
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	if b.fail {
		return errors.New("nack")
	}
	if addr != Address {
		return errors.New("wrong address")
	}
	reg := uint16(w[0])<<8 | uint16(w[1])
	for i, v := range w[2:] {
		b.regs[reg+uint16(i)] = v
		b.writes = append(b.writes, reg+uint16(i))
	}
	for i := range r {
		r[i] = b.regs[reg+uint16(i)]
	}
	return nil
}

func (b *fakeBus) ReadRegister(addr uint8, r uint8, buf []byte) error  { return nil }
func (b *fakeBus) WriteRegister(addr uint8, r uint8, buf []byte) error { return nil }

// touchAt makes the controller report one point.
func (b *fakeBus) touchAt(x, y uint16) {
	b.regs[regStatus] = statusBufferReady | 1
	b.regs[regPoint1] = 0 // track ID
	b.regs[regPoint1+1] = uint8(x)
	b.regs[regPoint1+2] = uint8(x >> 8)
	b.regs[regPoint1+3] = uint8(y)
	b.regs[regPoint1+4] = uint8(y >> 8)
}

func (b *fakeBus) release() {
	b.regs[regStatus] = statusBufferReady
}

var _ touch.Pointer = (*Device)(nil)

func TestProbe(t *testing.T) {
	c := qt.New(t)
	bus := newFakeBus()
	d := New(bus, Config{})
	c.Assert(d.Probe(), qt.IsNil)

	bus.regs[regProductID] = '1'
	c.Assert(d.Probe(), qt.Equals, ErrUnknownProduct)

	bus.fail = true
	c.Assert(d.Probe(), qt.ErrorMatches, "nack")
}

func TestTouchSequence(t *testing.T) {
	c := qt.New(t)
	bus := newFakeBus()
	d := New(bus, Config{})
	d.Configure(480, 272, drivers.Rotation0)

	c.Assert(d.HasSignal(), qt.IsTrue)
	c.Assert(d.Released(), qt.IsTrue)

	bus.touchAt(100, 50)
	c.Assert(d.Touched(), qt.IsTrue)
	c.Assert(d.Released(), qt.IsFalse)
	x, y := d.LastPoint()
	c.Assert([2]int16{x, y}, qt.Equals, [2]int16{100, 50})
	// The status register was acknowledged.
	c.Assert(bus.regs[regStatus], qt.Equals, byte(0))

	// No new data: the finger is still down.
	c.Assert(d.Touched(), qt.IsTrue)

	bus.release()
	c.Assert(d.Touched(), qt.IsFalse)
	c.Assert(d.Released(), qt.IsTrue)
	// The last point is kept after release.
	x, y = d.LastPoint()
	c.Assert([2]int16{x, y}, qt.Equals, [2]int16{100, 50})
}

func TestNoSignal(t *testing.T) {
	c := qt.New(t)
	bus := newFakeBus()
	d := New(bus, Config{})
	bus.touchAt(10, 10)
	c.Assert(d.Touched(), qt.IsTrue)

	bus.fail = true
	c.Assert(d.Touched(), qt.IsFalse)
	c.Assert(d.HasSignal(), qt.IsFalse)
	c.Assert(d.Released(), qt.IsTrue)

	bus.fail = false
	bus.touchAt(20, 20)
	c.Assert(d.Touched(), qt.IsTrue)
	c.Assert(d.HasSignal(), qt.IsTrue)
}

func TestRotation(t *testing.T) {
	c := qt.New(t)
	for _, tc := range []struct {
		rotation      drivers.Rotation
		width, height int16
		x, y          int16
	}{
		{drivers.Rotation0, 480, 272, 100, 50},
		{drivers.Rotation90, 272, 480, 271 - 50, 100},
		{drivers.Rotation180, 480, 272, 479 - 100, 271 - 50},
		{drivers.Rotation270, 272, 480, 50, 479 - 100},
	} {
		bus := newFakeBus()
		d := New(bus, Config{})
		d.Configure(tc.width, tc.height, tc.rotation)
		bus.touchAt(100, 50)
		c.Assert(d.Touched(), qt.IsTrue)
		x, y := d.LastPoint()
		c.Assert([2]int16{x, y}, qt.Equals, [2]int16{tc.x, tc.y}, qt.Commentf("rotation %d", tc.rotation))
	}
}

func TestScaleAndClamp(t *testing.T) {
	c := qt.New(t)
	bus := newFakeBus()
	d := New(bus, Config{})
	d.Configure(240, 136, drivers.Rotation0)
	bus.touchAt(100, 50)
	c.Assert(d.Touched(), qt.IsTrue)
	x, y := d.LastPoint()
	c.Assert([2]int16{x, y}, qt.Equals, [2]int16{50, 25})

	bus.touchAt(2000, 2000) // glitch, out of range
	c.Assert(d.Touched(), qt.IsTrue)
	x, y = d.LastPoint()
	c.Assert([2]int16{x, y}, qt.Equals, [2]int16{239, 135})
}

func TestReadTouchPoint(t *testing.T) {
	c := qt.New(t)
	bus := newFakeBus()
	d := New(bus, Config{})
	bus.touchAt(7, 8)
	c.Assert(d.ReadTouchPoint(), qt.Equals, touch.Point{X: 7, Y: 8, Z: 1})
	bus.release()
	c.Assert(d.ReadTouchPoint(), qt.Equals, touch.Point{})
}

func TestPointRecordAddresses(t *testing.T) {
	c := qt.New(t)
	bus := newFakeBus()
	d := New(bus, Config{})
	// Point 1: track id at 0x814F, x at 0x8150, y at 0x8152 (little endian).
	bus.regs[0x814E] = statusBufferReady | 1
	bus.regs[0x814F] = 3
	bus.regs[0x8150] = 0x2C
	bus.regs[0x8151] = 0x01
	bus.regs[0x8152] = 0xC8
	bus.regs[0x8153] = 0x00
	c.Assert(d.ReadTouchPoint(), qt.Equals, touch.Point{X: 300, Y: 200, Z: 1})
}
