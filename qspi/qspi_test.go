package qspi

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

// wire simulates the receiving side: it samples the data lines on every
// rising clock edge while chip select is low.
type wire struct {
	cs      bool
	sck     bool
	data    [4]bool
	samples [][4]bool
	frames  [][][4]bool
}

type wirePin struct {
	w    *wire
	kind int // 0 = cs, 1 = sck, 2..5 = data
}

func (p wirePin) High() { p.w.set(p.kind, true) }
func (p wirePin) Low()  { p.w.set(p.kind, false) }

func (w *wire) set(kind int, level bool) {
	switch kind {
	case 0:
		if level && !w.cs && w.samples != nil {
			w.frames = append(w.frames, w.samples)
			w.samples = nil
		}
		if !level {
			w.samples = [][4]bool{}
		}
		w.cs = level
	case 1:
		if level && !w.sck && !w.cs {
			w.samples = append(w.samples, w.data)
		}
		w.sck = level
	default:
		w.data[kind-2] = level
	}
}

func newWireBus(c *qt.C) (*Bus, *wire) {
	w := &wire{}
	b, err := New(wirePin{w, 0}, wirePin{w, 1}, [4]Pin{wirePin{w, 2}, wirePin{w, 3}, wirePin{w, 4}, wirePin{w, 5}})
	c.Assert(err, qt.IsNil)
	return b, w
}

// Decode n single line bytes starting at sample offset.
func singleBytes(samples [][4]bool, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n*8; i++ {
		if samples[i][0] {
			out[i/8] |= 1 << (7 - i%8)
		}
	}
	return out
}

func quadBytes(samples [][4]bool) []byte {
	out := make([]byte, len(samples)/2)
	for i, s := range samples {
		var v byte
		for bit := 0; bit < 4; bit++ {
			if s[bit] {
				v |= 1 << bit
			}
		}
		if i%2 == 0 {
			out[i/2] |= v << 4
		} else {
			out[i/2] |= v
		}
	}
	return out
}

func TestCommand(t *testing.T) {
	c := qt.New(t)
	b, w := newWireBus(c)
	b.Begin()
	c.Assert(b.Command(0x2A, 0x00, 0x10, 0x01, 0xDF), qt.IsNil)
	b.End()

	c.Assert(w.frames, qt.HasLen, 1)
	frame := w.frames[0]
	c.Assert(frame, qt.HasLen, 8*8)
	c.Assert(singleBytes(frame, 8), qt.DeepEquals, []byte{OpWrite, 0x00, 0x2A, 0x00, 0x00, 0x10, 0x01, 0xDF})
}

func TestPixels(t *testing.T) {
	c := qt.New(t)
	b, w := newWireBus(c)
	b.Begin()
	c.Assert(b.Pixels(0x2C, []byte{0xF8, 0x00, 0x12, 0xAB}), qt.IsNil)
	c.Assert(b.Pixels(0x3C, []byte{0x5A}), qt.IsNil)
	b.End()

	c.Assert(w.frames, qt.HasLen, 2)
	frame := w.frames[0]
	c.Assert(singleBytes(frame, 4), qt.DeepEquals, []byte{OpWriteQuad, 0x00, 0x2C, 0x00})
	c.Assert(quadBytes(frame[32:]), qt.DeepEquals, []byte{0xF8, 0x00, 0x12, 0xAB})
	c.Assert(singleBytes(w.frames[1], 4), qt.DeepEquals, []byte{OpWriteQuad, 0x00, 0x3C, 0x00})
	c.Assert(quadBytes(w.frames[1][32:]), qt.DeepEquals, []byte{0x5A})
}

func TestIdle(t *testing.T) {
	c := qt.New(t)
	b, w := newWireBus(c)
	c.Assert(b.Command(0x29), qt.Equals, ErrIdle)
	c.Assert(b.Pixels(0x2C, []byte{1}), qt.Equals, ErrIdle)
	b.Begin()
	b.End()
	c.Assert(b.Command(0x29), qt.Equals, ErrIdle)
	c.Assert(w.frames, qt.HasLen, 0)
}

func TestMissingPin(t *testing.T) {
	c := qt.New(t)
	w := &wire{}
	_, err := New(wirePin{w, 0}, wirePin{w, 1}, [4]Pin{wirePin{w, 2}, nil, wirePin{w, 4}, wirePin{w, 5}})
	c.Assert(err, qt.Equals, ErrMissing)
}
