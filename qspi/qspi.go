// Package qspi implements a bit-banged quad SPI bus with the framing used by
// QSPI display controllers such as the NV3041A: an 8-bit opcode and a 24-bit
// address on a single data line, followed by the payload on either one or all
// four data lines.
//
// The bus uses SPI mode 0: data lines change while the clock is low and are
// sampled on the rising edge.
package qspi

import "errors"

// Pin is an output pin, for example machine.Pin (configured as output).
type Pin interface {
	High()
	Low()
}

// Opcodes.
const (
	OpWrite     = 0x02 // single line payload
	OpWriteQuad = 0x32 // quad line payload
)

var (
	ErrIdle    = errors.New("qspi: bus not acquired")
	ErrMissing = errors.New("qspi: missing pin")
)

// Bus is a bit-banged QSPI bus.
type Bus struct {
	cs     Pin
	sck    Pin
	data   [4]Pin
	active bool
}

// New returns a new bus on the given pins. The pins must already be
// configured as outputs. Data pin 0 is the single line data output.
func New(cs, sck Pin, data [4]Pin) (*Bus, error) {
	if cs == nil || sck == nil {
		return nil, ErrMissing
	}
	for _, p := range data {
		if p == nil {
			return nil, ErrMissing
		}
	}
	b := &Bus{cs: cs, sck: sck, data: data}
	b.cs.High()
	b.sck.Low()
	return b, nil
}

// Begin acquires the bus.
func (b *Bus) Begin() {
	b.sck.Low()
	b.cs.High()
	b.active = true
}

// End releases the bus.
func (b *Bus) End() {
	b.cs.High()
	b.sck.Low()
	b.active = false
}

// Command sends a register write: opcode 0x02, address 0x00 cmd 0x00 and the
// parameters, all on data line 0.
func (b *Bus) Command(cmd uint8, params ...uint8) error {
	if !b.active {
		return ErrIdle
	}
	b.cs.Low()
	b.header(OpWrite, cmd)
	for _, p := range params {
		b.single(p)
	}
	b.cs.High()
	return nil
}

// Pixels sends a memory write: opcode 0x32 and address 0x00 cmd 0x00 on data
// line 0, then the data on all four lines.
func (b *Bus) Pixels(cmd uint8, data []byte) error {
	if !b.active {
		return ErrIdle
	}
	b.cs.Low()
	b.header(OpWriteQuad, cmd)
	for _, v := range data {
		b.nibble(v >> 4)
		b.nibble(v)
	}
	b.cs.High()
	return nil
}

func (b *Bus) header(op, cmd uint8) {
	b.single(op)
	b.single(0x00)
	b.single(cmd)
	b.single(0x00)
}

// Send a byte on D0, MSB first.
func (b *Bus) single(v uint8) {
	for i := 7; i >= 0; i-- {
		set(b.data[0], v&(1<<i) != 0)
		b.clock()
	}
}

// Send the lower 4 bits on D3..D0.
func (b *Bus) nibble(v uint8) {
	set(b.data[0], v&0x1 != 0)
	set(b.data[1], v&0x2 != 0)
	set(b.data[2], v&0x4 != 0)
	set(b.data[3], v&0x8 != 0)
	b.clock()
}

func (b *Bus) clock() {
	b.sck.High()
	b.sck.Low()
}

func set(p Pin, high bool) {
	if high {
		p.High()
	} else {
		p.Low()
	}
}
