//go:build esp32s3

package ledc

import (
	"runtime/volatile"
	"unsafe"
)

// MMIO is the memory mapped register file of the chip.
var MMIO Memory = mmio{}

type mmio struct{}

func (mmio) Load(addr uint32) uint32 {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(addr))).Get()
}

func (mmio) Store(addr uint32, value uint32) {
	(*volatile.Register32)(unsafe.Pointer(uintptr(addr))).Set(value)
}
