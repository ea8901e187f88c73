//go:build jc4827w543

package board

// Guition JC4827W543: ESP32-S3 with a 4.3" 480x272 IPS panel (NV3041A, QSPI)
// and a GT911 capacitive touch controller.

import (
	"machine"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/i2csoft"

	"github.com/jc4827w543/board/gt911"
	"github.com/jc4827w543/board/ledc"
	"github.com/jc4827w543/board/nv3041a"
	"github.com/jc4827w543/board/qspi"
)

const (
	Name = "jc4827w543"
)

var (
	Display   = mainDisplay{}
	Backlight = &pwmBacklight{}
)

// Pins.
const (
	lcdCS  = machine.GPIO45
	lcdSCK = machine.GPIO47
	lcdD0  = machine.GPIO21
	lcdD1  = machine.GPIO48
	lcdD2  = machine.GPIO40
	lcdD3  = machine.GPIO39
	lcdBL  = machine.GPIO1

	touchSDA = machine.GPIO8
	touchSCL = machine.GPIO4
	touchINT = machine.GPIO3
	touchRST = machine.GPIO38
)

type mainDisplay struct{}

// Configure returns the panel driver. Nothing is sent to the panel until its
// Begin method is called.
func (d mainDisplay) Configure() Panel {
	pins := []machine.Pin{lcdCS, lcdSCK, lcdD0, lcdD1, lcdD2, lcdD3}
	for _, pin := range pins {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
	bus, err := qspi.New(lcdCS, lcdSCK, [4]qspi.Pin{lcdD0, lcdD1, lcdD2, lcdD3})
	if err != nil {
		// All pins are constants, so this can't happen.
		panic(err)
	}
	// The reset line isn't connected.
	return nv3041a.New(bus, nil, nv3041a.Config{
		Width:    480,
		Height:   272,
		Rotation: drivers.Rotation0,
		IPS:      true,
	})
}

func (d mainDisplay) WaitForVBlank(defaultInterval time.Duration) {
	// The TE pin of the panel isn't connected.
	dummyWaitForVBlank(defaultInterval)
}

func (d mainDisplay) PPI() int {
	return 128 // 480px over 95mm
}

// Configure the capacitive touch controller. If it doesn't respond, a touch
// input that never reports a touch is returned instead.
func (d mainDisplay) ConfigureTouch() TouchInput {
	// Reset the controller. INT low during reset selects address 0x5D.
	touchINT.Configure(machine.PinConfig{Mode: machine.PinOutput})
	touchRST.Configure(machine.PinConfig{Mode: machine.PinOutput})
	touchINT.Low()
	touchRST.Low()
	time.Sleep(10 * time.Millisecond)
	touchRST.High()
	time.Sleep(50 * time.Millisecond)
	touchINT.Configure(machine.PinConfig{Mode: machine.PinInput})

	bus := i2csoft.New(touchSCL, touchSDA)
	bus.Configure(i2csoft.I2CConfig{Frequency: 400e3})
	for _, address := range []uint16{gt911.Address, gt911.AddressAlt} {
		touch := gt911.New(bus, gt911.Config{
			Address:      address,
			NativeWidth:  480,
			NativeHeight: 272,
		})
		if touch.Probe() == nil {
			return touch
		}
	}
	println("board: touch controller not found")
	return noTouch{}
}

// Backlight PWM on LEDC channel 0, timer 0.
type pwmBacklight struct {
	channel *ledc.Channel
}

// Configure the backlight PWM. It must be called before Set.
func (b *pwmBacklight) Configure(frequency uint32, resolution uint8) error {
	b.channel = ledc.NewChannel(ledc.MMIO, 0, 0, uint8(lcdBL))
	return b.channel.Configure(ledc.Config{
		Frequency:  frequency,
		Resolution: resolution,
	})
}

// MaxDuty returns the duty cycle at full brightness.
func (b *pwmBacklight) MaxDuty() uint32 {
	if b.channel == nil {
		return 0
	}
	return b.channel.MaxDuty()
}

// Set the duty cycle, 0 ≤ duty ≤ MaxDuty. A value of 0 turns the backlight
// off entirely.
func (b *pwmBacklight) Set(duty uint32) {
	if b.channel == nil {
		return
	}
	b.channel.Set(duty)
}
