// Package ledc drives a channel of the ESP32-S3 LED PWM controller (LEDC) in
// low speed mode, for example to dim a display backlight.
//
// All register access goes through the Memory interface. On the chip this is
// memory mapped I/O (see MMIO), in tests it can be any register file.
package ledc

import "errors"

// Memory is 32-bit register access by absolute address.
type Memory interface {
	Load(addr uint32) uint32
	Store(addr uint32, value uint32)
}

// Peripheral base addresses and registers.
const (
	ledcBase   = 0x60019000
	gpioBase   = 0x60004000
	ioMuxBase  = 0x60009000
	systemBase = 0x600C0000

	regPeripClkEn0 = systemBase + 0x18
	regPeripRstEn0 = systemBase + 0x20
	peripLEDC      = 1 << 11

	regLEDCConf   = ledcBase + 0xD0
	confAPBClk    = 1
	confClkEnable = 1 << 31

	regGPIOEnableW1TS = gpioBase + 0x24
	regGPIOFuncOutSel = gpioBase + 0x554

	// GPIO matrix output signal of low speed channel 0.
	signalLEDCOut0 = 73
)

// Bits in the channel and timer registers.
const (
	chSigOutEnable = 1 << 2
	chParaUp       = 1 << 4
	chDutyStart    = 1 << 31

	timerParaUp   = 1 << 25
	timerReset    = 1 << 23
	timerDivShift = 4
)

// SourceClock is the APB clock the timers are driven from.
const SourceClock = 80_000_000

const (
	NumChannels   = 8
	NumTimers     = 4
	MaxResolution = 14
)

var (
	ErrResolution = errors.New("ledc: resolution must be 1..14 bits")
	ErrFrequency  = errors.New("ledc: frequency out of range for this resolution")
	ErrChannel    = errors.New("ledc: no such channel or timer")
)

// Config is the PWM configuration of a channel.
type Config struct {
	Frequency  uint32 // Hz
	Resolution uint8  // bits, the duty range is 0..1<<Resolution-1
}

// Divider returns the timer clock divider in 10.8 fixed point format for the
// given source clock, PWM frequency and resolution.
func Divider(source, frequency uint32, resolution uint8) (uint32, error) {
	if resolution == 0 || resolution > MaxResolution {
		return 0, ErrResolution
	}
	if frequency == 0 {
		return 0, ErrFrequency
	}
	div := uint64(source) * 256 / (uint64(frequency) << resolution)
	if div < 256 || div >= 1<<18 {
		return 0, ErrFrequency
	}
	return uint32(div), nil
}

// Channel is a LEDC channel with its own timer, routed to a single GPIO.
type Channel struct {
	mem     Memory
	channel uint8
	timer   uint8
	pin     uint8
	maxDuty uint32
	duty    uint32
}

// NewChannel returns a channel that will drive the given GPIO pin using the
// given timer.
func NewChannel(mem Memory, channel, timer, pin uint8) *Channel {
	return &Channel{
		mem:     mem,
		channel: channel,
		timer:   timer,
		pin:     pin,
	}
}

func (ch *Channel) regConf0() uint32  { return ledcBase + 0x14*uint32(ch.channel) }
func (ch *Channel) regHPoint() uint32 { return ledcBase + 0x14*uint32(ch.channel) + 0x04 }
func (ch *Channel) regDuty() uint32   { return ledcBase + 0x14*uint32(ch.channel) + 0x08 }
func (ch *Channel) regConf1() uint32  { return ledcBase + 0x14*uint32(ch.channel) + 0x0C }
func (ch *Channel) regTimer() uint32  { return ledcBase + 0xA0 + 0x08*uint32(ch.timer) }

// Configure enables the peripheral, sets up the timer and routes the channel
// output to the pin. The duty cycle starts at 0.
func (ch *Channel) Configure(config Config) error {
	if ch.channel >= NumChannels || ch.timer >= NumTimers {
		return ErrChannel
	}
	div, err := Divider(SourceClock, config.Frequency, config.Resolution)
	if err != nil {
		return err
	}

	// Enable the peripheral clock and take it out of reset.
	ch.mem.Store(regPeripClkEn0, ch.mem.Load(regPeripClkEn0)|peripLEDC)
	ch.mem.Store(regPeripRstEn0, ch.mem.Load(regPeripRstEn0)&^peripLEDC)
	ch.mem.Store(regLEDCConf, confClkEnable|confAPBClk)

	// Configure the timer.
	ch.mem.Store(ch.regTimer(), uint32(config.Resolution)|div<<timerDivShift|timerReset)
	ch.mem.Store(ch.regTimer(), uint32(config.Resolution)|div<<timerDivShift|timerParaUp)

	// Configure the channel.
	ch.maxDuty = 1<<config.Resolution - 1
	ch.mem.Store(ch.regHPoint(), 0)
	ch.mem.Store(ch.regConf0(), uint32(ch.timer)|chSigOutEnable)
	ch.Set(0)

	// Route the channel through the GPIO matrix: IO_MUX function 1 (GPIO),
	// medium drive strength, output enabled.
	ch.mem.Store(ioMuxBase+0x04+4*uint32(ch.pin), 1<<12|2<<10)
	ch.mem.Store(regGPIOFuncOutSel+4*uint32(ch.pin), uint32(signalLEDCOut0+ch.channel))
	if ch.pin < 32 {
		ch.mem.Store(regGPIOEnableW1TS, 1<<ch.pin)
	} else {
		ch.mem.Store(regGPIOEnableW1TS+0x0C, 1<<(ch.pin-32))
	}
	return nil
}

// MaxDuty returns the duty value for a 100% duty cycle, or 0 if the channel
// isn't configured.
func (ch *Channel) MaxDuty() uint32 {
	return ch.maxDuty
}

// Duty returns the last duty value set.
func (ch *Channel) Duty() uint32 {
	return ch.duty
}

// Set changes the duty cycle, with immediate effect. Values above MaxDuty are
// clamped.
func (ch *Channel) Set(duty uint32) {
	if duty > ch.maxDuty {
		duty = ch.maxDuty
	}
	ch.duty = duty
	// The duty register has 4 fractional bits.
	ch.mem.Store(ch.regDuty(), duty<<4)
	ch.mem.Store(ch.regConf1(), chDutyStart)
	ch.mem.Store(ch.regConf0(), ch.mem.Load(ch.regConf0())|chParaUp)
}
