// GPIO (General Purpose Input/Output) support
// Drives the BCM2837 GPIO block: function select, pull resistors and outputs
package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// MaxPin is the highest GPIO index on the BCM2837 (54 pins)
const MaxPin GPIOPin = 53

const (
	regSize        = 4  // bytes per register
	fselFieldWidth = 3  // bits per pin in GPFSELn
	fselPinsPerReg = 10 // pins per GPFSELn
	pinsPerBankReg = 32 // pins per GPSETn/GPCLRn/GPLEVn/GPPUDCLKn
)

// PinMode is the 3-bit function select code (datasheet p.92).
// The numeric values are the hardware encoding.
type PinMode uint32

const (
	PinInput    PinMode = 0b000
	PinOutput   PinMode = 0b001
	PinAltFunc5 PinMode = 0b010
	PinAltFunc4 PinMode = 0b011
	PinAltFunc0 PinMode = 0b100
	PinAltFunc1 PinMode = 0b101
	PinAltFunc2 PinMode = 0b110
	PinAltFunc3 PinMode = 0b111
)

func (m PinMode) String() string {
	switch m {
	case PinInput:
		return "input"
	case PinOutput:
		return "output"
	case PinAltFunc0:
		return "alt0"
	case PinAltFunc1:
		return "alt1"
	case PinAltFunc2:
		return "alt2"
	case PinAltFunc3:
		return "alt3"
	case PinAltFunc4:
		return "alt4"
	case PinAltFunc5:
		return "alt5"
	}
	return "mode(" + utoa(uint32(m)) + ")"
}

// Pull is the GPPUD control code (datasheet p.101)
type Pull uint32

const (
	PullNone Pull = 0
	PullUp   Pull = 1
	PullDown Pull = 2
)

func (p Pull) String() string {
	switch p {
	case PullNone:
		return "none"
	case PullUp:
		return "up"
	case PullDown:
		return "down"
	}
	return "pull(" + utoa(uint32(p)) + ")"
}

// PinState is the last output level written through On/Off.
// It is tracked in software and never read back.
type PinState uint8

const (
	PinOff PinState = iota
	PinOn
)

func (s PinState) String() string {
	if s == PinOn {
		return "on"
	}
	return "off"
}

// GPIO is a configured pin
type GPIO struct {
	pin   GPIOPin
	mode  PinMode
	pull  Pull
	state PinState
}

// NewGPIO validates the arguments, programs the function select field and the
// pull resistor, and returns the pin in the off state. Nothing is written to
// the hardware if validation fails.
func NewGPIO(pin GPIOPin, mode PinMode, pull Pull) (*GPIO, error) {
	if pin > MaxPin {
		return nil, ErrInvalidPin
	}
	if mode > PinAltFunc3 {
		return nil, ErrInvalidMode
	}
	if pull > PullDown {
		return nil, ErrInvalidPull
	}

	fsel := setFunction(pin, mode)
	setPull(pin, pull)

	if debugEnabled {
		DebugPrintln("[GPIO] pin=" + utoa(uint32(pin)) + " mode=" + mode.String() +
			" pull=" + pull.String() + " fsel=" + hex32(fsel))
	}

	return &GPIO{
		pin:   pin,
		mode:  mode,
		pull:  pull,
		state: PinOff,
	}, nil
}

// setFunction writes the 3-bit mode field for pin and returns the new
// register value. The register is shared by ten pins so it has to be
// read-modify-write.
func setFunction(pin GPIOPin, mode PinMode) uint32 {
	addr := uint32(GPFSEL0) + regSize*uint32(pin/fselPinsPerReg)
	shift := fselFieldWidth * uint32(pin%fselPinsPerReg)

	val := mmioRead(addr)
	val &^= 0b111 << shift
	val |= uint32(mode) << shift
	mmioWrite(addr, val)
	return val
}

// setPull runs the GPPUD / GPPUDCLKn sequence for a single pin. Both
// registers are left at zero so the next pull operation starts clean.
func setPull(pin GPIOPin, pull Pull) {
	clk := uint32(GPPUDCLK0) + regSize*uint32(pin/pinsPerBankReg)

	mmioWrite(GPPUD, uint32(pull))
	spinDelay(SettleCycles)

	mmioWrite(clk, 1<<(pin%pinsPerBankReg))
	spinDelay(SettleCycles)

	mmioWrite(GPPUD, 0)
	mmioWrite(clk, 0)
}

// bankBit returns the GPSETn/GPCLRn/GPLEVn register for pin relative to the
// bank-0 register base, and the pin's bit in it
func bankBit(base uint32, pin GPIOPin) (uint32, uint32) {
	return base + regSize*uint32(pin/pinsPerBankReg), 1 << (pin % pinsPerBankReg)
}

// Pin returns the pin number
func (g *GPIO) Pin() GPIOPin { return g.pin }

// Mode returns the last function mode written
func (g *GPIO) Mode() PinMode { return g.mode }

// Pull returns the last pull setting written
func (g *GPIO) Pull() Pull { return g.pull }

// State returns the software-tracked output state
func (g *GPIO) State() PinState { return g.state }

// IsOn reports whether the last output call was On
func (g *GPIO) IsOn() bool { return g.state == PinOn }

// SetMode rewrites the function select field for this pin
func (g *GPIO) SetMode(mode PinMode) error {
	if mode > PinAltFunc3 {
		return ErrInvalidMode
	}
	g.mode = mode
	setFunction(g.pin, mode)
	return nil
}

// On drives the pin high. GPSETn is write-1-to-set, so zeros leave the other
// pins alone and no read is needed.
func (g *GPIO) On() {
	addr, bit := bankBit(GPSET0, g.pin)
	mmioWrite(addr, bit)
	g.state = PinOn
}

// Off drives the pin low via GPCLRn
func (g *GPIO) Off() {
	addr, bit := bankBit(GPCLR0, g.pin)
	mmioWrite(addr, bit)
	g.state = PinOff
}

// Toggle flips the software state and drives the pin to match
func (g *GPIO) Toggle() {
	if g.state == PinOn {
		g.Off()
	} else {
		g.On()
	}
}

// Level reads the pin's current level from GPLEVn. This is a hardware read
// and does not change State.
func (g *GPIO) Level() bool {
	addr, bit := bankBit(GPLEV0, g.pin)
	return mmioRead(addr)&bit != 0
}

// PullUp enables the pull-up resistor
func (g *GPIO) PullUp() { g.setPull(PullUp) }

// PullDown enables the pull-down resistor
func (g *GPIO) PullDown() { g.setPull(PullDown) }

// PullNeither disables both resistors
func (g *GPIO) PullNeither() { g.setPull(PullNone) }

// setPull records the new setting first and then applies it, so the stored
// field and the hardware always agree once the call returns.
func (g *GPIO) setPull(pull Pull) {
	g.pull = pull
	setPull(g.pin, pull)
}
