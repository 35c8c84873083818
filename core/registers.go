package core

// Register offsets from PeripheralBase (BCM2837 ARM Peripherals, p.8 and p.90)
const (
	// GPIO block
	gpioFuncSelect0 = 0x0020_0000 // 3 bits per pin, 10 pins per register
	gpioSet0        = 0x0020_001C // write-1-to-set
	gpioClear0      = 0x0020_0028 // write-1-to-clear
	gpioLevel0      = 0x0020_0034 // read-only pin level
	gpioPullControl = 0x0020_0094 // GPPUD, global pull code staging
	gpioPullClock0  = 0x0020_0098 // GPPUDCLK0, latches GPPUD onto selected pins

	// Auxiliary peripherals
	auxEnables    = 0x0021_5004
	auxMUIO       = 0x0021_5040 // mini UART I/O data
	auxMUIER      = 0x0021_5044 // interrupt enable
	auxMUIIR      = 0x0021_5048 // interrupt identify / FIFO clear
	auxMULCR      = 0x0021_504C // line control
	auxMUMCR      = 0x0021_5050 // modem control
	auxMULSR      = 0x0021_5054 // line status
	auxMUCNTL     = 0x0021_5060 // extra control
	auxMUBaudRate = 0x0021_5068
)

// Absolute register addresses, exported for drivers and simulators that need
// to know the peripheral window.
const (
	GPFSEL0   = PeripheralBase + gpioFuncSelect0
	GPSET0    = PeripheralBase + gpioSet0
	GPCLR0    = PeripheralBase + gpioClear0
	GPLEV0    = PeripheralBase + gpioLevel0
	GPPUD     = PeripheralBase + gpioPullControl
	GPPUDCLK0 = PeripheralBase + gpioPullClock0

	AUXENB      = PeripheralBase + auxEnables
	AUX_MU_IO   = PeripheralBase + auxMUIO
	AUX_MU_IER  = PeripheralBase + auxMUIER
	AUX_MU_IIR  = PeripheralBase + auxMUIIR
	AUX_MU_LCR  = PeripheralBase + auxMULCR
	AUX_MU_MCR  = PeripheralBase + auxMUMCR
	AUX_MU_LSR  = PeripheralBase + auxMULSR
	AUX_MU_CNTL = PeripheralBase + auxMUCNTL
	AUX_MU_BAUD = PeripheralBase + auxMUBaudRate
)

// PeripheralWindow is the span of the peripheral block that core code touches,
// starting at GPFSEL0. Userspace drivers map this much.
const PeripheralWindow = (auxMUBaudRate + 4) - gpioFuncSelect0

// AUXENB bits
const AuxEnableMiniUART = 1 << 0

// AUX_MU_LSR bits
const (
	LSRDataReady = 1 << 0
	LSRTxEmpty   = 1 << 5
)

// AUX_MU_CNTL bits
const (
	CNTLReceiveEnable  = 1 << 0
	CNTLTransmitEnable = 1 << 1
)

// AUX_MU_LCR: 8 bit mode needs both low bits (datasheet errata)
const LCRDataLength8Bits = 0b11

// AUX_MU_IIR write codes
const (
	IIRClearReceiveFIFO  = 1 << 1
	IIRClearTransmitFIFO = 1 << 2
	IIRClearFIFOs        = IIRClearReceiveFIFO | IIRClearTransmitFIFO

	// iirReset clears both FIFOs and sets the FIFO-enable bits that read back as 1
	iirReset = 0xC6
)
