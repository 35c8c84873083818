// Mini UART (AUX UART1) support
// Polled 8N1 transceiver on GPIO 14/15, no interrupts and no timeouts
package core

import "context"

const (
	// MiniUARTTxPin and MiniUARTRxPin carry TXD1/RXD1 in alt function 5
	MiniUARTTxPin GPIOPin = 14
	MiniUARTRxPin GPIOPin = 15

	// DefaultBaud is the console rate the rest of the tooling assumes
	DefaultBaud = 115200

	maxDivisor = 0xFFFF // AUX_MU_BAUD is 16 bits wide
)

// MiniUART is a configured mini UART. It owns its two pins for its whole
// lifetime; there is no teardown.
type MiniUART struct {
	baud    uint32
	divisor uint32
	tx      *GPIO
	rx      *GPIO
}

// ComputeDivisor returns the AUX_MU_BAUD value for baud at the given core
// clock: clock/(8*baud) - 1, integer division. baud must be non-zero and the
// quotient at least one; NewMiniUART checks both.
func ComputeDivisor(clockHz, baud uint32) uint32 {
	return uint32(uint64(clockHz)/(8*uint64(baud))) - 1
}

func validBaud(clockHz, baud uint32) bool {
	if baud == 0 {
		return false
	}
	q := uint64(clockHz) / (8 * uint64(baud))
	return q >= 1 && q-1 <= maxDivisor
}

// NewMiniUART enables the AUX block and configures the mini UART for 8 data
// bits, 1 stop bit, no parity at baud. Transmit and receive stay disabled
// while the divisor and pins are set up.
func NewMiniUART(baud uint32) (*MiniUART, error) {
	if !validBaud(CoreClockHz, baud) {
		return nil, ErrInvalidBaud
	}
	divisor := ComputeDivisor(CoreClockHz, baud)

	// Enable the mini UART, keeping the SPI enables as they are (p.9)
	mmioWrite(AUXENB, mmioRead(AUXENB)|AuxEnableMiniUART)

	// No interrupts (p.12)
	mmioWrite(AUX_MU_IER, 0)

	// Disable transmit and receive during setup (p.16)
	mmioWrite(AUX_MU_CNTL, 0)

	// 8 bit mode (p.14)
	mmioWrite(AUX_MU_LCR, LCRDataLength8Bits)

	// RTS line high (p.14)
	mmioWrite(AUX_MU_MCR, 0)

	mmioWrite(AUX_MU_IIR, iirReset)

	mmioWrite(AUX_MU_BAUD, divisor)

	tx, err := NewGPIO(MiniUARTTxPin, PinAltFunc5, PullNone)
	if err != nil {
		return nil, err
	}
	rx, err := NewGPIO(MiniUARTRxPin, PinAltFunc5, PullNone)
	if err != nil {
		return nil, err
	}

	// Re-enable transmit and receive (p.16)
	mmioWrite(AUX_MU_CNTL, CNTLReceiveEnable|CNTLTransmitEnable)

	// Drop anything latched while the line was being reconfigured
	mmioWrite(AUX_MU_IIR, IIRClearFIFOs)

	if debugEnabled {
		DebugPrintln("[UART] baud=" + utoa(baud) + " divisor=" + utoa(divisor))
	}

	return &MiniUART{
		baud:    baud,
		divisor: divisor,
		tx:      tx,
		rx:      rx,
	}, nil
}

// Baud returns the configured baud rate
func (u *MiniUART) Baud() uint32 { return u.baud }

// Divisor returns the value written to AUX_MU_BAUD
func (u *MiniUART) Divisor() uint32 { return u.divisor }

// TxPin returns the transmit pin
func (u *MiniUART) TxPin() *GPIO { return u.tx }

// RxPin returns the receive pin
func (u *MiniUART) RxPin() *GPIO { return u.rx }

// TxReady reports whether the transmit FIFO can accept a byte (p.15)
func (u *MiniUART) TxReady() bool {
	return mmioRead(AUX_MU_LSR)&LSRTxEmpty != 0
}

// RxReady reports whether the receive FIFO holds a byte (p.15)
func (u *MiniUART) RxReady() bool {
	return mmioRead(AUX_MU_LSR)&LSRDataReady != 0
}

// SendByte waits for room in the transmit FIFO and writes c. It spins forever
// if the hardware never reports space; use SendByteContext for a bound.
func (u *MiniUART) SendByte(c byte) {
	for !u.TxReady() {
	}
	mmioWrite(AUX_MU_IO, uint32(c))
}

// RecvByte waits for a received byte and returns it. Like SendByte it has no
// timeout.
func (u *MiniUART) RecvByte() byte {
	for !u.RxReady() {
	}
	return byte(mmioRead(AUX_MU_IO))
}

// SendString sends each byte of s in order. Line endings are not translated.
func (u *MiniUART) SendString(s string) {
	for i := 0; i < len(s); i++ {
		u.SendByte(s[i])
	}
}

// SendByteContext is SendByte with cancellation: it polls the same status
// bit but gives up with ctx.Err() once ctx is done.
func (u *MiniUART) SendByteContext(ctx context.Context, c byte) error {
	for !u.TxReady() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	mmioWrite(AUX_MU_IO, uint32(c))
	return nil
}

// RecvByteContext is RecvByte with cancellation.
func (u *MiniUART) RecvByteContext(ctx context.Context) (byte, error) {
	for !u.RxReady() {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}
	}
	return byte(mmioRead(AUX_MU_IO)), nil
}

// Write implements io.Writer. It always writes all of p.
func (u *MiniUART) Write(p []byte) (int, error) {
	for _, c := range p {
		u.SendByte(c)
	}
	return len(p), nil
}

// WriteString implements io.StringWriter
func (u *MiniUART) WriteString(s string) (int, error) {
	u.SendString(s)
	return len(s), nil
}

// WriteByte implements io.ByteWriter
func (u *MiniUART) WriteByte(c byte) error {
	u.SendByte(c)
	return nil
}

// Read implements io.Reader. It blocks until one byte arrives, then keeps
// reading while the receive FIFO has data and p has room.
func (u *MiniUART) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = u.RecvByte()
	n := 1
	for n < len(p) && u.RxReady() {
		p[n] = byte(mmioRead(AUX_MU_IO))
		n++
	}
	return n, nil
}

// ReadByte implements io.ByteReader
func (u *MiniUART) ReadByte() (byte, error) {
	return u.RecvByte(), nil
}
