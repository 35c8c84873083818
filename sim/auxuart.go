package sim

import (
	"runtime"
	"sync"
)

// Line status bits the model drives
const (
	lsrDataReady = 1 << 0
	lsrTxEmpty   = 1 << 5
	lsrTxIdle    = 1 << 6
)

// AuxUART models the mini UART's data and line status registers. Bytes
// written to the I/O register are captured; bytes queued with Feed are
// returned by reads of the I/O register and raise the data-ready bit.
type AuxUART struct {
	mu         sync.Mutex
	tx         []byte
	rx         []byte
	holdTx     bool
	noCapture  bool
	onTransmit func(byte)
}

// NewAuxUART attaches a model to bus at the given line status and I/O
// register addresses
func NewAuxUART(bus *Bus, lsr, io uint32) *AuxUART {
	u := &AuxUART{}
	bus.OnRead(lsr, u.readLSR)
	bus.OnRead(io, u.readIO)
	bus.OnWrite(io, u.writeIO)
	return u
}

func (u *AuxUART) readLSR(uint32) uint32 {
	u.mu.Lock()
	var v uint32
	if len(u.rx) > 0 {
		v |= lsrDataReady
	}
	if !u.holdTx {
		v |= lsrTxEmpty | lsrTxIdle
	}
	u.mu.Unlock()

	// Let feeding goroutines run while core code spins on this register
	if v&lsrDataReady == 0 {
		runtime.Gosched()
	}
	return v
}

func (u *AuxUART) readIO(uint32) uint32 {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.rx) == 0 {
		return 0
	}
	c := u.rx[0]
	u.rx = u.rx[1:]
	return uint32(c)
}

func (u *AuxUART) writeIO(val uint32) {
	c := byte(val)
	u.mu.Lock()
	if !u.noCapture {
		u.tx = append(u.tx, c)
	}
	cb := u.onTransmit
	u.mu.Unlock()
	if cb != nil {
		cb(c)
	}
}

// Feed queues bytes as if they arrived on RXD1
func (u *AuxUART) Feed(data []byte) {
	u.mu.Lock()
	u.rx = append(u.rx, data...)
	u.mu.Unlock()
}

// Pending returns how many fed bytes have not been read yet
func (u *AuxUART) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.rx)
}

// Transmitted returns a copy of every byte written to the I/O register
func (u *AuxUART) Transmitted() []byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]byte, len(u.tx))
	copy(out, u.tx)
	return out
}

// SetCapture controls whether transmitted bytes are kept for Transmitted.
// OnTransmit callbacks run either way.
func (u *AuxUART) SetCapture(enabled bool) {
	u.mu.Lock()
	u.noCapture = !enabled
	u.mu.Unlock()
}

// HoldTx withholds the transmitter-empty bit while hold is true
func (u *AuxUART) HoldTx(hold bool) {
	u.mu.Lock()
	u.holdTx = hold
	u.mu.Unlock()
}

// OnTransmit registers a callback run for every transmitted byte
func (u *AuxUART) OnTransmit(fn func(byte)) {
	u.mu.Lock()
	u.onTransmit = fn
	u.mu.Unlock()
}
