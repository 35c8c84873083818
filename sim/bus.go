// Package sim is a register-level stand-in for the BCM2837 peripheral block.
// It implements core.MMIODriver without importing core, records every access
// in order, and lets device models hook individual registers.
package sim

import "sync"

// Op is the kind of a recorded bus event
type Op uint8

const (
	OpRead Op = iota
	OpWrite
	OpDelay // settle delay; Value holds the cycle count
)

func (o Op) String() string {
	switch o {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpDelay:
		return "delay"
	}
	return "op?"
}

// Access is one recorded bus event
type Access struct {
	Op    Op
	Addr  uint32
	Value uint32
}

// ReadHook produces the value of a read. stored is the register's current
// content.
type ReadHook func(stored uint32) uint32

// WriteHook consumes a write. A hooked register does not store written values.
type WriteHook func(val uint32)

// Bus is a sparse 32-bit register file. Unwritten registers read as zero.
// It is safe for concurrent use so device models can be fed from another
// goroutine while core code polls.
type Bus struct {
	mu         sync.Mutex
	regs       map[uint32]uint32
	log        []Access
	noLog      bool
	readHooks  map[uint32]ReadHook
	writeHooks map[uint32]WriteHook
}

// NewBus creates an empty register file
func NewBus() *Bus {
	return &Bus{
		regs:       make(map[uint32]uint32),
		readHooks:  make(map[uint32]ReadHook),
		writeHooks: make(map[uint32]WriteHook),
	}
}

// Read implements core.MMIODriver
func (b *Bus) Read(addr uint32) uint32 {
	b.mu.Lock()
	hook := b.readHooks[addr]
	val := b.regs[addr]
	b.mu.Unlock()

	// Hooks run unlocked so they may call back into the bus
	if hook != nil {
		val = hook(val)
	}

	b.mu.Lock()
	b.record(Access{Op: OpRead, Addr: addr, Value: val})
	b.mu.Unlock()
	return val
}

// Write implements core.MMIODriver
func (b *Bus) Write(addr uint32, val uint32) {
	b.mu.Lock()
	hook := b.writeHooks[addr]
	b.record(Access{Op: OpWrite, Addr: addr, Value: val})
	if hook == nil {
		b.regs[addr] = val
	}
	b.mu.Unlock()

	if hook != nil {
		hook(val)
	}
}

// Delay records a settle delay in the access log
func (b *Bus) Delay(cycles uint32) {
	b.mu.Lock()
	b.record(Access{Op: OpDelay, Value: cycles})
	b.mu.Unlock()
}

// SetLogging turns the access log on or off. It is on for a new bus; a
// long-running simulation turns it off so polling loops do not grow it.
func (b *Bus) SetLogging(enabled bool) {
	b.mu.Lock()
	b.noLog = !enabled
	b.mu.Unlock()
}

// record appends to the log. Caller holds b.mu.
func (b *Bus) record(a Access) {
	if !b.noLog {
		b.log = append(b.log, a)
	}
}

// Set stores val at addr without logging it, to seed register state
func (b *Bus) Set(addr uint32, val uint32) {
	b.mu.Lock()
	b.regs[addr] = val
	b.mu.Unlock()
}

// Value returns the stored content of addr without logging a read
func (b *Bus) Value(addr uint32) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.regs[addr]
}

// OnRead installs a read hook for addr, replacing any previous one
func (b *Bus) OnRead(addr uint32, hook ReadHook) {
	b.mu.Lock()
	b.readHooks[addr] = hook
	b.mu.Unlock()
}

// OnWrite installs a write hook for addr, replacing any previous one
func (b *Bus) OnWrite(addr uint32, hook WriteHook) {
	b.mu.Lock()
	b.writeHooks[addr] = hook
	b.mu.Unlock()
}

// Log returns a copy of every recorded event, oldest first
func (b *Bus) Log() []Access {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Access, len(b.log))
	copy(out, b.log)
	return out
}

// Writes returns the values written to addr, oldest first
func (b *Bus) Writes(addr uint32) []uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []uint32
	for _, a := range b.log {
		if a.Op == OpWrite && a.Addr == addr {
			out = append(out, a.Value)
		}
	}
	return out
}

// ReadCount returns how many times addr was read
func (b *Bus) ReadCount(addr uint32) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, a := range b.log {
		if a.Op == OpRead && a.Addr == addr {
			n++
		}
	}
	return n
}

// ResetLog drops the access log but keeps register contents and hooks
func (b *Bus) ResetLog() {
	b.mu.Lock()
	b.log = nil
	b.mu.Unlock()
}
