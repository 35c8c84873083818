package core

// MMIODriver is the only path from core code to peripheral registers.
// Platform-specific implementations perform the actual bus access.
//
// Both calls must reach the hardware exactly once, in program order, with no
// caching, merging or elision. Addresses are physical and assumed valid; an
// unmapped address is a caller bug and is not reported.
type MMIODriver interface {
	// Read returns the 32-bit word at addr
	Read(addr uint32) uint32

	// Write stores val at addr
	Write(addr uint32, val uint32)
}

// Global singleton used by core code.
var mmioDriver MMIODriver

// SetMMIODriver is called by target-specific code to register its driver.
func SetMMIODriver(d MMIODriver) {
	mmioDriver = d
}

// MustMMIO returns the configured driver or panics if missing.
func MustMMIO() MMIODriver {
	if mmioDriver == nil {
		panic("MMIO driver not configured")
	}
	return mmioDriver
}

func mmioRead(addr uint32) uint32 {
	return MustMMIO().Read(addr)
}

func mmioWrite(addr uint32, val uint32) {
	MustMMIO().Write(addr, val)
}
