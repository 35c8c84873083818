//go:build rpi3

package main

import (
	"runtime/volatile"
	"unsafe"
)

// volatileDriver implements core.MMIODriver with TinyGo's volatile loads and
// stores straight onto the physical address. The MMU is off (or identity
// mapped, device memory) so every access reaches the bus once and in order.
type volatileDriver struct{}

func (volatileDriver) Read(addr uint32) uint32 {
	return volatile.LoadUint32((*uint32)(unsafe.Pointer(uintptr(addr))))
}

func (volatileDriver) Write(addr uint32, val uint32) {
	volatile.StoreUint32((*uint32)(unsafe.Pointer(uintptr(addr))), val)
}
