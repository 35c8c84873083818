//go:build linux

// Package devmem drives peripheral registers from a Linux process by mapping
// the physical peripheral window out of /dev/mem. It lets the core GPIO and
// mini UART code run unchanged on a Raspberry Pi under Raspberry Pi OS.
package devmem

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"bmrp/core"

	"golang.org/x/sys/unix"
)

// DefaultDevice is the physical memory device. Needs root.
const DefaultDevice = "/dev/mem"

// Driver implements core.MMIODriver over a shared mapping of physical memory
type Driver struct {
	file *os.File
	mem  []byte
	base uint32 // physical address of mem[0]
}

// Open maps size bytes of device starting at physical address phys. The
// mapping is widened to page boundaries as mmap requires.
func Open(device string, phys, size uint32) (*Driver, error) {
	if size == 0 {
		return nil, fmt.Errorf("devmem: empty window at 0x%08x", phys)
	}

	page := uint32(os.Getpagesize())
	start := phys &^ (page - 1)
	length := (phys - start + size + page - 1) &^ (page - 1)

	f, err := os.OpenFile(device, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("devmem: failed to open %s: %w", device, err)
	}

	mem, err := unix.Mmap(int(f.Fd()), int64(start), int(length),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("devmem: failed to map 0x%08x+0x%x from %s: %w", start, length, device, err)
	}

	return &Driver{file: f, mem: mem, base: start}, nil
}

// OpenPeripherals maps the GPIO and AUX registers the core uses
func OpenPeripherals(device string) (*Driver, error) {
	return Open(device, core.GPFSEL0, core.PeripheralWindow)
}

// word returns a pointer to the register at addr. Addresses outside the
// mapping are caller bugs, exactly as they would be on bare metal, but here
// they would fault the process so they panic with a readable message instead.
func (d *Driver) word(addr uint32) *uint32 {
	if addr < d.base || addr-d.base > uint32(len(d.mem))-4 || addr%4 != 0 {
		panic(fmt.Sprintf("devmem: register 0x%08x outside mapped window 0x%08x+0x%x", addr, d.base, len(d.mem)))
	}
	return (*uint32)(unsafe.Pointer(&d.mem[addr-d.base]))
}

// Read implements core.MMIODriver
func (d *Driver) Read(addr uint32) uint32 {
	return atomic.LoadUint32(d.word(addr))
}

// Write implements core.MMIODriver
func (d *Driver) Write(addr uint32, val uint32) {
	atomic.StoreUint32(d.word(addr), val)
}

// Close unmaps the window and closes the device
func (d *Driver) Close() error {
	var firstErr error
	if d.mem != nil {
		if err := unix.Munmap(d.mem); err != nil {
			firstErr = fmt.Errorf("devmem: failed to unmap: %w", err)
		}
		d.mem = nil
	}
	if d.file != nil {
		if err := d.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.file = nil
	}
	return firstErr
}
