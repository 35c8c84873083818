//go:build !bcm2711

package core

// PeripheralBase is the ARM physical address of the peripheral block on
// BCM2837 (Raspberry Pi 2B v1.2, 3, Zero 2).
const PeripheralBase = 0x3F00_0000

// CoreClockHz is the VPU core clock the mini UART divides down from.
const CoreClockHz = 250_000_000
