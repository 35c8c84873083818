//go:build bcm2711

package core

// PeripheralBase is the low-peripheral-mode address of the peripheral block on
// BCM2711 (Raspberry Pi 4).
const PeripheralBase = 0xFE00_0000

// CoreClockHz is the VPU core clock the mini UART divides down from. The
// firmware default is core_freq=500 on the Pi 4.
const CoreClockHz = 500_000_000
