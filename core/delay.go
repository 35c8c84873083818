package core

// SettleCycles is the setup/hold time the pull-up/down clock needs around
// GPPUDCLKn (BCM2837 ARM Peripherals, p.101). Not tunable.
const SettleCycles = 150

// spinDelay waits the given number of no-op cycles. Tests swap it out to
// observe where delays fall between register writes.
var spinDelay = delayCycles

// delayCycles executes n no-op instructions.
func delayCycles(n uint32) {
	for i := uint32(0); i < n; i++ {
		nop()
	}
}

// Delay busy-waits for n no-op cycles
func Delay(n uint32) {
	spinDelay(n)
}
