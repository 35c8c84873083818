//go:build tinygo && arm

package core

import "device/arm"

// nop issues a single hardware no-op
func nop() {
	arm.Asm("nop")
}
