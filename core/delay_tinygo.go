//go:build tinygo && arm64

package core

import "device/arm64"

// nop issues a single hardware no-op
func nop() {
	arm64.Asm("nop")
}
