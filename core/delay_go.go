//go:build !tinygo

package core

import "sync/atomic"

var nopSink uint32

// nop is an atomic increment on regular Go so the compiler cannot drop the
// delay loop.
func nop() {
	atomic.AddUint32(&nopSink, 1)
}
