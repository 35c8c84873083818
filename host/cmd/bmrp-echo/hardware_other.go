//go:build !linux

package main

import (
	"fmt"
	"io"
	"runtime"
)

func openHardware(string) (io.Closer, error) {
	return nil, fmt.Errorf("hardware mode needs /dev/mem, not available on %s; use -sim", runtime.GOOS)
}
