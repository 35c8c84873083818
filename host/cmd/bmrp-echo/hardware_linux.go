package main

import (
	"io"

	"bmrp/core"
	"bmrp/host/devmem"
)

// openHardware maps the peripheral window and installs it as the MMIO driver
func openHardware(device string) (io.Closer, error) {
	d, err := devmem.OpenPeripherals(device)
	if err != nil {
		return nil, err
	}
	core.SetMMIODriver(d)
	return d, nil
}
