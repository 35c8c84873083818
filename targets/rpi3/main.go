//go:build rpi3

package main

import (
	"bmrp/core"
)

const (
	// activityPin is toggled for every echoed byte (GPIO 2, header pin 3)
	activityPin = 2

	// debug routes core debug messages to the console before the banner
	debug = false
)

func main() {
	// Unrecoverable errors end here; there is nobody to return to
	defer func() {
		recover()
		halt()
	}()

	core.SetMMIODriver(volatileDriver{})

	uart, err := core.NewMiniUART(core.DefaultBaud)
	if err != nil {
		halt()
	}

	core.SetDebugWriter(func(s string) {
		uart.SendString(s)
		uart.SendString("\r\n")
	})
	core.SetDebugEnabled(debug)

	led, err := core.NewGPIO(activityPin, core.PinOutput, core.PullNone)
	if err != nil {
		led = nil
	}

	core.Run(uart, led)
}

// halt parks the core forever
func halt() {
	for {
	}
}
