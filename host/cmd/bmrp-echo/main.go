// Command bmrp-echo runs the board's echo loop from a host process, either
// against the real peripherals through /dev/mem or against the register
// simulator with stdin and stdout standing in for the serial line.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"bmrp/core"
	"bmrp/sim"
)

var (
	simulate = flag.Bool("sim", false, "Run on the register simulator instead of /dev/mem")
	memDev   = flag.String("mem", "/dev/mem", "Physical memory device (hardware mode)")
	baud     = flag.Uint("baud", core.DefaultBaud, "Mini UART baud rate")
	led      = flag.Int("led", 2, "Activity LED GPIO, -1 for none")
	debug    = flag.Bool("debug", false, "Log core debug messages to stderr")
)

func main() {
	flag.Parse()

	if *debug {
		core.SetDebugWriter(func(s string) { log.Print(s) })
		core.SetDebugEnabled(true)
	}

	if *simulate {
		startSimulator(os.Stdin, os.Stdout)
	} else {
		closer, err := openHardware(*memDev)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer closer.Close()
	}

	uart, err := core.NewMiniUART(uint32(*baud))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to set up mini UART: %v\n", err)
		os.Exit(1)
	}

	var activity *core.GPIO
	if *led >= 0 {
		activity, err = core.NewGPIO(core.GPIOPin(*led), core.PinOutput, core.PullNone)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: activity LED: %v\n", err)
			os.Exit(1)
		}
	}

	log.Printf("Echoing at %d baud (divisor %d)", uart.Baud(), uart.Divisor())
	core.Run(uart, activity)
}

// startSimulator installs a simulated bus with a mini UART model. Bytes read
// from in arrive on RXD1 and transmitted bytes go to out. The process exits
// once in is exhausted and the firmware has consumed everything.
func startSimulator(in io.Reader, out io.Writer) {
	bus := sim.NewBus()
	bus.SetLogging(false)

	aux := sim.NewAuxUART(bus, core.AUX_MU_LSR, core.AUX_MU_IO)
	aux.SetCapture(false)
	aux.OnTransmit(func(c byte) {
		out.Write([]byte{c})
	})

	core.SetMMIODriver(bus)

	go func() {
		buf := make([]byte, 256)
		for {
			n, err := in.Read(buf)
			if n > 0 {
				aux.Feed(buf[:n])
			}
			if err != nil {
				if err != io.EOF {
					log.Printf("Input error: %v", err)
				}
				break
			}
		}
		for aux.Pending() > 0 {
			time.Sleep(time.Millisecond)
		}
		// Give the last echo time to reach out
		time.Sleep(10 * time.Millisecond)
		os.Exit(0)
	}()
}
