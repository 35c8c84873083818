package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mattn/go-tty"

	"bmrp/host/console"
	"bmrp/host/serial"
	"bmrp/protocol"
)

var (
	device  = flag.String("device", "/dev/ttyUSB0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate (must match the board)")
	backend = flag.String("backend", serial.BackendTarm, "Serial backend: tarm or term")
	probe   = flag.String("probe", "", "Send this text, check the echo and exit")
	wait    = flag.Bool("wait", false, "Wait for the boot banner before anything else")
	timeout = flag.Duration("timeout", 5*time.Second, "Timeout for -wait and -probe")
	verbose = flag.Bool("verbose", false, "Enable verbose output")
)

// escapeKey (Ctrl-]) leaves interactive mode
const escapeKey = 0x1d

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	cfg.Backend = *backend

	if *verbose {
		log.Printf("Opening %s at %d baud (%s backend)", cfg.Device, cfg.Baud, cfg.Backend)
	}

	con, err := console.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer con.Close()

	if *wait {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		err := con.WaitBanner(ctx)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: no banner: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("BMRP %s console ready\n", protocol.Version)
	}

	if *probe != "" {
		if err := con.ProbeTimeout([]byte(*probe), *timeout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: probe failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Echo OK (%d bytes)\n", len(*probe))
		return
	}

	if err := interactive(con); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// interactive passes keystrokes to the board one at a time and prints what
// comes back. A ':' at the start of a line opens a local command.
func interactive(con *console.Console) error {
	t, err := tty.Open()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	defer t.Close()

	s := newSession(con, t.Output())
	s.start()
	defer s.stop()

	fmt.Fprintf(t.Output(), "Connected to %s. Ctrl-] quits, ':help' lists local commands.\r\n", *device)

	lineStart := true
	for {
		r, err := t.ReadRune()
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}

		switch {
		case r == escapeKey:
			return nil

		case r == ':' && lineStart:
			line, err := readLine(t)
			if err != nil {
				return err
			}
			if quit := s.run(line); quit {
				return nil
			}
			continue

		default:
			if err := con.Send([]byte(string(r))); err != nil {
				return err
			}
		}
		lineStart = r == '\r' || r == '\n'
	}
}

// readLine collects a local command line, echoing it on the terminal
func readLine(t *tty.TTY) (string, error) {
	out := t.Output()
	fmt.Fprint(out, "\r\n:")

	var line []rune
	for {
		r, err := t.ReadRune()
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
		switch r {
		case '\r', '\n':
			fmt.Fprint(out, "\r\n")
			return string(line), nil
		case 0x7f, 0x08:
			if len(line) > 0 {
				line = line[:len(line)-1]
				fmt.Fprint(out, "\b \b")
			}
		case 0x03, escapeKey:
			fmt.Fprint(out, "\r\n")
			return "", nil
		default:
			line = append(line, r)
			fmt.Fprint(out, string(r))
		}
	}
}
