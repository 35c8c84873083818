//go:build !windows

package serial

import (
	"fmt"
	"time"

	"github.com/pkg/term"
)

// TermPort wraps github.com/pkg/term, which drives termios directly
type TermPort struct {
	t   *term.Term
	cfg *Config
}

// openTerm opens the device in raw mode at the configured speed
func openTerm(cfg *Config) (Port, error) {
	t, err := term.Open(cfg.Device, term.Speed(cfg.Baud), term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	if cfg.ReadTimeout > 0 {
		if err := t.SetReadTimeout(time.Duration(cfg.ReadTimeout) * time.Millisecond); err != nil {
			t.Close()
			return nil, fmt.Errorf("failed to set read timeout on %s: %w", cfg.Device, err)
		}
	}

	return &TermPort{t: t, cfg: cfg}, nil
}

// Read reads data from the serial port
func (p *TermPort) Read(b []byte) (int, error) {
	return p.t.Read(b)
}

// Write writes data to the serial port
func (p *TermPort) Write(b []byte) (int, error) {
	return p.t.Write(b)
}

// Close restores the line settings and closes the port
func (p *TermPort) Close() error {
	if err := p.t.Restore(); err != nil {
		p.t.Close()
		return err
	}
	return p.t.Close()
}

// Flush discards data written but not transmitted and data received but not read
func (p *TermPort) Flush() error {
	return p.t.Flush()
}
