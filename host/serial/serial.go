package serial

import (
	"fmt"
	"io"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - Termios serial (using github.com/pkg/term), which can really flush
// - Mock serial (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush discards unread input and unsent output where the backend can
	Flush() error
}

// Backend names accepted in Config.Backend
const (
	BackendTarm = "tarm"
	BackendTerm = "term"
)

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate; must match the board's mini UART (115200)
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int

	// Backend selects the implementation, BackendTarm when empty
	Backend string
}

// DefaultConfig returns a default configuration for the board console
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200, // mini UART default
		ReadTimeout: 100,    // 100ms read timeout
		Backend:     BackendTarm,
	}
}

// Open opens a serial port with the configured backend
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch cfg.Backend {
	case "", BackendTarm:
		return openNative(cfg)
	case BackendTerm:
		return openTerm(cfg)
	}
	return nil, fmt.Errorf("unknown serial backend %q", cfg.Backend)
}
