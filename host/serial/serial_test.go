package serial

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyUSB0")

	if cfg.Device != "/dev/ttyUSB0" {
		t.Errorf("Device = %q", cfg.Device)
	}
	if cfg.Baud != 115200 {
		t.Errorf("Baud = %d, want 115200", cfg.Baud)
	}
	if cfg.Backend != BackendTarm {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendTarm)
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Error("Open(nil) succeeded")
	}

	cfg := DefaultConfig(filepath.Join(t.TempDir(), "nope"))
	cfg.Backend = "carrier-pigeon"
	_, err := Open(cfg)
	if err == nil || !strings.Contains(err.Error(), "carrier-pigeon") {
		t.Errorf("Open with unknown backend error = %v", err)
	}

	for _, backend := range []string{BackendTarm, BackendTerm} {
		cfg.Backend = backend
		if p, err := Open(cfg); err == nil {
			p.Close()
			t.Errorf("%s: Open on a missing device succeeded", backend)
		}
	}
}
