//go:build windows

package serial

import "fmt"

func openTerm(cfg *Config) (Port, error) {
	return nil, fmt.Errorf("serial backend %q is not available on windows", BackendTerm)
}
