package arch

import (
	"errors"
	"fmt"
	"strings"
)

// Architecture is one of the supported target CPU architectures.
type Architecture int

const (
	// Aarch64 is the 64-bit ARM target.
	Aarch64 Architecture = iota
	// Armv7hf is the 32-bit ARM hard-float target.
	Armv7hf
)

// errUnsupported is returned when an architecture name is not in the supported set.
var errUnsupported = errors.New("unsupported architecture")

// Parse maps a user-provided name to an Architecture.
// Both canonical names and compiler triples are accepted.
func Parse(s string) (Architecture, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "aarch64", "aarch64-linux-gnu":
		return Aarch64, nil
	case "armv7hf", "arm-linux-gnueabihf":
		return Armv7hf, nil
	default:
		return 0, fmt.Errorf("%q (supported: %s): %w", s, strings.Join(Names(), ", "), errUnsupported)
	}
}

// Names returns the canonical names of all supported architectures.
func Names() []string {
	return []string{Aarch64.Name(), Armv7hf.Name()}
}

// Name returns the canonical lowercase name used in manifests and package names.
func (a Architecture) Name() string {
	switch a {
	case Aarch64:
		return "aarch64"
	case Armv7hf:
		return "armv7hf"
	default:
		return "unknown"
	}
}

// Triple returns the GNU compiler triple for the architecture.
func (a Architecture) Triple() string {
	switch a {
	case Aarch64:
		return "aarch64-linux-gnu"
	case Armv7hf:
		return "arm-linux-gnueabihf"
	default:
		return "unknown"
	}
}

// String implements fmt.Stringer and returns the canonical name.
func (a Architecture) String() string {
	return a.Name()
}
