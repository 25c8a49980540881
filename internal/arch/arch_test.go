package arch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParse verifies mapping from names and triples to architectures and rejection of unknown values.
func TestParse(t *testing.T) {
	t.Parallel()

	cases := map[string]Architecture{
		"aarch64":             Aarch64,
		"AARCH64":             Aarch64,
		"aarch64-linux-gnu":   Aarch64,
		"armv7hf":             Armv7hf,
		" armv7hf ":           Armv7hf,
		"arm-linux-gnueabihf": Armv7hf,
	}
	for s, want := range cases {
		got, err := Parse(s)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := Parse("riscv64")
	require.ErrorIs(t, err, errUnsupported)
}

// TestNameAndTriple verifies canonical names and compiler triples.
func TestNameAndTriple(t *testing.T) {
	t.Parallel()

	require.Equal(t, "aarch64", Aarch64.Name())
	require.Equal(t, "aarch64-linux-gnu", Aarch64.Triple())
	require.Equal(t, "armv7hf", Armv7hf.Name())
	require.Equal(t, "arm-linux-gnueabihf", Armv7hf.Triple())
	require.Equal(t, Aarch64.Name(), Aarch64.String())
}
