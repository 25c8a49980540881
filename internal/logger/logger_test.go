package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"panic": zapcore.PanicLevel,
		"fatal": zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestFromContext_Fallback verifies the global logger is returned for a bare context.
func TestFromContext_Fallback(t *testing.T) {
	t.Parallel()
	require.Same(t, global, FromContext(context.Background()))
}

// TestToContext_Roundtrip verifies a stored logger is extracted unchanged.
func TestToContext_Roundtrip(t *testing.T) {
	t.Parallel()

	l := zap.NewNop().Sugar()
	ctx := ToContext(context.Background(), l)
	require.Same(t, l, FromContext(ctx))

	// A named logger is a new instance derived from the stored one.
	named := WithName(ctx, "test")
	require.NotSame(t, l, FromContext(named))
}
