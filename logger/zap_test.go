package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapAdapterWritesThroughWrappedLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	l := NewZap(base)
	l.Warn("careful", "key", "k1")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "careful", entries[0].Message)
}
