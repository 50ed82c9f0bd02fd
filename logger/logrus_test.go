package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLogrusAdapterWritesThroughWrappedLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.JSONFormatter{})

	l := NewLogrus(base)
	l.Error("boom", "key", "k1")

	require.Contains(t, buf.String(), "boom")
	require.Contains(t, buf.String(), "k1")
}
