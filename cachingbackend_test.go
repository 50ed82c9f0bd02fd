package vellum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// countingBackend wraps MemoryBackend to count Read calls, so tests can
// observe whether CachingBackend actually avoided a redundant call.
type countingBackend struct {
	*MemoryBackend[string, string]
	reads int
}

func (c *countingBackend) Read(k string) (string, bool, error) {
	c.reads++
	return c.MemoryBackend.Read(k)
}

func TestCachingBackendReadThrough(t *testing.T) {
	t.Parallel()

	inner := &countingBackend{MemoryBackend: NewMemoryBackend[string, string]()}
	require.NoError(t, inner.Write("a", "1"))

	cb, err := NewCachingBackend[string, string](inner, 16)
	require.NoError(t, err)

	v, ok, err := cb.Read("a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", v)
	require.Equal(t, 1, inner.reads)

	v, ok, err = cb.Read("a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", v)
	require.Equal(t, 1, inner.reads, "second read should be served from cache")
}

func TestCachingBackendInvalidatesOnWrite(t *testing.T) {
	t.Parallel()

	inner := NewMemoryBackend[string, string]()
	cb, err := NewCachingBackend[string, string](inner, 16)
	require.NoError(t, err)

	require.NoError(t, cb.Write("a", "1"))
	v, ok, err := cb.Read("a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", v)

	require.NoError(t, cb.Delete("a"))
	_, ok, err = cb.Read("a")
	require.NoError(t, err)
	require.False(t, ok)
}
