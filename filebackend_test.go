package vellum

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileBackend(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fb, err := NewFileBackend(dir)
	require.NoError(t, err)
	defer fb.Close()

	_, ok, err := fb.Read("a")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, fb.Write("a", []byte("hello")))

	v, ok, err := fb.Read("a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("hello"), v)

	exists, err := fb.Exists("a")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, fb.Delete("a"))

	exists, err = fb.Exists("a")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestFileBackendLockRejectsSecondOpener(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fb, err := NewFileBackend(dir)
	require.NoError(t, err)
	defer fb.Close()

	_, err = NewFileBackend(dir)
	require.Error(t, err)
}

func TestFileBackendShardsAcrossKeys(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fb, err := NewFileBackend(dir)
	require.NoError(t, err)
	defer fb.Close()

	for i := 0; i < 50; i++ {
		key := "key" + strconv.Itoa(i)
		require.NoError(t, fb.Write(key, []byte{byte(i)}))
	}

	for i := 0; i < 50; i++ {
		key := "key" + strconv.Itoa(i)
		v, ok, err := fb.Read(key)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, []byte{byte(i)}, v)
	}
}

func TestFileBackendRejectsPathTraversalKeys(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fb, err := NewFileBackend(dir)
	require.NoError(t, err)
	defer fb.Close()

	unsafe := []string{"../outside", "a/b", "..", ".", "/etc/passwd"}
	for _, key := range unsafe {
		require.ErrorIs(t, fb.Write(key, []byte("x")), ErrUnsafeKey)
		_, _, err := fb.Read(key)
		require.ErrorIs(t, err, ErrUnsafeKey)
		require.ErrorIs(t, fb.Delete(key), ErrUnsafeKey)
		_, err = fb.Exists(key)
		require.ErrorIs(t, err, ErrUnsafeKey)
	}
}
