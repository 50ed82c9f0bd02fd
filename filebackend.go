package vellum

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// ErrUnsafeKey is returned when a key cannot be safely mapped to a file
// name: one containing a path separator, or equal to "." or "..", would
// otherwise let Read/Write/Delete/Exists escape the sharded directory
// tree FileBackend is confined to.
var ErrUnsafeKey = errors.New("key is not safe to use as a file name")

// FileBackend stores each key as one file under a sharded directory
// tree rooted at dir. Keys are strings and values are byte slices;
// wrap with an adapting Backend[K, V] if the engine's K/V differ.
// Opening a FileBackend takes an advisory lock on dir for its whole
// lifetime, so a second process cannot open the same directory as a
// writer concurrently.
type FileBackend struct {
	dir      string
	shards   int
	lockFile *os.File
}

const defaultShards = 256

// NewFileBackend creates dir if needed and opens a FileBackend rooted
// there, taking an advisory exclusive lock on the directory.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backend dir: %w", err)
	}

	lockPath := filepath.Join(dir, ".lock")
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := lockDir(lockFile); err != nil {
		lockFile.Close()
		return nil, fmt.Errorf("lock backend dir %s: %w", dir, err)
	}

	fb := &FileBackend{dir: dir, shards: defaultShards, lockFile: lockFile}
	for i := 0; i < fb.shards; i++ {
		if err := os.MkdirAll(fb.shardDir(i), 0o755); err != nil {
			unlockDir(lockFile)
			lockFile.Close()
			return nil, fmt.Errorf("create shard dir: %w", err)
		}
	}

	return fb, nil
}

// Close releases the directory lock. It does not delete any data.
func (f *FileBackend) Close() error {
	unlockDir(f.lockFile)
	return f.lockFile.Close()
}

func (f *FileBackend) shardDir(shard int) string {
	return filepath.Join(f.dir, fmt.Sprintf("%02x", shard))
}

// isSafeKey reports whether key can be used as a single path component
// without escaping its shard directory: no path separators, and not a
// reference to the current or parent directory.
func isSafeKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	return filepath.Base(key) == key
}

func (f *FileBackend) pathFor(key string) (string, error) {
	if !isSafeKey(key) {
		return "", ErrUnsafeKey
	}
	shard := int(xxhash.Sum64String(key) % uint64(f.shards))
	return filepath.Join(f.shardDir(shard), key), nil
}

func (f *FileBackend) Read(key string) ([]byte, bool, error) {
	path, err := f.pathFor(key)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (f *FileBackend) Write(key string, value []byte) error {
	path, err := f.pathFor(key)
	if err != nil {
		return err
	}
	return os.WriteFile(path, value, 0o644)
}

func (f *FileBackend) Delete(key string) error {
	path, err := f.pathFor(key)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (f *FileBackend) Exists(key string) (bool, error) {
	path, err := f.pathFor(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
