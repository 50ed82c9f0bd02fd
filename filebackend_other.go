//go:build !linux && !darwin

package vellum

import "os"

// lockDir is a no-op on platforms without an advisory flock primitive
// wired here; FileBackend still functions, without the cross-process
// guarantee.
func lockDir(f *os.File) error { return nil }

func unlockDir(f *os.File) error { return nil }
