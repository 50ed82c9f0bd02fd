//go:build linux || darwin

package vellum

import (
	"os"

	"golang.org/x/sys/unix"
)

func lockDir(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}

func unlockDir(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
