//go:build unix

package storage

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func lockShared(f *os.File) error {
	return flock(f, unix.LOCK_SH)
}

func lockExclusive(f *os.File) error {
	return flock(f, unix.LOCK_EX)
}

func unlock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}

// non-blocking flock, a lock held elsewhere comes back as errWouldBlock
func flock(f *os.File, how int) error {
	err := unix.Flock(int(f.Fd()), how|unix.LOCK_NB)
	// EWOULDBLOCK and EAGAIN are distinct on some older systems, check both
	if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) {
		return errWouldBlock
	}
	return err
}
