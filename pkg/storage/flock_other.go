//go:build !unix

package storage

import "os"

// no advisory locks on this platform, markers are never reported as contended

func lockShared(*os.File) error { return nil }

func lockExclusive(*os.File) error { return nil }

func unlock(*os.File) error { return nil }
