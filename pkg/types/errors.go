package types

import "errors"

var (
	// Construction errors
	ErrEmptyLockName      = errors.New("lock name is empty")
	ErrInvalidTimeout     = errors.New("invalid lock timeout")
	ErrUnknownStrategy    = errors.New("unknown acquisition strategy")
	ErrUnknownElapsedMode = errors.New("unknown elapsed policy")

	// Acquisition errors, only surfaced by the command line tool
	ErrLockBusy = errors.New("lock is held by another process")
	ErrLockLost = errors.New("lock ownership was lost")
)
