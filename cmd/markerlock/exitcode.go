package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/pixperk/markerlock/pkg/config"
	"github.com/pixperk/markerlock/pkg/types"
)

// sysexits.h values
const (
	exitOK       = 0
	exitFailure  = 1
	exitTempFail = 75
	exitConfig   = 78
	exitSignaled = 130
)

// returned when the child command exits non-zero
type childExitError struct {
	code int
}

func (e *childExitError) Error() string {
	return fmt.Sprintf("command exited with status %d", e.code)
}

// maps errors onto process exit codes
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var child *childExitError
	switch {
	case errors.As(err, &child):
		return child.code
	case errors.Is(err, types.ErrLockBusy):
		return exitTempFail
	case errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, types.ErrEmptyLockName),
		errors.Is(err, types.ErrInvalidTimeout),
		errors.Is(err, types.ErrUnknownStrategy),
		errors.Is(err, types.ErrUnknownElapsedMode):
		return exitConfig
	case errors.Is(err, context.Canceled):
		return exitSignaled
	default:
		return exitFailure
	}
}
