package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pixperk/markerlock/pkg/config"
	"github.com/pixperk/markerlock/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: exitOK},
		{name: "child status", err: &childExitError{code: 3}, want: 3},
		{name: "wrapped child status", err: fmt.Errorf("run: %w", &childExitError{code: 42}), want: 42},
		{name: "busy", err: fmt.Errorf("%w: job-42", types.ErrLockBusy), want: exitTempFail},
		{name: "invalid config", err: fmt.Errorf("%w: log.level", config.ErrInvalidConfig), want: exitConfig},
		{name: "empty lock name", err: types.ErrEmptyLockName, want: exitConfig},
		{name: "interrupted", err: context.Canceled, want: exitSignaled},
		{name: "anything else", err: errors.New("boom"), want: exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
