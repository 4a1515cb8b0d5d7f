//go:build unix

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pixperk/markerlock/pkg/storage"
	"github.com/pixperk/markerlock/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPassesExitStatusAndReleases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.lock")

	_, err := execute(t, "run", path, "--", "sh", "-c", "exit 3")
	assert.Equal(t, 3, exitCode(err))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "marker should be released after the command exits")
}

func TestRunHoldsLockWhileCommandRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.lock")
	seen := filepath.Join(t.TempDir(), "seen")

	// the command copies the marker while it runs
	_, err := execute(t, "run", path, "--", "cp", path, seen)
	require.NoError(t, err)

	rec, status := storage.NewStore(nil).Read(seen)
	require.Equal(t, storage.ReadOK, status)
	assert.Equal(t, os.Getpid(), rec.PID)
}

func TestRunRefusesBusyLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.lock")
	rec := types.NewRecord(types.Identity{PID: 200, ProcessName: "other", HostName: "elsewhere"}, time.Now())
	require.True(t, storage.NewStore(nil).Write(path, rec))

	_, err := execute(t, "run", "--timeout", "1h", path, "--", "true")
	assert.ErrorIs(t, err, types.ErrLockBusy)
	assert.Equal(t, exitTempFail, exitCode(err))

	got, status := storage.NewStore(nil).Read(path)
	require.Equal(t, storage.ReadOK, status)
	assert.Equal(t, rec, got, "busy lock must be left alone")
}

func TestRunRetentionStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.lock")

	_, err := execute(t, "run", "--strategy", "retention", path, "--", "true")
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
