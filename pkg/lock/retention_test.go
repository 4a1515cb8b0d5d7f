package lock

import (
	"os"
	"testing"
	tm "time"

	"github.com/pixperk/markerlock/pkg/storage"
	"github.com/pixperk/markerlock/pkg/time"
	"github.com/pixperk/markerlock/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRetentionHandle(t *testing.T, path string, id types.Identity) *Handle {
	t.Helper()
	return newTestHandle(t, path, id, time.NewManualClock(t0), WithStrategy(StrategyRetention))
}

func TestRetentionAcquireAndRelease(t *testing.T) {
	path := lockPath(t, "retained.lock")
	h := newRetentionHandle(t, path, ownerA)

	require.True(t, h.TryAcquire())
	assert.Equal(t, types.StateHeldByMe, h.Inspect().State)

	_, err := os.Stat(path)
	require.NoError(t, err, "marker should exist while held")

	// re-entrant
	assert.True(t, h.TryAcquire())

	assert.True(t, h.Release())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "marker should be deleted on release")

	assert.True(t, h.Release(), "second release is a no-op")
}

func TestRetentionTakesOverUnheldMarker(t *testing.T) {
	path := lockPath(t, "abandoned.lock")
	// fresh marker from a live-looking owner, retention does not look at it
	writeMarker(t, path, ownerB, t0)

	h := newRetentionHandle(t, path, ownerA)
	require.True(t, h.TryAcquire())
	defer h.Release()

	h.mu.Lock()
	held := h.retained.Held()
	h.mu.Unlock()
	assert.True(t, held)
}

func TestRetentionReleaseWithoutAcquireKeepsMarker(t *testing.T) {
	path := lockPath(t, "foreign.lock")
	writeMarker(t, path, ownerB, t0)

	h := newRetentionHandle(t, path, ownerA)
	assert.True(t, h.Release())
	assert.Equal(t, ownerB, readMarker(t, path).Owner())
}

func TestRetentionIgnoresTimeout(t *testing.T) {
	path := lockPath(t, "no-timeout.lock")
	writeMarker(t, path, ownerB, t0.Add(-tm.Hour))

	h := newRetentionHandle(t, path, ownerA)
	st := h.Inspect()
	assert.Equal(t, types.StateHeldByOther, st.State, "retention never reports stale")
	assert.Equal(t, tm.Hour, st.Age)
}

// TestRetentionMarkerVanishesBeforeRead tests that a marker deleted between
// the existence probe and the read is acquired
func TestRetentionMarkerVanishesBeforeRead(t *testing.T) {
	path := lockPath(t, "vanish.lock")

	store := newFakeStore()
	store.exists = func(string) bool { return true }

	h := newTestHandle(t, path, ownerA, time.NewManualClock(t0),
		WithStrategy(StrategyRetention), WithStore(store))
	require.True(t, h.TryAcquire())
	defer h.Release()

	h.mu.Lock()
	held := h.retained.Held()
	h.mu.Unlock()
	assert.True(t, held)

	_, err := os.Stat(path)
	assert.NoError(t, err, "marker should be recreated")
}

// TestRetentionCreateRaceReadsWinner tests that losing the exclusive create
// falls through to judging the winner's marker
func TestRetentionCreateRaceReadsWinner(t *testing.T) {
	path := lockPath(t, "race.lock")

	var creates, replaces int
	store := newFakeStore()
	store.exists = func(string) bool { return false }
	store.retain = func(p string, rec types.OwnershipRecord, replace bool) (*storage.Retained, storage.CreateStatus) {
		if !replace {
			creates++
			//another process links its marker in just before us, then exits
			writeMarker(t, p, ownerB, t0)
			return nil, storage.CreateExists
		}
		replaces++
		return store.Store.Retain(p, rec, replace)
	}

	h := newTestHandle(t, path, ownerA, time.NewManualClock(t0),
		WithStrategy(StrategyRetention), WithStore(store))
	require.True(t, h.TryAcquire(), "an unheld marker is taken over")
	defer h.Release()

	assert.Equal(t, 1, creates)
	assert.Equal(t, 1, replaces)
}

// TestRetentionCreateFailureRefuses tests that a failed create is not retried
func TestRetentionCreateFailureRefuses(t *testing.T) {
	path := lockPath(t, "failed.lock")

	store := newFakeStore()
	store.retain = func(string, types.OwnershipRecord, bool) (*storage.Retained, storage.CreateStatus) {
		return nil, storage.CreateFailed
	}

	h := newTestHandle(t, path, ownerA, time.NewManualClock(t0),
		WithStrategy(StrategyRetention), WithStore(store))
	assert.False(t, h.TryAcquire())
	assert.False(t, store.Exists(path))
}
