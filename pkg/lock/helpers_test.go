package lock

import (
	"os"
	"path/filepath"
	"testing"
	tm "time"

	"github.com/pixperk/markerlock/pkg/identity"
	"github.com/pixperk/markerlock/pkg/storage"
	"github.com/pixperk/markerlock/pkg/time"
	"github.com/pixperk/markerlock/pkg/types"
	"github.com/stretchr/testify/require"
)

var (
	t0 = tm.Unix(1700000000, 0)

	ownerA = types.Identity{PID: 100, ProcessName: "proc-a", HostName: "h1"}
	ownerB = types.Identity{PID: 200, ProcessName: "proc-b", HostName: "h2"}
)

func lockPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

func newTestHandle(t *testing.T, path string, id types.Identity, clock time.Clock, opts ...Option) *Handle {
	t.Helper()
	base := []Option{
		WithIdentity(identity.Static(id)),
		WithClock(clock),
		WithTimeout(30 * tm.Second),
	}
	h, err := New(path, append(base, opts...)...)
	require.NoError(t, err)
	return h
}

// reads the marker straight from disk
func readMarker(t *testing.T, path string) types.OwnershipRecord {
	t.Helper()
	rec, status := storage.NewStore(nil).Read(path)
	require.Equal(t, storage.ReadOK, status, "marker should be readable")
	return rec
}

func writeMarker(t *testing.T, path string, owner types.Identity, at tm.Time) {
	t.Helper()
	require.True(t, storage.NewStore(nil).Write(path, types.NewRecord(owner, at)))
}

func rawMarker(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

// store with overridable operations, everything else hits the filesystem
type fakeStore struct {
	*storage.Store

	exists func(path string) bool
	read   func(path string) (types.OwnershipRecord, storage.ReadStatus)
	write  func(path string, rec types.OwnershipRecord) bool
	create func(path string, rec types.OwnershipRecord) storage.CreateStatus
	retain func(path string, rec types.OwnershipRecord, replace bool) (*storage.Retained, storage.CreateStatus)
	delete func(path string)

	writes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{Store: storage.NewStore(nil)}
}

func (f *fakeStore) Exists(path string) bool {
	if f.exists != nil {
		return f.exists(path)
	}
	return f.Store.Exists(path)
}

func (f *fakeStore) Read(path string) (types.OwnershipRecord, storage.ReadStatus) {
	if f.read != nil {
		return f.read(path)
	}
	return f.Store.Read(path)
}

func (f *fakeStore) Write(path string, rec types.OwnershipRecord) bool {
	f.writes++
	if f.write != nil {
		return f.write(path, rec)
	}
	return f.Store.Write(path, rec)
}

func (f *fakeStore) Create(path string, rec types.OwnershipRecord) storage.CreateStatus {
	if f.create != nil {
		return f.create(path, rec)
	}
	return f.Store.Create(path, rec)
}

func (f *fakeStore) Retain(path string, rec types.OwnershipRecord, replace bool) (*storage.Retained, storage.CreateStatus) {
	if f.retain != nil {
		return f.retain(path, rec, replace)
	}
	return f.Store.Retain(path, rec, replace)
}

func (f *fakeStore) Delete(path string) {
	if f.delete != nil {
		f.delete(path)
		return
	}
	f.Store.Delete(path)
}
