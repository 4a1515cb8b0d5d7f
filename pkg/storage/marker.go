package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"github.com/pixperk/markerlock/pkg/metrics"
	"github.com/pixperk/markerlock/pkg/types"
	"go.uber.org/zap"
)

// result of reading a marker file
type ReadStatus uint

const (
	ReadOK        ReadStatus = iota + 1 //record decoded
	ReadNotFound                        //absent, or unreadable and treated as absent
	ReadContended                       //exclusively held by another open handle
)

func (s ReadStatus) String() string {
	switch s {
	case ReadOK:
		return "ok"
	case ReadNotFound:
		return "not_found"
	case ReadContended:
		return "contended"
	default:
		return "unknown"
	}
}

// result of an exclusive create
type CreateStatus uint

const (
	CreateOK     CreateStatus = iota + 1
	CreateExists              //someone else created the marker first
	CreateFailed
)

var errWouldBlock = errors.New("marker is locked by another handle")

// swapped in tests to simulate filesystems without hard links
var link = os.Link

// Store wraps every filesystem operation on marker files and absorbs their
// failures: reads collapse into a ReadStatus, writes into a bool or
// CreateStatus, deletes never fail.
// The store keeps no per-path state, one store can serve any number of locks.
type Store struct {
	logger *zap.Logger
}

func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{logger: logger}
}

// probe for the marker, any stat error counts as absent
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// reads and decodes the marker
// contention is only reported when another handle holds an exclusive advisory
// lock on the file, every other failure is logged and reported as not found so
// a corrupt marker cannot wedge the lock forever
func (s *Store) Read(path string) (types.OwnershipRecord, ReadStatus) {
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.failure("read", path, err)
		}
		return types.OwnershipRecord{}, ReadNotFound
	}
	defer f.Close()

	if err := lockShared(f); err != nil {
		if errors.Is(err, errWouldBlock) {
			s.logger.Debug("marker held exclusively by another handle", zap.String("lock", path))
			return types.OwnershipRecord{}, ReadContended
		}
		s.failure("read", path, err)
		return types.OwnershipRecord{}, ReadNotFound
	}
	defer unlock(f) //nolint:errcheck

	var rec types.OwnershipRecord
	if err := json.NewDecoder(f).Decode(&rec); err != nil {
		s.failure("read", path, fmt.Errorf("decode marker: %w", err))
		return types.OwnershipRecord{}, ReadNotFound
	}

	return rec, ReadOK
}

// creates or replaces the marker
// the record is written to a sibling temp file and renamed over the marker,
// so a concurrent reader sees either the old record or the new one
func (s *Store) Write(path string, rec types.OwnershipRecord) bool {
	tmp, err := writeTemp(path, rec)
	if err != nil {
		s.failure("write", path, err)
		return false
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		s.failure("write", path, err)
		return false
	}

	return true
}

// creates the marker only if it does not exist yet
// a fully written temp file is hard linked into place, link fails atomically
// when the marker already exists
func (s *Store) Create(path string, rec types.OwnershipRecord) CreateStatus {
	tmp, err := writeTemp(path, rec)
	if err != nil {
		s.failure("create", path, err)
		return CreateFailed
	}
	defer os.Remove(tmp) //nolint:errcheck

	err = link(tmp, path)
	if err == nil {
		return CreateOK
	}
	if errors.Is(err, fs.ErrExist) {
		return CreateExists
	}

	//filesystems without hard links, fall back to O_EXCL
	s.logger.Debug("hard link unavailable, creating marker in place",
		zap.String("lock", path), zap.Error(err))
	return s.createInPlace(path, rec)
}

func (s *Store) createInPlace(path string, rec types.OwnershipRecord) CreateStatus {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return CreateExists
		}
		s.failure("create", path, err)
		return CreateFailed
	}

	if err := encode(f, rec); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		s.failure("create", path, err)
		return CreateFailed
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		s.failure("create", path, err)
		return CreateFailed
	}

	return CreateOK
}

// writes the record and keeps the file open with an exclusive advisory lock
// while the returned handle stays open, Read reports the marker as contended
// replace=false fails with CreateExists when a marker is already present
func (s *Store) Retain(path string, rec types.OwnershipRecord, replace bool) (*Retained, CreateStatus) {
	tmp := tempName(path)
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
	if err != nil {
		s.failure("retain", path, err)
		return nil, CreateFailed
	}

	discard := func() {
		_ = f.Close()
		_ = os.Remove(tmp)
	}

	if err := lockExclusive(f); err != nil {
		discard()
		s.failure("retain", path, err)
		return nil, CreateFailed
	}
	if err := encode(f, rec); err != nil {
		discard()
		s.failure("retain", path, err)
		return nil, CreateFailed
	}

	if replace {
		err = os.Rename(tmp, path)
	} else {
		err = link(tmp, path)
		if err == nil {
			_ = os.Remove(tmp)
		}
	}
	if err != nil {
		discard()
		if replace {
			s.failure("retain", path, err)
			return nil, CreateFailed
		}
		if errors.Is(err, fs.ErrExist) {
			return nil, CreateExists
		}

		s.logger.Debug("hard link unavailable, retaining marker in place",
			zap.String("lock", path), zap.Error(err))
		return s.retainInPlace(path, rec)
	}

	return &Retained{path: path, f: f}, CreateOK
}

// exclusive create directly on the marker path
// the file is locked before the record is written, a reader that slips in
// first sees an empty marker
func (s *Store) retainInPlace(path string, rec types.OwnershipRecord) (*Retained, CreateStatus) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, CreateExists
		}
		s.failure("retain", path, err)
		return nil, CreateFailed
	}

	if err := lockExclusive(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		s.failure("retain", path, err)
		return nil, CreateFailed
	}
	if err := encode(f, rec); err != nil {
		_ = unlock(f)
		_ = f.Close()
		_ = os.Remove(path)
		s.failure("retain", path, err)
		return nil, CreateFailed
	}

	return &Retained{path: path, f: f}, CreateOK
}

// best effort removal, a marker that is already gone is not an error
func (s *Store) Delete(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.failure("delete", path, err)
	}
}

func (s *Store) failure(op, path string, err error) {
	metrics.StoreFailuresTotal.WithLabelValues(op).Inc()
	s.logger.Debug("marker "+op+" failed",
		zap.String("lock", path),
		zap.Error(err))
}

func tempName(path string) string {
	return fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
}

func writeTemp(path string, rec types.OwnershipRecord) (string, error) {
	tmp := tempName(path)
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create temp marker: %w", err)
	}

	if err := encode(f, rec); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("close temp marker: %w", err)
	}

	return tmp, nil
}

func encode(f *os.File, rec types.OwnershipRecord) error {
	if err := json.NewEncoder(f).Encode(rec); err != nil {
		return fmt.Errorf("encode marker: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync marker: %w", err)
	}
	return nil
}
