package lock

import (
	"fmt"
	"sync"
	tm "time"

	"github.com/pixperk/markerlock/pkg/identity"
	"github.com/pixperk/markerlock/pkg/metrics"
	"github.com/pixperk/markerlock/pkg/storage"
	"github.com/pixperk/markerlock/pkg/time"
	"github.com/pixperk/markerlock/pkg/types"
	"go.uber.org/zap"
)

// DefaultTimeout is the staleness timeout used when none is configured.
const DefaultTimeout = 30 * tm.Second

// Store is the marker persistence a Handle works against.
// *storage.Store is the filesystem implementation.
type Store interface {
	Exists(path string) bool
	Read(path string) (types.OwnershipRecord, storage.ReadStatus)
	Write(path string, rec types.OwnershipRecord) bool
	Create(path string, rec types.OwnershipRecord) storage.CreateStatus
	Retain(path string, rec types.OwnershipRecord, replace bool) (*storage.Retained, storage.CreateStatus)
	Delete(path string)
}

// Handle is one caller's view of a single marker file.
type Handle struct {
	mu sync.Mutex

	name     string
	strategy Strategy
	timeout  tm.Duration
	elapsed  time.ElapsedPolicy

	store    Store
	identity identity.Provider
	clock    time.Clock
	logger   *zap.Logger

	retained *storage.Retained // StrategyRetention only
	held     bool              // result of the last acquisition, feeds the locks_held gauge
}

// New creates a handle for the marker at name. The name is used as the file
// path as given.
func New(name string, opts ...Option) (*Handle, error) {
	if name == "" {
		return nil, types.ErrEmptyLockName
	}

	h := &Handle{
		name:     name,
		strategy: StrategyTimestamp,
		timeout:  DefaultTimeout,
		elapsed:  time.ElapsedAbsolute,
		identity: identity.System{},
		clock:    time.SystemClock{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	switch h.strategy {
	case StrategyTimestamp, StrategyRetention:
	default:
		return nil, fmt.Errorf("%w: %d", types.ErrUnknownStrategy, h.strategy)
	}
	switch h.elapsed {
	case time.ElapsedAbsolute, time.ElapsedForward:
	default:
		return nil, fmt.Errorf("%w: %d", types.ErrUnknownElapsedMode, h.elapsed)
	}
	if h.timeout <= 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidTimeout, h.timeout)
	}

	if h.store == nil {
		h.store = storage.NewStore(h.logger)
	}
	h.logger = h.logger.With(
		zap.String("lock", name),
		zap.Stringer("strategy", h.strategy))

	return h, nil
}

func (h *Handle) Name() string {
	return h.name
}

func (h *Handle) Strategy() Strategy {
	return h.strategy
}

func (h *Handle) Timeout() tm.Duration {
	return h.timeout
}

// TryAcquire attempts to take or renew the lock without blocking. False means
// the lock could not be acquired for any reason; the log says which.
func (h *Handle) TryAcquire() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.tryAcquireLocked()
}

func (h *Handle) tryAcquireLocked() bool {
	start := tm.Now()

	var outcome types.Outcome
	switch h.strategy {
	case StrategyRetention:
		outcome = h.acquireRetained()
	default:
		outcome = h.acquireTimestamp()
	}

	metrics.AcquireDuration.WithLabelValues(h.strategy.String()).Observe(tm.Since(start).Seconds())
	metrics.AcquireTotal.WithLabelValues(h.strategy.String(), outcome.String()).Inc()
	if outcome == types.OutcomeStale {
		metrics.StaleTakeoverTotal.Inc()
	}

	h.setHeld(outcome.Acquired())
	return outcome.Acquired()
}

// Release gives the lock up if this handle owns it. It always returns true;
// a marker that cannot be deleted is logged and left behind.
func (h *Handle) Release() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.strategy {
	case StrategyRetention:
		h.releaseRetained()
	default:
		h.releaseTimestamp()
	}
	return true
}

// Status is a read-only observation of a marker.
type Status struct {
	State     types.State
	Record    types.OwnershipRecord
	HasRecord bool
	Age       tm.Duration
}

// Inspect reports the current lock state without writing anything.
func (h *Handle) Inspect() Status {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.retained.Held() {
		return Status{State: types.StateHeldByMe}
	}
	if !h.store.Exists(h.name) {
		return Status{State: types.StateFree}
	}

	rec, status := h.store.Read(h.name)
	switch status {
	case storage.ReadContended:
		return Status{State: types.StateIndeterminate}
	case storage.ReadNotFound:
		return Status{State: types.StateFree}
	}

	now := h.clock.Now()
	st := Status{
		Record:    rec,
		HasRecord: true,
		Age:       h.elapsed.Elapsed(now, rec.AcquiredTime()),
	}
	switch {
	case rec.OwnedBy(h.identity.Current()):
		st.State = types.StateHeldByMe
	case h.strategy == StrategyTimestamp && h.elapsed.Expired(now, rec.AcquiredTime(), h.timeout):
		st.State = types.StateStale
	default:
		st.State = types.StateHeldByOther
	}
	return st
}

func (h *Handle) setHeld(held bool) {
	if held == h.held {
		return
	}
	h.held = held
	if held {
		metrics.LocksHeld.Inc()
	} else {
		metrics.LocksHeld.Dec()
	}
}

func ownerFields(rec types.OwnershipRecord) []zap.Field {
	return []zap.Field{
		zap.Int("owner_pid", rec.PID),
		zap.String("owner_process", rec.ProcessName),
		zap.String("owner_host", rec.HostName),
	}
}
