package lock

import (
	tm "time"

	"github.com/pixperk/markerlock/pkg/identity"
	"github.com/pixperk/markerlock/pkg/time"
	"go.uber.org/zap"
)

// Option configures a Handle.
type Option func(*Handle)

func WithStrategy(s Strategy) Option {
	return func(h *Handle) { h.strategy = s }
}

// WithTimeout sets the age after which another owner's marker is stale.
// Ignored by StrategyRetention.
func WithTimeout(d tm.Duration) Option {
	return func(h *Handle) { h.timeout = d }
}

// WithElapsedPolicy chooses how marker age is computed. The default,
// time.ElapsedAbsolute, ages a future-dated marker as if it were in the past.
func WithElapsedPolicy(p time.ElapsedPolicy) Option {
	return func(h *Handle) { h.elapsed = p }
}

// WithLogger sets the diagnostic sink. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Handle) {
		if l != nil {
			h.logger = l
		}
	}
}

func WithClock(c time.Clock) Option {
	return func(h *Handle) { h.clock = c }
}

func WithIdentity(p identity.Provider) Option {
	return func(h *Handle) { h.identity = p }
}

// WithStore replaces the filesystem store. The store's own logger is not
// changed.
func WithStore(s Store) Option {
	return func(h *Handle) { h.store = s }
}
