package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// acquisition attempts by decision
	// labels: strategy (timestamp/retention), outcome (free/contended/stale/self_owned/storage_failure)
	// success rate = outcome in (free, stale, self_owned) / total
	AcquireTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "markerlock_acquire_total",
			Help: "total number of lock acquisition attempts",
		},
		[]string{"strategy", "outcome"},
	)

	// time spent in a single acquisition attempt, dominated by filesystem latency
	// network filesystems show up here first
	AcquireDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "markerlock_acquire_duration_seconds",
			Help:    "time taken by a lock acquisition attempt",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 100us to ~200ms
		},
		[]string{"strategy"},
	)

	// releases that actually removed a marker
	ReleaseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "markerlock_release_total",
			Help: "total number of lock releases that removed the marker",
		},
		[]string{"strategy"},
	)

	// markers reclaimed from an owner that exceeded the timeout
	// spikes mean crashed holders or clock skew between hosts
	StaleTakeoverTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "markerlock_stale_takeover_total",
			Help: "total number of stale locks forcibly reclaimed",
		},
	)

	// storage errors absorbed by the store
	// labels: operation (read/write/create/retain/delete)
	StoreFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "markerlock_store_failures_total",
			Help: "total number of marker file operations that failed",
		},
		[]string{"operation"},
	)

	// locks currently held by handles in this process
	LocksHeld = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "markerlock_locks_held",
			Help: "current number of locks held by this process",
		},
	)

	// always 1 while the process is up
	Up = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "markerlock_up",
			Help: "whether the process is up (always 1 when running)",
		},
	)
)

func init() {
	Up.Set(1)
}
