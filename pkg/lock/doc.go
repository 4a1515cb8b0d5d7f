// Package lock implements advisory mutual exclusion between processes using
// a marker file on shared storage.
//
// A [Handle] guards one marker path. Cooperating processes call
// [Handle.TryAcquire] and [Handle.Release]; nothing stops an uncooperative
// process from touching the file. Neither call returns an error: storage
// failures are absorbed by the store, logged at debug level and turned into a
// false result.
//
// # Strategies
//
// [StrategyTimestamp] (the default) persists the owner's pid, process name,
// host name and acquisition time. The same pid and host re-acquiring renews
// the record. A record older than the configured timeout belongs to an
// abandoned owner and is overwritten by the next caller that tries to
// acquire. There is no background expiry.
//
// [StrategyRetention] tracks ownership by keeping an exclusively locked
// descriptor open on the marker for as long as the handle holds the lock.
// Any marker that is present and readable is taken over without looking at
// its owner or age, so this strategy only suits exclusion inside a single
// host where holders keep their descriptor open. It is not a distributed
// lock.
//
// # Consistency
//
// Locking is best effort. A marker is first created with an exclusive hard
// link and later replaced with an atomic rename, so readers never see a
// partial record, but the window between reading a record and replacing it is
// not closed: two processes reclaiming the same stale marker can both
// succeed. Clock skew between hosts shifts staleness decisions; see
// [WithElapsedPolicy]. Ownership is keyed on pid and host name, so a reused
// pid on the same host is indistinguishable from the original owner.
//
// # Usage
//
//	h, err := lock.New("/shared/locks/job-42.lock", lock.WithTimeout(30*time.Second))
//	if err != nil {
//	    return err
//	}
//	if !h.TryAcquire() {
//	    return errBusy
//	}
//	defer h.Release()
//
// A Handle is safe for concurrent use by multiple goroutines.
package lock
