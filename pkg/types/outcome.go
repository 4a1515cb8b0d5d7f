package types

// outcome of a single acquisition decision
// these are never returned to callers of the lock handle, they drive logs and metrics
type Outcome uint

const (
	OutcomeFree           Outcome = iota + 1 //no marker, acquisition proceeds
	OutcomeContended                         //live owner or exclusive handle elsewhere, nothing mutated
	OutcomeStale                             //owner timed out, marker overwritten
	OutcomeSelfOwned                         //we already own it, renewed
	OutcomeStorageFailure                    //marker could not be written
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFree:
		return "free"
	case OutcomeContended:
		return "contended"
	case OutcomeStale:
		return "stale"
	case OutcomeSelfOwned:
		return "self_owned"
	case OutcomeStorageFailure:
		return "storage_failure"
	default:
		return "unknown"
	}
}

// whether the caller ends up holding the lock
func (o Outcome) Acquired() bool {
	switch o {
	case OutcomeFree, OutcomeStale, OutcomeSelfOwned:
		return true
	default:
		return false
	}
}

// lock state as derived from store observations, never persisted
type State uint

const (
	StateFree State = iota + 1
	StateHeldByMe
	StateHeldByOther
	StateStale
	StateIndeterminate
)

func (s State) String() string {
	switch s {
	case StateFree:
		return "free"
	case StateHeldByMe:
		return "held-by-me"
	case StateHeldByOther:
		return "held-by-other"
	case StateStale:
		return "stale"
	case StateIndeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}
