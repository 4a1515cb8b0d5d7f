package types

import "time"

// identity of a process that may own a marker
// only PID and HostName take part in ownership checks, ProcessName is diagnostic
type Identity struct {
	PID         int
	ProcessName string
	HostName    string
}

// reports whether two identities refer to the same owner
// pid reuse on one host makes this ambiguous, which is a known limitation
func (i Identity) Matches(other Identity) bool {
	return i.PID == other.PID && i.HostName == other.HostName
}

// ownership record is the payload persisted in the marker file
// it is built by the acquiring process right before it is written and never mutated after
// re-acquisition writes a brand new record over the old one
type OwnershipRecord struct {
	PID         int    `json:"pid"`
	ProcessName string `json:"process_name"`
	HostName    string `json:"host_name"`
	AcquiredAt  int64  `json:"acquired_at"` //unix nanoseconds, host-local wall clock
}

func NewRecord(owner Identity, now time.Time) OwnershipRecord {
	return OwnershipRecord{
		PID:         owner.PID,
		ProcessName: owner.ProcessName,
		HostName:    owner.HostName,
		AcquiredAt:  now.UnixNano(),
	}
}

func (r OwnershipRecord) Owner() Identity {
	return Identity{
		PID:         r.PID,
		ProcessName: r.ProcessName,
		HostName:    r.HostName,
	}
}

// checks if the record was written by the given identity
func (r OwnershipRecord) OwnedBy(id Identity) bool {
	return r.Owner().Matches(id)
}

func (r OwnershipRecord) AcquiredTime() time.Time {
	return time.Unix(0, r.AcquiredAt)
}
