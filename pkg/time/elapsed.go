package time

import (
	"fmt"
	"time"
)

// elapsed policy decides how the age of a marker is computed from the
// recorded acquisition time and the local clock
type ElapsedPolicy uint

const (
	// |now - acquired|
	// a clock running behind the marker ages it just like one running ahead,
	// so a future-dated marker can be reclaimed early
	ElapsedAbsolute ElapsedPolicy = iota + 1

	// now - acquired, clamped at zero
	// a future-dated marker is treated as freshly acquired
	ElapsedForward
)

func (p ElapsedPolicy) Elapsed(now, acquired time.Time) time.Duration {
	d := now.Sub(acquired)
	switch p {
	case ElapsedForward:
		if d < 0 {
			return 0
		}
		return d
	default:
		if d < 0 {
			return -d
		}
		return d
	}
}

// checks if a marker acquired at the given time has outlived the timeout
func (p ElapsedPolicy) Expired(now, acquired time.Time, timeout time.Duration) bool {
	return p.Elapsed(now, acquired) > timeout
}

func (p ElapsedPolicy) String() string {
	switch p {
	case ElapsedAbsolute:
		return "absolute"
	case ElapsedForward:
		return "forward"
	default:
		return "unknown"
	}
}

func ParseElapsedPolicy(s string) (ElapsedPolicy, error) {
	switch s {
	case "", "absolute":
		return ElapsedAbsolute, nil
	case "forward":
		return ElapsedForward, nil
	default:
		return 0, fmt.Errorf("elapsed policy %q: must be absolute or forward", s)
	}
}
