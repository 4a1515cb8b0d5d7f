package lock

import (
	"fmt"

	"github.com/pixperk/markerlock/pkg/types"
)

// Strategy selects how a Handle decides ownership.
type Strategy uint

const (
	// StrategyTimestamp persists owner identity and acquisition time and
	// reclaims markers older than the timeout.
	StrategyTimestamp Strategy = iota + 1

	// StrategyRetention holds an open, exclusively locked descriptor on the
	// marker. A readable marker is taken over unconditionally; there is no
	// ownership or staleness check. Local exclusion only.
	StrategyRetention
)

func (s Strategy) String() string {
	switch s {
	case StrategyTimestamp:
		return "timestamp"
	case StrategyRetention:
		return "retention"
	default:
		return "unknown"
	}
}

func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "timestamp":
		return StrategyTimestamp, nil
	case "retention":
		return StrategyRetention, nil
	default:
		return 0, fmt.Errorf("%w: %q", types.ErrUnknownStrategy, s)
	}
}
