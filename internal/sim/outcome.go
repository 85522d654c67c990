package sim

import "github.com/san-kum/chainsim/internal/dynamo"

// Outcome classifies a single Advance call. It is not persisted.
type Outcome uint8

const (
	// Applied means the chain moved and every bob recorded a trail point.
	Applied Outcome = iota
	// Skipped means the universe was paused or empty; nothing changed.
	Skipped
	// Aborted means the solve produced NaN. Angles, velocities and trails
	// are unchanged; an over-cap chain has still been truncated.
	Aborted
	// NotImplemented means the selected method has no algorithm. Angles,
	// velocities and trails are unchanged; an over-cap chain has still been
	// truncated.
	NotImplemented
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Skipped:
		return "skipped"
	case Aborted:
		return "aborted"
	case NotImplemented:
		return "not implemented"
	default:
		return "unknown"
	}
}

// Err maps failing outcomes to their sentinel errors.
func (o Outcome) Err() error {
	switch o {
	case Aborted:
		return dynamo.ErrUnstable
	case NotImplemented:
		return dynamo.ErrNotImplemented
	default:
		return nil
	}
}
