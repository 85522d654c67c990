package sim

import (
	"context"

	"github.com/san-kum/chainsim/internal/dynamo"
)

type RunResult struct {
	Applied int
	Skipped int
	Last    Outcome
	Err     error
}

// Run advances the universe ticks times with a fixed dt. It stops at the
// first aborted or unimplemented tick and returns a *dynamo.TickError.
func (u *Universe) Run(ctx context.Context, ticks int, dt float64) (RunResult, error) {
	var res RunResult
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			res.Err = ctx.Err()
			return res, res.Err
		default:
		}

		out := u.Advance(dt)
		res.Last = out
		switch out {
		case Applied:
			res.Applied++
		case Skipped:
			res.Skipped++
		default:
			res.Err = &dynamo.TickError{Tick: i, Time: u.elapsed, Wrapped: out.Err()}
			return res, res.Err
		}
	}
	return res, nil
}
