package sim

import (
	"context"
	"sync"
)

// Ensemble runs independent universes side by side. Each universe is
// driven by exactly one goroutine; nothing is shared between them.
type Ensemble struct {
	universes []*Universe
}

func NewEnsemble(universes ...*Universe) *Ensemble {
	return &Ensemble{universes: universes}
}

func (e *Ensemble) Len() int { return len(e.universes) }

// Run returns one result per universe, in input order. Failures are
// reported per universe in RunResult.Err.
func (e *Ensemble) Run(ctx context.Context, ticks int, dt float64) []RunResult {
	results := make([]RunResult, len(e.universes))

	var wg sync.WaitGroup
	for i, u := range e.universes {
		wg.Add(1)
		go func(idx int, u *Universe) {
			defer wg.Done()
			results[idx], _ = u.Run(ctx, ticks, dt)
		}(i, u)
	}

	wg.Wait()
	return results
}
