package integrators

import "github.com/san-kum/chainsim/internal/dynamo"

// SemiImplicitEuler updates velocities first and advances positions with the
// new velocities. The state is split as [q..., p...].
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Step(sys dynamo.System, x dynamo.State, dt float64) (dynamo.State, error) {
	n := len(x)
	half := n / 2
	dx := sys.Derive(x)
	if len(dx) != n {
		return nil, dynamo.ErrDimensionMismatch
	}
	if dx[half:].HasNaN() {
		return nil, dynamo.ErrUnstable
	}

	result := make(dynamo.State, n)
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + dx[half+i]*dt
		result[i] = x[i] + result[half+i]*dt
	}
	return result, nil
}
