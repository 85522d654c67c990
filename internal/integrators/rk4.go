package integrators

import "github.com/san-kum/chainsim/internal/dynamo"

type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

// Step returns ErrUnstable instead of a state containing NaN.
func (r *RK4) Step(sys dynamo.System, x dynamo.State, dt float64) (dynamo.State, error) {
	n := len(x)
	r.ensureScratch(n)

	if err := r.derive(sys, x, r.k1); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + r.k1[i]*(0.5*dt)
	}
	if err := r.derive(sys, r.scratch, r.k2); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + r.k2[i]*(0.5*dt)
	}
	if err := r.derive(sys, r.scratch, r.k3); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + r.k3[i]*dt
	}
	if err := r.derive(sys, r.scratch, r.k4); err != nil {
		return nil, err
	}

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + (r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])*dt6
	}

	if result.HasNaN() {
		return nil, dynamo.ErrUnstable
	}
	return result, nil
}

func (r *RK4) derive(sys dynamo.System, x, dst dynamo.State) error {
	dx := sys.Derive(x)
	if len(dx) != len(dst) {
		return dynamo.ErrDimensionMismatch
	}
	copy(dst, dx)
	return nil
}
