package integrators

import (
	"math"

	"github.com/san-kum/chainsim/internal/dynamo"
)

// Dormand-Prince tableau. The chain is autonomous, so the node
// coefficients are not needed.
var (
	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// maxSubsteps bounds the work RK45.Step does for one dt before giving up.
const maxSubsteps = 1 << 16

// RK45 is an adaptive Dormand-Prince integrator. Step covers dt with as
// many sub-steps as Tol requires, which makes it a reference trajectory
// for the fixed-step methods rather than a method a universe runs.
type RK45 struct {
	Tol      float64
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45(tol float64) *RK45 {
	return &RK45{
		Tol:      tol,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Step(sys dynamo.System, x dynamo.State, dt float64) (dynamo.State, error) {
	if dt <= 0 {
		next, _, err := r.attempt(sys, x, dt)
		return next, err
	}

	cur := x.Clone()
	h := dt
	t := 0.0
	for steps := 0; dt-t > 1e-15*dt; steps++ {
		if steps == maxSubsteps {
			return nil, dynamo.ErrUnstable
		}
		if t+h > dt {
			h = dt - t
		}

		next, errRatio, err := r.attempt(sys, cur, h)
		if err != nil {
			return nil, err
		}
		if errRatio <= 1 {
			cur = next
			t += h
		}
		h = r.nextStep(h, errRatio)
	}
	return cur, nil
}

func (r *RK45) attempt(sys dynamo.System, x dynamo.State, dt float64) (dynamo.State, float64, error) {
	n := len(x)
	stage := func(coeffs func(i int) float64) (dynamo.State, error) {
		xs := make(dynamo.State, n)
		for i := 0; i < n; i++ {
			xs[i] = x[i] + dt*coeffs(i)
		}
		k := sys.Derive(xs)
		if len(k) != n {
			return nil, dynamo.ErrDimensionMismatch
		}
		return k, nil
	}

	k1, err := stage(func(int) float64 { return 0 })
	if err != nil {
		return nil, 0, err
	}
	k2, err := stage(func(i int) float64 { return b21 * k1[i] })
	if err != nil {
		return nil, 0, err
	}
	k3, err := stage(func(i int) float64 { return b31*k1[i] + b32*k2[i] })
	if err != nil {
		return nil, 0, err
	}
	k4, err := stage(func(i int) float64 { return b41*k1[i] + b42*k2[i] + b43*k3[i] })
	if err != nil {
		return nil, 0, err
	}
	k5, err := stage(func(i int) float64 { return b51*k1[i] + b52*k2[i] + b53*k3[i] + b54*k4[i] })
	if err != nil {
		return nil, 0, err
	}
	k6, err := stage(func(i int) float64 {
		return b61*k1[i] + b62*k2[i] + b63*k3[i] + b64*k4[i] + b65*k5[i]
	})
	if err != nil {
		return nil, 0, err
	}

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}
	if xNew.HasNaN() {
		return nil, 0, dynamo.ErrUnstable
	}

	k7 := sys.Derive(xNew)
	if len(k7) != n {
		return nil, 0, dynamo.ErrDimensionMismatch
	}

	errMax := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := math.Abs(x[i]) + math.Abs(dt*k1[i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}
	if math.IsNaN(errMax) {
		return nil, 0, dynamo.ErrUnstable
	}

	return xNew, errMax / r.Tol, nil
}

func (r *RK45) nextStep(dt, errRatio float64) float64 {
	switch {
	case errRatio > 1:
		return dt * math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
	case errRatio > 0:
		return dt * math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
	default:
		return dt * r.maxScale
	}
}
