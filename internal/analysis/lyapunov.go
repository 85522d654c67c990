package analysis

import (
	"math"

	"github.com/san-kum/chainsim/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent by following two
// trajectories that start perturbation apart in the first angle. A
// positive value indicates chaos.
//
// λ ≈ (1/t) * ln(|δx(t)/δx(0)|)
func LyapunovExponent(
	sys dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	dt, duration float64,
	perturbation float64,
) (float64, error) {
	if len(x0) == 0 {
		return 0, nil
	}

	xp := x0.Clone()
	xp[0] += perturbation
	return separationRate(sys, integ, x0, xp, dt, duration, perturbation)
}

// LyapunovSpectrum perturbs each state dimension independently and returns
// the separation rate for each.
func LyapunovSpectrum(
	sys dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	dt, duration float64,
	perturbation float64,
) ([]float64, error) {
	spectrum := make([]float64, len(x0))

	for i := range x0 {
		xp := x0.Clone()
		xp[i] += perturbation

		rate, err := separationRate(sys, integ, x0, xp, dt, duration, perturbation)
		if err != nil {
			return nil, err
		}
		spectrum[i] = rate
	}

	return spectrum, nil
}

func separationRate(
	sys dynamo.System,
	integ dynamo.Integrator,
	x0, x0p dynamo.State,
	dt, duration, d0 float64,
) (float64, error) {
	if dt <= 0 || d0 <= 0 {
		return 0, nil
	}

	x := x0.Clone()
	xp := x0p.Clone()

	var err error
	sumLog := 0.0
	count := 0

	for t := 0.0; t < duration; t += dt {
		if x, err = integ.Step(sys, x, dt); err != nil {
			return 0, err
		}
		if xp, err = integ.Step(sys, xp, dt); err != nil {
			return 0, err
		}

		sep := xp.Sub(x).Norm()
		if sep > 0 {
			sumLog += math.Log(sep / d0)
			count++
		}

		// renormalize to keep the pair in the linear regime
		if sep > 0 {
			scale := d0 / sep
			for i := range xp {
				xp[i] = x[i] + (xp[i]-x[i])*scale
			}
		}
	}

	if count == 0 {
		return 0, nil
	}
	return sumLog / (float64(count) * dt), nil
}
