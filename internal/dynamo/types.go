package dynamo

import (
	"fmt"
	"math"
)

// State is a packed chain state: the first half holds angles, the second
// half angular velocities.
type State []float64

// Pack builds a State from separate angle and velocity slices.
func Pack(theta, omega []float64) State {
	s := make(State, len(theta)+len(omega))
	copy(s, theta)
	copy(s[len(theta):], omega)
	return s
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// Half returns the number of generalized coordinates in s.
func (s State) Half() int { return len(s) / 2 }

// Theta returns the angle half of s. The result aliases s.
func (s State) Theta() []float64 { return s[:s.Half()] }

// Omega returns the velocity half of s. The result aliases s.
func (s State) Omega() []float64 { return s[s.Half():] }

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) HasNaN() bool {
	for _, v := range s {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System differentiates a packed state. For a chain the derivative of
// [θ, ω] is [ω, θ̈].
type System interface {
	Derive(x State) State
}

// Hamiltonian is implemented by systems with a conserved energy.
type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(sys System, x State, dt float64) (State, error)
}

type Observer interface {
	OnStep(x State, t float64)
}

type Metric interface {
	Observer
	Name() string
	Value() float64
	Reset()
}

// TickError annotates a failed tick with its position in a run.
type TickError struct {
	Tick    int
	Time    float64
	Wrapped error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f): %v", e.Tick, e.Time, e.Wrapped)
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}
