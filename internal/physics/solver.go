package physics

import (
	"math"

	"github.com/san-kum/chainsim/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Solver computes angular accelerations of an n-link chain from
// M(θ)·θ̈ = b(θ, ω). It keeps factorization scratch between calls and is
// not safe for concurrent use.
type Solver struct {
	Gravity float64

	n   int
	m   *mat.Dense
	b   *mat.VecDense
	dst *mat.VecDense
	lu  mat.LU

	// linsolve replaces the LU solve when set.
	linsolve func(a mat.Matrix, b mat.Vector, dst *mat.VecDense) error
}

func NewSolver(gravity float64) *Solver {
	return &Solver{Gravity: gravity}
}

func (s *Solver) ensureScratch(n int) {
	if s.n != n {
		s.n = n
		s.m = mat.NewDense(n, n, nil)
		s.b = mat.NewVecDense(n, nil)
		s.dst = mat.NewVecDense(n, nil)
	}
}

// weight is the number of bobs whose motion depends on both i and j.
func weight(n, i, j int) float64 {
	return float64(n) - math.Max(float64(i), float64(j))
}

// MassMatrix returns M[i][j] = (n − max(i,j))·cos(θi − θj).
func MassMatrix(theta []float64) *mat.Dense {
	n := len(theta)
	if n == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(n, n, nil)
	fillMass(m, theta)
	return m
}

func fillMass(m *mat.Dense, theta []float64) {
	n := len(theta)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m.Set(i, j, weight(n, i, j)*math.Cos(theta[i]-theta[j]))
		}
	}
}

// Forcing returns b[i] = −Σj (n−max(i,j))·sin(θi−θj)·ωj² − g·(n−i)·sin θi.
func (s *Solver) Forcing(theta, omega []float64) []float64 {
	n := len(theta)
	b := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum -= weight(n, i, j) * math.Sin(theta[i]-theta[j]) * (omega[j] * omega[j])
		}
		sum -= s.Gravity * (float64(n) - float64(i)) * math.Sin(theta[i])
		b[i] = sum
	}
	return b
}

// Accelerations returns the velocity vector unchanged and the solved θ̈.
// A mass matrix that cannot be factorized yields θ̈ = 0 for this call.
// Non-finite angles propagate as NaN accelerations.
func (s *Solver) Accelerations(theta, omega []float64) (thetaDot, thetaDDot []float64) {
	n := len(theta)
	thetaDot = make([]float64, n)
	copy(thetaDot, omega)
	thetaDDot = make([]float64, n)
	if n == 0 {
		return thetaDot, thetaDDot
	}

	s.ensureScratch(n)
	fillMass(s.m, theta)
	if !finite(s.m.RawMatrix().Data) {
		for i := range thetaDDot {
			thetaDDot[i] = math.NaN()
		}
		return thetaDot, thetaDDot
	}

	b := s.Forcing(theta, omega)
	for i, v := range b {
		s.b.SetVec(i, v)
	}

	if err := s.solve(s.m, s.b, s.dst); err != nil {
		return thetaDot, thetaDDot
	}
	for i := range thetaDDot {
		thetaDDot[i] = s.dst.AtVec(i)
	}
	return thetaDot, thetaDDot
}

func (s *Solver) solve(a mat.Matrix, b mat.Vector, dst *mat.VecDense) error {
	if s.linsolve != nil {
		return s.linsolve(a, b, dst)
	}
	return solveLU(&s.lu, a, b, dst)
}

// solveLU factorizes a and solves a·dst = b. Singular or numerically
// singular matrices report dynamo.ErrSingular.
func solveLU(lu *mat.LU, a mat.Matrix, b mat.Vector, dst *mat.VecDense) error {
	lu.Factorize(a)
	if err := lu.SolveVecTo(dst, false, b); err != nil {
		return dynamo.ErrSingular
	}
	return nil
}

// Derive implements dynamo.System: d/dt [θ, ω] = [ω, θ̈].
func (s *Solver) Derive(x dynamo.State) dynamo.State {
	thetaDot, thetaDDot := s.Accelerations(x.Theta(), x.Omega())
	return dynamo.Pack(thetaDot, thetaDDot)
}

// Energy implements dynamo.Hamiltonian for the same Lagrangian:
// ½·Σ M[i][j]·ωi·ωj − g·Σ (n−i)·cos θi.
func (s *Solver) Energy(x dynamo.State) float64 {
	theta, omega := x.Theta(), x.Omega()
	n := len(theta)
	ke := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			ke += weight(n, i, j) * math.Cos(theta[i]-theta[j]) * omega[i] * omega[j]
		}
	}
	pe := 0.0
	for i := 0; i < n; i++ {
		pe -= s.Gravity * float64(n-i) * math.Cos(theta[i])
	}
	return 0.5*ke + pe
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
