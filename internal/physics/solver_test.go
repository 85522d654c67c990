package physics

import (
	"math"
	"testing"

	"github.com/san-kum/chainsim/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// closedFormDoublePendulum is the textbook two-body double pendulum,
// used only to cross-check the matrix solver.
func closedFormDoublePendulum(theta1, theta2, omega1, omega2, m1, m2, l1, l2, g float64) (alpha1, alpha2 float64) {
	delta := theta2 - theta1
	sinD, cosD := math.Sin(delta), math.Cos(delta)

	den1 := (m1+m2)*l1 - m2*l1*cosD*cosD
	den2 := (l2 / l1) * den1

	alpha1 = (m2*l1*omega1*omega1*sinD*cosD +
		m2*g*math.Sin(theta2)*cosD +
		m2*l2*omega2*omega2*sinD -
		(m1+m2)*g*math.Sin(theta1)) / den1

	alpha2 = (-m2*l2*omega2*omega2*sinD*cosD +
		(m1+m2)*g*math.Sin(theta1)*cosD -
		(m1+m2)*l1*omega1*omega1*sinD -
		(m1+m2)*g*math.Sin(theta2)) / den2

	return alpha1, alpha2
}

func closeTo(got, want, rel float64) bool {
	return math.Abs(got-want) <= rel*math.Max(1, math.Abs(want))
}

func TestMassMatrixSymmetry(t *testing.T) {
	thetas := [][]float64{
		{0.3},
		{math.Pi / 2, math.Pi / 2},
		{0.1, -1.2, 2.5},
		{3.0, 0.0, -0.7, 1.1, 6.2, -4.4, 0.01},
	}

	for _, theta := range thetas {
		m := MassMatrix(theta)
		n := len(theta)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if m.At(i, j) != m.At(j, i) {
					t.Errorf("n=%d: M[%d][%d]=%v != M[%d][%d]=%v", n, i, j, m.At(i, j), j, i, m.At(j, i))
				}
			}
		}
	}
}

func TestMassMatrixEntries(t *testing.T) {
	theta := []float64{0.4, 1.0, -0.3}
	m := MassMatrix(theta)

	if m.At(0, 0) != 3 {
		t.Errorf("expected M[0][0]=3, got %f", m.At(0, 0))
	}
	if m.At(2, 2) != 1 {
		t.Errorf("expected M[2][2]=1, got %f", m.At(2, 2))
	}
	want := 2 * math.Cos(0.4-1.0)
	if math.Abs(m.At(0, 1)-want) > 1e-15 {
		t.Errorf("expected M[0][1]=%f, got %f", want, m.At(0, 1))
	}
}

func TestTwoBodyMatchesClosedForm(t *testing.T) {
	tests := []struct {
		theta1, theta2, omega1, omega2, g float64
	}{
		{math.Pi / 2, math.Pi / 2, 0, 0, 9.8},
		{0.1, 0.1, 0, 0, 9.81},
		{1.2, -0.7, 0.5, -1.3, 9.8},
		{3.0, 2.9, 2.0, 4.0, 1.62},
		{-2.2, 0.4, -3.1, 0.2, 24.8},
	}

	for _, tt := range tests {
		s := NewSolver(tt.g)
		_, acc := s.Accelerations([]float64{tt.theta1, tt.theta2}, []float64{tt.omega1, tt.omega2})

		// Uniform weighting is the equal-mass, unit-length double pendulum.
		for _, mass := range []float64{1, 10} {
			a1, a2 := closedFormDoublePendulum(tt.theta1, tt.theta2, tt.omega1, tt.omega2, mass, mass, 1, 1, tt.g)
			if !closeTo(acc[0], a1, 1e-9) {
				t.Errorf("%+v mass=%v: alpha1 got %.15f, closed form %.15f", tt, mass, acc[0], a1)
			}
			if !closeTo(acc[1], a2, 1e-9) {
				t.Errorf("%+v mass=%v: alpha2 got %.15f, closed form %.15f", tt, mass, acc[1], a2)
			}
		}
	}
}

func TestAccelerationsPassVelocityThrough(t *testing.T) {
	s := NewSolver(9.8)
	omega := []float64{0.5, -2.0, 3.25}
	vel, _ := s.Accelerations([]float64{0.1, 0.2, 0.3}, omega)

	for i := range omega {
		if vel[i] != omega[i] {
			t.Errorf("velocity %d: got %f, want %f", i, vel[i], omega[i])
		}
	}
	omega[0] = 99
	if vel[0] == 99 {
		t.Error("velocity output aliases the input slice")
	}
}

func TestAccelerationsEquilibrium(t *testing.T) {
	s := NewSolver(9.8)
	_, acc := s.Accelerations([]float64{0, 0, 0, 0}, []float64{0, 0, 0, 0})

	for i, a := range acc {
		if math.Abs(a) > 1e-12 {
			t.Errorf("expected zero acceleration for hanging bob %d, got %e", i, a)
		}
	}
}

func TestSingleBobIsSimplePendulum(t *testing.T) {
	s := NewSolver(9.8)
	_, acc := s.Accelerations([]float64{math.Pi / 2}, []float64{0})

	if math.Abs(acc[0]+9.8) > 1e-12 {
		t.Errorf("expected -g for horizontal single bob, got %f", acc[0])
	}
}

func TestSolveLUSingularFallsBack(t *testing.T) {
	var lu mat.LU
	a := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
	b := mat.NewVecDense(2, []float64{1, 2})
	dst := mat.NewVecDense(2, nil)

	if err := solveLU(&lu, a, b, dst); err != dynamo.ErrSingular {
		t.Fatalf("expected ErrSingular, got %v", err)
	}
}

func TestAccelerationsSingularGivesZero(t *testing.T) {
	s := NewSolver(9.8)
	s.linsolve = func(a mat.Matrix, b mat.Vector, dst *mat.VecDense) error {
		for i := 0; i < dst.Len(); i++ {
			dst.SetVec(i, 42)
		}
		return dynamo.ErrSingular
	}

	omega := []float64{1.5, -2}
	vel, acc := s.Accelerations([]float64{0.3, 1.1}, omega)

	for i, a := range acc {
		if a != 0 {
			t.Errorf("expected zero acceleration %d after a failed solve, got %f", i, a)
		}
	}
	for i := range omega {
		if vel[i] != omega[i] {
			t.Errorf("velocity %d: got %f, want %f", i, vel[i], omega[i])
		}
	}

	s.linsolve = nil
	if _, acc := s.Accelerations([]float64{0.3, 1.1}, omega); acc[0] == 0 && acc[1] == 0 {
		t.Error("LU solve should produce non-zero accelerations away from equilibrium")
	}
}

func TestSolveLURegular(t *testing.T) {
	var lu mat.LU
	a := mat.NewDense(2, 2, []float64{2, 1, 1, 3})
	b := mat.NewVecDense(2, []float64{3, 5})
	dst := mat.NewVecDense(2, nil)

	if err := solveLU(&lu, a, b, dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(dst.AtVec(0)-0.8) > 1e-12 || math.Abs(dst.AtVec(1)-1.4) > 1e-12 {
		t.Errorf("expected (0.8, 1.4), got (%f, %f)", dst.AtVec(0), dst.AtVec(1))
	}
}

func TestAccelerationsNaN(t *testing.T) {
	s := NewSolver(9.8)

	_, acc := s.Accelerations([]float64{math.NaN(), 0.2}, []float64{0, 0})
	for i, a := range acc {
		if !math.IsNaN(a) {
			t.Errorf("NaN angle: expected NaN acceleration %d, got %f", i, a)
		}
	}

	_, acc = s.Accelerations([]float64{0.1, 0.2}, []float64{math.Inf(1), 0})
	if !dynamo.State(acc).HasNaN() {
		t.Errorf("infinite velocity: expected NaN accelerations, got %v", acc)
	}
}

func TestAccelerationsEmpty(t *testing.T) {
	s := NewSolver(9.8)
	vel, acc := s.Accelerations(nil, nil)
	if len(vel) != 0 || len(acc) != 0 {
		t.Errorf("expected empty output, got %v %v", vel, acc)
	}
}

func TestSolverReusesScratchAcrossSizes(t *testing.T) {
	s := NewSolver(9.8)
	_, a3 := s.Accelerations([]float64{0.1, 0.2, 0.3}, []float64{0, 0, 0})
	_, a2 := s.Accelerations([]float64{0.1, 0.2}, []float64{0, 0})
	_, again := s.Accelerations([]float64{0.1, 0.2, 0.3}, []float64{0, 0, 0})

	if len(a2) != 2 {
		t.Fatalf("expected 2 accelerations, got %d", len(a2))
	}
	for i := range a3 {
		if a3[i] != again[i] {
			t.Errorf("repeat solve differs at %d: %v vs %v", i, a3[i], again[i])
		}
	}
}

func TestDerivePacksState(t *testing.T) {
	s := NewSolver(9.8)
	x := dynamo.State{0.3, -0.2, 1.5, 0.5}
	dx := s.Derive(x)

	if len(dx) != 4 {
		t.Fatalf("expected 4 components, got %d", len(dx))
	}
	if dx[0] != 1.5 || dx[1] != 0.5 {
		t.Errorf("expected velocities in first half, got %v", dx[:2])
	}
	_, acc := s.Accelerations(x.Theta(), x.Omega())
	if dx[2] != acc[0] || dx[3] != acc[1] {
		t.Errorf("expected accelerations in second half, got %v want %v", dx[2:], acc)
	}
}

func TestEnergyHangingAtRest(t *testing.T) {
	s := NewSolver(9.8)
	// PE = -g·(3+2+1) for three bobs hanging straight down.
	e := s.Energy(dynamo.State{0, 0, 0, 0, 0, 0})
	if math.Abs(e+9.8*6) > 1e-12 {
		t.Errorf("expected %f, got %f", -9.8*6, e)
	}
}

func TestEnergyMatchesClosedFormDoublePendulum(t *testing.T) {
	s := NewSolver(9.81)
	theta1, theta2, omega1, omega2 := 0.7, -0.4, 1.1, -2.3

	v1sq := omega1 * omega1
	v2sq := omega1*omega1 + omega2*omega2 + 2*omega1*omega2*math.Cos(theta1-theta2)
	ke := 0.5*v1sq + 0.5*v2sq
	y1 := -math.Cos(theta1)
	y2 := y1 - math.Cos(theta2)
	want := ke + 9.81*y1 + 9.81*y2

	got := s.Energy(dynamo.State{theta1, theta2, omega1, omega2})
	if !closeTo(got, want, 1e-12) {
		t.Errorf("expected energy %f, got %f", want, got)
	}
}
