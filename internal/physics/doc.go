// Package physics provides the n-link pendulum model.
//
// A [Chain] is a contiguous arena of [Bob] values. Bob 0 hangs from the
// origin and bob i hangs from bob i-1 by its own [Link]. Connectivity is
// purely by adjacent index.
//
// The [Solver] builds the mass matrix and forcing vector of the chain's
// Lagrangian and implements [dynamo.System] and [dynamo.Hamiltonian] on the
// packed state [θ0..θn-1, ω0..ωn-1]:
//
//	solver := physics.NewSolver(9.8)
//	dx := solver.Derive(chain.State())
//	energy := solver.Energy(chain.State())
//
// The dynamics weight every bob uniformly; rod lengths and masses only
// affect the Cartesian positions produced by forward kinematics.
package physics
