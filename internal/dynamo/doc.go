// Package dynamo provides the shared primitives of the chain simulator.
//
// The package defines the value types and interfaces that the physics,
// integrator and simulation packages exchange:
//
//   - [Vec2]: 2D vector used for bob positions
//   - [State]: packed generalized state [θ0..θn-1, ω0..ωn-1]
//   - [System]: anything that can differentiate a packed state
//   - [Integrator]: advances a [State] by one step of a [System]
//   - [Observer]: receives the packed state after every applied tick
//
// # Example
//
//	solver := physics.NewSolver(9.8)
//	step := integrators.NewRK4()
//	next, err := step.Step(solver, x, 0.0125)
//
// # Thread Safety
//
// Nothing in this package is shared between goroutines. Integrators keep
// scratch buffers and must not be used concurrently.
package dynamo
