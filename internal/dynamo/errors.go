package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrUnstable indicates the solve produced NaN accelerations. The tick
	// that hit it leaves the chain untouched.
	ErrUnstable = errors.New("dynamo: simulation unstable (NaN acceleration)")

	// ErrNotImplemented indicates an integration method with no algorithm.
	ErrNotImplemented = errors.New("dynamo: integration method not implemented")

	// ErrSingular indicates the mass matrix could not be factorized.
	ErrSingular = errors.New("dynamo: singular mass matrix")

	// ErrDimensionMismatch indicates a state whose length does not match the system.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrUnknownMethod indicates an unrecognized integration method name.
	ErrUnknownMethod = errors.New("dynamo: unknown integration method")
)
