package dynamo

import "errors"

// Domain errors for simulation setup and operation.
var (
	// ErrInvalidState indicates a position or velocity containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidMass indicates a body mass that is zero, negative or not finite.
	ErrInvalidMass = errors.New("dynamo: body mass must be positive and finite")

	// ErrNoBodies indicates an attempt to build a simulation without bodies.
	ErrNoBodies = errors.New("dynamo: no bodies configured")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrDimensionMismatch indicates slices that are not index-aligned.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and registry")

	// ErrUnknownUnits indicates an unrecognised unit system name.
	ErrUnknownUnits = errors.New("dynamo: unknown unit system")
)
