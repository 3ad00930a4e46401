package sim

import "errors"

// Sentinel errors. Callers match with errors.Is; the engine wraps them with
// the offending values.
var (
	// ErrConfig marks a fatal configuration problem detected before the loop starts:
	// rate table length mismatch, negative or non-finite rates, malformed lattices.
	ErrConfig = errors.New("sim: invalid configuration")

	// ErrEmptyLattice indicates a lattice with no rows or no columns.
	ErrEmptyLattice = errors.New("sim: lattice must have at least one row and one column")

	// ErrNonRectangular indicates an initial grid whose rows differ in length.
	ErrNonRectangular = errors.New("sim: all lattice rows must have the same length")

	// ErrInvalidState indicates a state code the model does not recognize.
	ErrInvalidState = errors.New("sim: state code out of range for model")

	// ErrUniformDomain indicates a uniform draw outside the open interval (0,1).
	// It is a contract violation of the random source, never clamped.
	ErrUniformDomain = errors.New("sim: uniform draw outside open interval (0,1)")

	// ErrIndexInconsistent indicates that the incrementally maintained event index
	// no longer matches a full rebuild from the lattice.
	ErrIndexInconsistent = errors.New("sim: event index diverged from full rebuild")
)
