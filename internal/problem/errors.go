package problem

import (
	"errors"
	"fmt"
)

// Configuration errors reported while assembling a problem.
var (
	// ErrInvalidTimeStep indicates a time step that is not finite and positive.
	ErrInvalidTimeStep = errors.New("problem: time step must be finite and positive")

	// ErrDimensionMismatch indicates v* or a Jacobian block whose size does
	// not match the cliques it refers to.
	ErrDimensionMismatch = errors.New("problem: dimension mismatch")

	// ErrCliqueOutOfRange indicates a constraint referencing a clique the
	// problem does not have.
	ErrCliqueOutOfRange = errors.New("problem: clique index out of range")

	// ErrCliqueCount indicates a constraint that acts on neither one nor
	// two cliques.
	ErrCliqueCount = errors.New("problem: constraint must act on one or two cliques")

	// ErrInvalidDynamics indicates a dynamics block that is not square,
	// symmetric and positive definite.
	ErrInvalidDynamics = errors.New("problem: invalid dynamics matrix")
)

// ConstraintError wraps a rejected constraint with its position.
type ConstraintError struct {
	Index   int
	Wrapped error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint %d: %v", e.Index, e.Wrapped)
}

func (e *ConstraintError) Unwrap() error {
	return e.Wrapped
}
