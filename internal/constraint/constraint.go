// Package constraint defines the contract every contact or coupling
// constraint implements, plus the concrete constraints shipped with the
// model.
//
// A constraint with nᵢ equations couples one or two cliques through
// Jacobian blocks Jᵢ = [J₁ J₂]. Given constraint velocities vc = Jᵢ·v, the
// unprojected impulse is y = −R⁻¹⊙(vc − v̂) and the impulse is γ = P(y).
// Bias v̂, regularization R and projection P are what distinguishes one
// constraint from another.
package constraint

import (
	"fmt"

	"github.com/san-kum/dyncontact/internal/linalg"
	"github.com/san-kum/dyncontact/internal/scalar"
)

// Constraint is implemented by every constraint. Implementations are
// immutable once built.
type Constraint[T scalar.Scalar[T]] interface {
	NumConstraintEquations() int
	NumCliques() int
	FirstClique() int
	// SecondClique returns -1 for single-clique constraints.
	SecondClique() int
	FirstCliqueJacobian() *linalg.Matrix[T]
	SecondCliqueJacobian() *linalg.Matrix[T]
	// ConstraintFunction returns the constraint function g evaluated at the
	// configuration the constraint was built for.
	ConstraintFunction() []T

	// CalcBiasTerm returns v̂. wi is the Delassus diagonal estimate for this
	// constraint.
	CalcBiasTerm(timeStep, wi T) []T
	// CalcDiagonalRegularization returns R, strictly positive.
	CalcDiagonalRegularization(timeStep, wi T) []T
	// Project writes γ = P(y) into gamma. When dPdy is not nil it must be
	// nᵢ×nᵢ and receives ∂γ/∂y, a sub-derivative at kinks.
	Project(y, r, gamma []T, dPdy *linalg.Matrix[T])
}

// Base holds the clique references, Jacobian blocks and constraint function
// shared by all constraints. Concrete constraints embed it.
type Base[T scalar.Scalar[T]] struct {
	first, second int
	g             []T
	j1, j2        *linalg.Matrix[T]
}

// NewSingleClique returns a Base acting on one clique.
func NewSingleClique[T scalar.Scalar[T]](clique int, g []T, j *linalg.Matrix[T]) (Base[T], error) {
	if clique < 0 {
		return Base[T]{}, fmt.Errorf("clique %d: %w", clique, ErrInvalidClique)
	}
	if err := checkJacobian(g, j); err != nil {
		return Base[T]{}, err
	}
	return Base[T]{first: clique, second: -1, g: linalg.Clone(g), j1: j}, nil
}

// NewTwoClique returns a Base coupling two distinct cliques.
func NewTwoClique[T scalar.Scalar[T]](first, second int, g []T, j1, j2 *linalg.Matrix[T]) (Base[T], error) {
	if first < 0 || second < 0 {
		return Base[T]{}, fmt.Errorf("cliques (%d, %d): %w", first, second, ErrInvalidClique)
	}
	if first == second {
		return Base[T]{}, fmt.Errorf("clique %d: %w", first, ErrSameClique)
	}
	if err := checkJacobian(g, j1); err != nil {
		return Base[T]{}, fmt.Errorf("first clique: %w", err)
	}
	if err := checkJacobian(g, j2); err != nil {
		return Base[T]{}, fmt.Errorf("second clique: %w", err)
	}
	return Base[T]{first: first, second: second, g: linalg.Clone(g), j1: j1, j2: j2}, nil
}

func checkJacobian[T scalar.Scalar[T]](g []T, j *linalg.Matrix[T]) error {
	switch {
	case len(g) == 0:
		return fmt.Errorf("no constraint equations: %w", ErrInvalidJacobian)
	case j == nil:
		return fmt.Errorf("nil jacobian: %w", ErrInvalidJacobian)
	case j.Rows() != len(g):
		return fmt.Errorf("jacobian has %d rows for %d equations: %w", j.Rows(), len(g), ErrInvalidJacobian)
	case j.Cols() == 0:
		return fmt.Errorf("jacobian has no columns: %w", ErrInvalidJacobian)
	}
	return nil
}

func (b *Base[T]) NumConstraintEquations() int             { return len(b.g) }
func (b *Base[T]) FirstClique() int                        { return b.first }
func (b *Base[T]) SecondClique() int                       { return b.second }
func (b *Base[T]) FirstCliqueJacobian() *linalg.Matrix[T]  { return b.j1 }
func (b *Base[T]) SecondCliqueJacobian() *linalg.Matrix[T] { return b.j2 }
func (b *Base[T]) ConstraintFunction() []T                 { return b.g }

func (b *Base[T]) NumCliques() int {
	if b.second < 0 {
		return 1
	}
	return 2
}
