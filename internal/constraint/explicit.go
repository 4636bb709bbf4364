package constraint

import (
	"fmt"

	"github.com/san-kum/dyncontact/internal/linalg"
	"github.com/san-kum/dyncontact/internal/scalar"
)

// Explicit is a constraint whose bias and regularization are given
// directly instead of derived from physical parameters. Its constraint
// function is zero.
type Explicit[T scalar.Scalar[T]] struct {
	Base[T]
	r          []T
	vHat       []T
	projection Projection
}

var _ Constraint[scalar.Float] = (*Explicit[scalar.Float])(nil)

// NewExplicitSingle builds an Explicit constraint on one clique.
func NewExplicitSingle[T scalar.Scalar[T]](clique int, j *linalg.Matrix[T], r, vHat []T, p Projection) (*Explicit[T], error) {
	base, err := NewSingleClique(clique, make([]T, len(r)), j)
	if err != nil {
		return nil, err
	}
	return newExplicit(base, r, vHat, p)
}

// NewExplicitPair builds an Explicit constraint coupling two cliques.
func NewExplicitPair[T scalar.Scalar[T]](first int, j1 *linalg.Matrix[T], second int, j2 *linalg.Matrix[T], r, vHat []T, p Projection) (*Explicit[T], error) {
	base, err := NewTwoClique(first, second, make([]T, len(r)), j1, j2)
	if err != nil {
		return nil, err
	}
	return newExplicit(base, r, vHat, p)
}

func newExplicit[T scalar.Scalar[T]](base Base[T], r, vHat []T, p Projection) (*Explicit[T], error) {
	if len(vHat) != len(r) {
		return nil, fmt.Errorf("bias has %d entries, regularization %d: %w", len(vHat), len(r), ErrInvalidParameter)
	}
	for i, ri := range r {
		if !scalar.Positive(ri) {
			return nil, fmt.Errorf("R[%d] = %g: %w", i, ri.Value(), ErrInvalidRegularization)
		}
	}
	if p != Identity && p != Clamp {
		return nil, fmt.Errorf("%v: %w", p, ErrUnknownProjection)
	}
	return &Explicit[T]{Base: base, r: linalg.Clone(r), vHat: linalg.Clone(vHat), projection: p}, nil
}

func (c *Explicit[T]) Projection() Projection { return c.projection }

func (c *Explicit[T]) CalcBiasTerm(_, _ T) []T {
	return linalg.Clone(c.vHat)
}

func (c *Explicit[T]) CalcDiagonalRegularization(_, _ T) []T {
	return linalg.Clone(c.r)
}

func (c *Explicit[T]) Project(y, _, gamma []T, dPdy *linalg.Matrix[T]) {
	project(c.projection, y, gamma, dPdy)
}
