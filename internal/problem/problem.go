// Package problem holds a contact problem for a single time step: the
// dynamics of every clique, the free-motion velocities v* and the
// constraints coupling them.
package problem

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/dyncontact/internal/constraint"
	"github.com/san-kum/dyncontact/internal/graph"
	"github.com/san-kum/dyncontact/internal/linalg"
	"github.com/san-kum/dyncontact/internal/scalar"
)

// Problem owns its constraints. It is not safe to add constraints while a
// model built from it is in use.
type Problem[T scalar.Scalar[T]] struct {
	timeStep      T
	dynamics      []*linalg.Matrix[T]
	vStar         []T
	velocityStart []int
	constraints   []constraint.Constraint[T]
	numEquations  int
}

// New validates and stores the problem data. dynamics[c] is the mass
// matrix A of clique c; vStar concatenates the free-motion velocities of
// all cliques in order.
func New[T scalar.Scalar[T]](timeStep T, dynamics []*linalg.Matrix[T], vStar []T) (*Problem[T], error) {
	dt := timeStep.Value()
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return nil, fmt.Errorf("%g: %w", dt, ErrInvalidTimeStep)
	}
	start := make([]int, len(dynamics)+1)
	for c, a := range dynamics {
		if a == nil {
			return nil, fmt.Errorf("clique %d has no dynamics matrix: %w", c, ErrInvalidDynamics)
		}
		if err := linalg.ValidateSPD(a); err != nil {
			return nil, fmt.Errorf("clique %d: %w", c, errors.Join(ErrInvalidDynamics, err))
		}
		start[c+1] = start[c] + a.Rows()
	}
	if n := start[len(dynamics)]; len(vStar) != n {
		return nil, fmt.Errorf("v* has %d entries, cliques have %d velocities: %w", len(vStar), n, ErrDimensionMismatch)
	}
	return &Problem[T]{
		timeStep:      timeStep,
		dynamics:      dynamics,
		vStar:         linalg.Clone(vStar),
		velocityStart: start,
	}, nil
}

// AddConstraint appends c and returns its index.
func (p *Problem[T]) AddConstraint(c constraint.Constraint[T]) (int, error) {
	idx := len(p.constraints)
	if err := p.checkConstraint(c); err != nil {
		return -1, &ConstraintError{Index: idx, Wrapped: err}
	}
	p.constraints = append(p.constraints, c)
	p.numEquations += c.NumConstraintEquations()
	return idx, nil
}

func (p *Problem[T]) checkConstraint(c constraint.Constraint[T]) error {
	n := c.NumConstraintEquations()
	if n <= 0 {
		return fmt.Errorf("%d equations: %w", n, ErrDimensionMismatch)
	}
	switch k := c.NumCliques(); {
	case k != 1 && k != 2:
		return fmt.Errorf("%d cliques: %w", k, ErrCliqueCount)
	case k == 2 && c.SecondClique() == c.FirstClique():
		return fmt.Errorf("clique %d: %w", c.FirstClique(), constraint.ErrSameClique)
	}
	check := func(clique int, j *linalg.Matrix[T]) error {
		if clique < 0 || clique >= p.NumCliques() {
			return fmt.Errorf("clique %d of %d: %w", clique, p.NumCliques(), ErrCliqueOutOfRange)
		}
		if j == nil || j.Rows() != n || j.Cols() != p.CliqueSize(clique) {
			return fmt.Errorf("jacobian for clique %d must be %dx%d: %w", clique, n, p.CliqueSize(clique), ErrDimensionMismatch)
		}
		return nil
	}
	if err := check(c.FirstClique(), c.FirstCliqueJacobian()); err != nil {
		return err
	}
	if c.NumCliques() == 2 {
		return check(c.SecondClique(), c.SecondCliqueJacobian())
	}
	return nil
}

func (p *Problem[T]) TimeStep() T                         { return p.timeStep }
func (p *Problem[T]) NumCliques() int                     { return len(p.dynamics) }
func (p *Problem[T]) NumVelocities() int                  { return p.velocityStart[len(p.dynamics)] }
func (p *Problem[T]) NumConstraints() int                 { return len(p.constraints) }
func (p *Problem[T]) NumConstraintEquations() int         { return p.numEquations }
func (p *Problem[T]) DynamicsMatrix() []*linalg.Matrix[T] { return p.dynamics }
func (p *Problem[T]) VStar() []T                          { return p.vStar }

// CliqueSize returns the number of velocities of clique c.
func (p *Problem[T]) CliqueSize(c int) int { return p.dynamics[c].Rows() }

// VelocityStart returns the offset of clique c in the velocity vector.
func (p *Problem[T]) VelocityStart(c int) int { return p.velocityStart[c] }

// CliqueSizes returns the velocity count of every clique.
func (p *Problem[T]) CliqueSizes() []int {
	sizes := make([]int, len(p.dynamics))
	for c := range sizes {
		sizes[c] = p.CliqueSize(c)
	}
	return sizes
}

func (p *Problem[T]) Constraint(i int) constraint.Constraint[T] { return p.constraints[i] }

// Graph builds the contact problem graph of the current constraints.
func (p *Problem[T]) Graph() (*graph.Graph, error) {
	inc := make([]graph.Incidence, len(p.constraints))
	for i, c := range p.constraints {
		inc[i] = graph.Incidence{First: c.FirstClique(), Second: -1}
		if c.NumCliques() == 2 {
			inc[i].Second = c.SecondClique()
		}
	}
	return graph.Build(p.NumCliques(), inc)
}
