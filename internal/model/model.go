// Package model reduces a contact problem to its participating cliques and
// exposes the convex cost whose minimizer is the constrained velocity of
// one time step, together with its gradient and Hessian.
//
// All quantities are in the reduced space: participating cliques only,
// ordered by cluster. The free variable is the reduced velocity v, stored
// in a Context. A Model is immutable after New and may be shared by any
// number of goroutines, each owning its own Context.
package model

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/dyncontact/internal/bundle"
	"github.com/san-kum/dyncontact/internal/graph"
	"github.com/san-kum/dyncontact/internal/linalg"
	"github.com/san-kum/dyncontact/internal/permutation"
	"github.com/san-kum/dyncontact/internal/problem"
	"github.com/san-kum/dyncontact/internal/scalar"
)

type Model[T scalar.Scalar[T]] struct {
	problem *problem.Problem[T]
	graph   *graph.Graph
	logger  *slog.Logger

	velocities *permutation.Partial
	impulses   *permutation.Partial

	// Per participating clique, in cluster order.
	dynamics    []*linalg.Matrix[T]
	cliqueStart []int

	vStar    []T
	pStar    []T
	invSqrtA []T
	delassus []T
	bundle   *bundle.Bundle[T]
}

// New builds the reduced model of p. p must not change while the model is
// in use.
func New[T scalar.Scalar[T]](p *problem.Problem[T], opts ...Option) (*Model[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	g, err := p.Graph()
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	cliques := g.ParticipatingCliques()
	if cliques.PermutedDomainSize() == 0 {
		return nil, fmt.Errorf("%d cliques, %d constraints: %w", p.NumCliques(), p.NumConstraints(), ErrNoParticipatingCliques)
	}

	m := &Model[T]{problem: p, graph: g, logger: o.logger}
	if m.dynamics, err = permutation.Apply(cliques, p.DynamicsMatrix()); err != nil {
		return nil, err
	}
	if m.velocities, err = permutation.Expand(cliques, p.CliqueSizes()); err != nil {
		return nil, err
	}
	if m.vStar, err = permutation.Apply(m.velocities, p.VStar()); err != nil {
		return nil, err
	}

	m.cliqueStart = make([]int, len(m.dynamics)+1)
	for c, a := range m.dynamics {
		m.cliqueStart[c+1] = m.cliqueStart[c] + a.Rows()
	}
	m.pStar = m.MultiplyByDynamicsMatrix(m.vStar)

	one := scalar.Of[T](1)
	m.invSqrtA = make([]T, 0, len(m.vStar))
	for _, a := range m.dynamics {
		for _, d := range a.Diagonal() {
			m.invSqrtA = append(m.invSqrtA, one.Div(d.Sqrt()))
		}
	}

	if m.delassus, err = m.calcDelassusDiagonal(); err != nil {
		return nil, err
	}
	if m.bundle, err = bundle.New(p, g, m.delassus); err != nil {
		return nil, fmt.Errorf("build constraints bundle: %w", err)
	}

	order := g.ConstraintsPermutation()
	sizes := make([]int, p.NumConstraints())
	for i := range sizes {
		sizes[i] = p.Constraint(i).NumConstraintEquations()
	}
	if m.impulses, err = permutation.Expand(order, sizes); err != nil {
		return nil, err
	}

	m.logger.Debug("contact model built",
		"cliques", m.NumCliques(),
		"velocities", m.NumVelocities(),
		"constraints", m.NumConstraints(),
		"equations", m.NumConstraintEquations(),
		"clusters", g.NumClusters(),
		"dropped_cliques", p.NumCliques()-m.NumCliques())
	return m, nil
}

func (m *Model[T]) NumCliques() int             { return len(m.dynamics) }
func (m *Model[T]) NumVelocities() int          { return len(m.vStar) }
func (m *Model[T]) NumConstraints() int         { return m.bundle.NumConstraints() }
func (m *Model[T]) NumConstraintEquations() int { return m.bundle.NumConstraintEquations() }
func (m *Model[T]) TimeStep() T                 { return m.problem.TimeStep() }

// VStar returns the reduced free-motion velocities.
func (m *Model[T]) VStar() []T { return m.vStar }

// PStar returns the reduced free-motion momentum A·v*.
func (m *Model[T]) PStar() []T { return m.pStar }

// DynamicsMatrix returns the dynamics block of each participating clique,
// in cluster order.
func (m *Model[T]) DynamicsMatrix() []*linalg.Matrix[T] { return m.dynamics }

// InvSqrtDynamicsMatrix returns diag(A)^(-1/2) in the reduced space.
func (m *Model[T]) InvSqrtDynamicsMatrix() []T { return m.invSqrtA }

// DelassusDiagonal returns one estimate wᵢ per constraint, in cluster
// order.
func (m *Model[T]) DelassusDiagonal() []T { return m.delassus }

// VelocitiesPermutation maps original velocity indices to reduced ones.
func (m *Model[T]) VelocitiesPermutation() *permutation.Partial { return m.velocities }

// ImpulsesPermutation maps original constraint equation indices to
// reduced ones.
func (m *Model[T]) ImpulsesPermutation() *permutation.Partial { return m.impulses }

func (m *Model[T]) ConstraintsBundle() *bundle.Bundle[T] { return m.bundle }
func (m *Model[T]) Graph() *graph.Graph                  { return m.graph }
func (m *Model[T]) Problem() *problem.Problem[T]         { return m.problem }

// MultiplyByDynamicsMatrix returns A·v for a reduced vector v.
func (m *Model[T]) MultiplyByDynamicsMatrix(v []T) []T {
	if len(v) != m.cliqueStart[len(m.dynamics)] {
		panic(linalg.ErrShape)
	}
	out := make([]T, len(v))
	for c, a := range m.dynamics {
		s, e := m.cliqueStart[c], m.cliqueStart[c+1]
		a.MulVecTo(out[s:e], v[s:e])
	}
	return out
}

// ExpandVelocities maps reduced velocities back to the original velocity
// space. Cliques that do not participate keep their free-motion velocity.
func (m *Model[T]) ExpandVelocities(v []T) ([]T, error) {
	if len(v) != m.NumVelocities() {
		return nil, fmt.Errorf("%d velocities, model has %d: %w", len(v), m.NumVelocities(), ErrVelocitiesSize)
	}
	full := linalg.Clone(m.problem.VStar())
	if err := permutation.ApplyInverse(m.velocities, v, full); err != nil {
		return nil, err
	}
	return full, nil
}

// ReduceVelocities keeps the velocities of participating cliques of a full
// velocity vector, in reduced order.
func (m *Model[T]) ReduceVelocities(v []T) ([]T, error) {
	if len(v) != m.problem.NumVelocities() {
		return nil, fmt.Errorf("%d velocities, problem has %d: %w", len(v), m.problem.NumVelocities(), ErrVelocitiesSize)
	}
	return permutation.Apply(m.velocities, v)
}
