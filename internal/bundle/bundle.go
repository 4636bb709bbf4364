// Package bundle assembles the constraints of a problem into one operator
// over the reduced velocity space.
//
// Rows of J follow constraints in cluster order; columns follow
// participating cliques in cluster order. Bias v̂ and regularization R are
// concatenated the same way.
package bundle

import (
	"errors"
	"fmt"

	"github.com/san-kum/dyncontact/internal/constraint"
	"github.com/san-kum/dyncontact/internal/graph"
	"github.com/san-kum/dyncontact/internal/linalg"
	"github.com/san-kum/dyncontact/internal/problem"
	"github.com/san-kum/dyncontact/internal/scalar"
)

var (
	ErrBiasSize           = errors.New("bundle: bias term has the wrong size")
	ErrRegularizationSize = errors.New("bundle: regularization has the wrong size")
	ErrRegularization     = errors.New("bundle: regularization must be strictly positive")
	ErrDelassusSize       = errors.New("bundle: one delassus estimate per constraint required")
)

// Bundle is immutable after New and safe for concurrent use.
type Bundle[T scalar.Scalar[T]] struct {
	j             *linalg.BlockSparse[T]
	constraints   []constraint.Constraint[T]
	equationStart []int
	vHat          []T
	r             []T
	rInv          []T
}

// New builds the bundle of p following the ordering of g. delassus holds
// one estimate wᵢ per constraint in cluster order and is forwarded to the
// bias and regularization of each constraint; nil means zero.
func New[T scalar.Scalar[T]](p *problem.Problem[T], g *graph.Graph, delassus []T) (*Bundle[T], error) {
	cliques := g.ParticipatingCliques()
	order := g.ConstraintsPermutation()
	nc := order.PermutedDomainSize()
	if delassus != nil && len(delassus) != nc {
		return nil, fmt.Errorf("%d estimates for %d constraints: %w", len(delassus), nc, ErrDelassusSize)
	}

	colSizes := make([]int, cliques.PermutedDomainSize())
	for j := range colSizes {
		colSizes[j] = p.CliqueSize(cliques.DomainIndex(j))
	}
	rowSizes := make([]int, nc)
	b := &Bundle[T]{
		constraints:   make([]constraint.Constraint[T], nc),
		equationStart: make([]int, nc+1),
	}
	for k := 0; k < nc; k++ {
		c := p.Constraint(order.DomainIndex(k))
		b.constraints[k] = c
		rowSizes[k] = c.NumConstraintEquations()
		b.equationStart[k+1] = b.equationStart[k] + rowSizes[k]
	}

	b.j = linalg.NewBlockSparse[T](rowSizes, colSizes)
	dt := p.TimeStep()
	for k, c := range b.constraints {
		if err := b.j.AddBlock(k, cliques.PermutedIndex(c.FirstClique()), c.FirstCliqueJacobian()); err != nil {
			return nil, err
		}
		if c.NumCliques() == 2 {
			if err := b.j.AddBlock(k, cliques.PermutedIndex(c.SecondClique()), c.SecondCliqueJacobian()); err != nil {
				return nil, err
			}
		}

		var wi T
		if delassus != nil {
			wi = delassus[k]
		}
		n := rowSizes[k]
		vHat := c.CalcBiasTerm(dt, wi)
		if len(vHat) != n {
			return nil, fmt.Errorf("constraint %d: %d entries for %d equations: %w", order.DomainIndex(k), len(vHat), n, ErrBiasSize)
		}
		r := c.CalcDiagonalRegularization(dt, wi)
		if len(r) != n {
			return nil, fmt.Errorf("constraint %d: %d entries for %d equations: %w", order.DomainIndex(k), len(r), n, ErrRegularizationSize)
		}
		one := scalar.Of[T](1)
		for i, ri := range r {
			if !scalar.Positive(ri) {
				return nil, fmt.Errorf("constraint %d: R[%d] = %g: %w", order.DomainIndex(k), i, ri.Value(), ErrRegularization)
			}
			b.rInv = append(b.rInv, one.Div(ri))
		}
		b.vHat = append(b.vHat, vHat...)
		b.r = append(b.r, r...)
	}
	return b, nil
}

func (b *Bundle[T]) NumConstraints() int                       { return len(b.constraints) }
func (b *Bundle[T]) NumConstraintEquations() int               { return b.equationStart[len(b.constraints)] }
func (b *Bundle[T]) NumVelocities() int                        { return b.j.Cols() }
func (b *Bundle[T]) J() *linalg.BlockSparse[T]                 { return b.j }
func (b *Bundle[T]) VHat() []T                                 { return b.vHat }
func (b *Bundle[T]) R() []T                                    { return b.r }
func (b *Bundle[T]) Rinv() []T                                 { return b.rInv }
func (b *Bundle[T]) Constraint(k int) constraint.Constraint[T] { return b.constraints[k] }

// EquationStart returns the offset of constraint k, in cluster order, in
// the constraint equation space.
func (b *Bundle[T]) EquationStart(k int) int { return b.equationStart[k] }

// CalcUnprojectedImpulses sets y = −R⁻¹⊙(vc − v̂).
func (b *Bundle[T]) CalcUnprojectedImpulses(vc, y []T) {
	if len(vc) != len(b.r) || len(y) != len(b.r) {
		panic(linalg.ErrShape)
	}
	for i := range y {
		y[i] = b.rInv[i].Mul(vc[i].Sub(b.vHat[i])).Neg()
	}
}

// ProjectImpulses applies each constraint's projection to its own slice of
// y, writing γ.
func (b *Bundle[T]) ProjectImpulses(y, gamma []T) {
	b.project(y, gamma, nil)
}

// ProjectImpulsesAndCalcConstraintsHessian projects like ProjectImpulses
// and also returns, per constraint, Gᵢ = ∂γᵢ/∂yᵢ·diag(Rᵢ⁻¹), the block of
// the constraints Hessian G in H = A + Jᵀ·G·J.
func (b *Bundle[T]) ProjectImpulsesAndCalcConstraintsHessian(y, gamma []T) []*linalg.Matrix[T] {
	G := make([]*linalg.Matrix[T], len(b.constraints))
	b.project(y, gamma, G)
	return G
}

func (b *Bundle[T]) project(y, gamma []T, G []*linalg.Matrix[T]) {
	if len(y) != len(b.r) || len(gamma) != len(b.r) {
		panic(linalg.ErrShape)
	}
	for k, c := range b.constraints {
		s, e := b.equationStart[k], b.equationStart[k+1]
		if G == nil {
			c.Project(y[s:e], b.r[s:e], gamma[s:e], nil)
			continue
		}
		dPdy := linalg.NewMatrix[T](e-s, e-s)
		c.Project(y[s:e], b.r[s:e], gamma[s:e], dPdy)
		G[k] = dPdy.ScaleColumns(b.rInv[s:e])
	}
}
