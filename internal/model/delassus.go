package model

import (
	"fmt"

	"github.com/san-kum/dyncontact/internal/linalg"
	"github.com/san-kum/dyncontact/internal/scalar"
)

// calcDelassusDiagonal approximates, for each constraint in cluster order,
// the local Delassus operator Wᵢ = Σ Jᵢc·A꜀⁻¹·Jᵢcᵀ over its cliques and
// returns wᵢ = ‖Wᵢ‖_F/nᵢ. A⁻¹ is only applied to each constraint's own
// Jacobian blocks.
func (m *Model[T]) calcDelassusDiagonal() ([]T, error) {
	order := m.graph.ConstraintsPermutation()
	nc := order.PermutedDomainSize()
	if nc == 0 {
		return nil, nil
	}

	cliques := m.graph.ParticipatingCliques()
	chol := make([]linalg.Cholesky[T], len(m.dynamics))
	for c, a := range m.dynamics {
		if err := chol[c].Factorize(a); err != nil {
			return nil, fmt.Errorf("factorize clique %d: %w", cliques.DomainIndex(c), err)
		}
	}

	w := make([]T, nc)
	for k := 0; k < nc; k++ {
		c := m.problem.Constraint(order.DomainIndex(k))
		n := c.NumConstraintEquations()
		W := linalg.NewMatrix[T](n, n)
		add := func(clique int, j *linalg.Matrix[T]) {
			f := &chol[cliques.PermutedIndex(clique)]
			W.AddInPlace(j.Mul(f.Solve(j.Transpose())))
		}
		add(c.FirstClique(), c.FirstCliqueJacobian())
		if c.NumCliques() == 2 {
			add(c.SecondClique(), c.SecondCliqueJacobian())
		}
		w[k] = W.FrobeniusNorm().Div(scalar.Of[T](float64(n)))
	}
	return w, nil
}
