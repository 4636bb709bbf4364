package constraint

import (
	"github.com/san-kum/dyncontact/internal/linalg"
	"github.com/san-kum/dyncontact/internal/scalar"
)

// Limit is a unilateral compliant constraint g(q) ≥ 0. Impulses can only
// push: γ = max(0, y) componentwise.
type Limit[T scalar.Scalar[T]] struct {
	Base[T]
	params Parameters
}

var _ Constraint[scalar.Float] = (*Limit[scalar.Float])(nil)

func NewLimit[T scalar.Scalar[T]](base Base[T], params Parameters) (*Limit[T], error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Limit[T]{Base: base, params: params}, nil
}

func (c *Limit[T]) Parameters() Parameters { return c.params }

func (c *Limit[T]) CalcBiasTerm(timeStep, _ T) []T {
	return complianceBias(c.params, c.g, timeStep)
}

func (c *Limit[T]) CalcDiagonalRegularization(timeStep, wi T) []T {
	return complianceRegularization(c.params, len(c.g), timeStep, wi)
}

func (c *Limit[T]) Project(y, _, gamma []T, dPdy *linalg.Matrix[T]) {
	projectClamp(y, gamma, dPdy)
}
