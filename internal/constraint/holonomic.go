package constraint

import (
	"github.com/san-kum/dyncontact/internal/linalg"
	"github.com/san-kum/dyncontact/internal/scalar"
)

// Holonomic is a bilateral compliant constraint g(q) = 0 with identity
// projection. With an identity Jacobian it models a spring-damper pulling
// a particle towards the origin.
type Holonomic[T scalar.Scalar[T]] struct {
	Base[T]
	params Parameters
}

var _ Constraint[scalar.Float] = (*Holonomic[scalar.Float])(nil)

// NewHolonomic wraps base with compliance parameters.
func NewHolonomic[T scalar.Scalar[T]](base Base[T], params Parameters) (*Holonomic[T], error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Holonomic[T]{Base: base, params: params}, nil
}

func (c *Holonomic[T]) Parameters() Parameters { return c.params }

func (c *Holonomic[T]) CalcBiasTerm(timeStep, _ T) []T {
	return complianceBias(c.params, c.g, timeStep)
}

func (c *Holonomic[T]) CalcDiagonalRegularization(timeStep, wi T) []T {
	return complianceRegularization(c.params, len(c.g), timeStep, wi)
}

func (c *Holonomic[T]) Project(y, _, gamma []T, dPdy *linalg.Matrix[T]) {
	projectIdentity(y, gamma, dPdy)
}
