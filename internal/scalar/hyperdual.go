package scalar

import "gonum.org/v1/gonum/num/hyperdual"

// HyperDual is a hyper-dual number a + bε₁ + cε₂ + dε₁ε₂. Seeding ε₁ along
// direction i and ε₂ along direction j yields ∂f/∂xᵢ, ∂f/∂xⱼ and ∂²f/∂xᵢ∂xⱼ.
type HyperDual hyperdual.Number

var _ Scalar[HyperDual] = HyperDual{}

func (a HyperDual) Add(b HyperDual) HyperDual {
	return HyperDual(hyperdual.Add(hyperdual.Number(a), hyperdual.Number(b)))
}

func (a HyperDual) Sub(b HyperDual) HyperDual {
	return HyperDual(hyperdual.Sub(hyperdual.Number(a), hyperdual.Number(b)))
}

func (a HyperDual) Mul(b HyperDual) HyperDual {
	return HyperDual(hyperdual.Mul(hyperdual.Number(a), hyperdual.Number(b)))
}

func (a HyperDual) Div(b HyperDual) HyperDual {
	q := hyperdual.Mul(hyperdual.Number(a), hyperdual.Inv(hyperdual.Number(b)))
	q.Real = a.Real / b.Real
	return HyperDual(q)
}

func (a HyperDual) Neg() HyperDual {
	return HyperDual{Real: -a.Real, E1mag: -a.E1mag, E2mag: -a.E2mag, E1E2mag: -a.E1E2mag}
}

func (a HyperDual) Sqrt() HyperDual {
	return HyperDual(hyperdual.Sqrt(hyperdual.Number(a)))
}

func (a HyperDual) Scale(f float64) HyperDual {
	return HyperDual(hyperdual.Scale(f, hyperdual.Number(a)))
}

func (HyperDual) Lift(x float64) HyperDual { return HyperDual{Real: x} }
func (a HyperDual) Value() float64         { return a.Real }

// Mixed returns the ε₁ε₂ coefficient, the second derivative along the two
// seeded directions.
func (a HyperDual) Mixed() float64 { return a.E1E2mag }
