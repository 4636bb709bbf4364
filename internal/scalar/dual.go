package scalar

import (
	"fmt"

	"gonum.org/v1/gonum/num/dual"
)

// Dual is a forward-mode dual number a + bε with ε² = 0. Emag carries the
// derivative along the seeded direction.
type Dual dual.Number

var _ Scalar[Dual] = Dual{}

// NewDual returns value + derivative·ε.
func NewDual(value, derivative float64) Dual {
	return Dual{Real: value, Emag: derivative}
}

func (a Dual) Add(b Dual) Dual { return Dual(dual.Add(dual.Number(a), dual.Number(b))) }
func (a Dual) Sub(b Dual) Dual { return Dual(dual.Sub(dual.Number(a), dual.Number(b))) }
func (a Dual) Mul(b Dual) Dual { return Dual(dual.Mul(dual.Number(a), dual.Number(b))) }

func (a Dual) Div(b Dual) Dual {
	q := dual.Mul(dual.Number(a), dual.Inv(dual.Number(b)))
	q.Real = a.Real / b.Real
	return Dual(q)
}

func (a Dual) Neg() Dual            { return Dual{Real: -a.Real, Emag: -a.Emag} }
func (a Dual) Sqrt() Dual           { return Dual(dual.Sqrt(dual.Number(a))) }
func (a Dual) Scale(f float64) Dual { return Dual(dual.Scale(f, dual.Number(a))) }
func (Dual) Lift(x float64) Dual    { return Dual{Real: x} }
func (a Dual) Value() float64       { return a.Real }
func (a Dual) Derivative() float64  { return a.Emag }

func (a Dual) String() string {
	return fmt.Sprintf("%v", dual.Number(a))
}
