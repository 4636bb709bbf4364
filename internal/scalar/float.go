package scalar

import "math"

// Float is a float64 satisfying Scalar.
type Float float64

var _ Scalar[Float] = Float(0)

func (a Float) Add(b Float) Float     { return a + b }
func (a Float) Sub(b Float) Float     { return a - b }
func (a Float) Mul(b Float) Float     { return a * b }
func (a Float) Div(b Float) Float     { return a / b }
func (a Float) Neg() Float            { return -a }
func (a Float) Sqrt() Float           { return Float(math.Sqrt(float64(a))) }
func (a Float) Scale(f float64) Float { return Float(f) * a }
func (Float) Lift(x float64) Float    { return Float(x) }
func (a Float) Value() float64        { return float64(a) }

// Floats converts a float64 slice into a Float slice without lifting
// through the generic path.
func Floats(x []float64) []Float {
	out := make([]Float, len(x))
	for i, v := range x {
		out[i] = Float(v)
	}
	return out
}
