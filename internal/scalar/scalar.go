package scalar

// Scalar is the arithmetic used by every numeric kernel of the contact
// model. T is the implementing type itself.
type Scalar[T any] interface {
	Add(T) T
	Sub(T) T
	Mul(T) T
	Div(T) T
	Neg() T
	Sqrt() T
	Scale(float64) T
	// Lift converts a constant into T. The receiver is ignored.
	Lift(float64) T
	// Value returns the float64 part used for comparisons and branching.
	Value() float64
}

// Of returns the constant x as a T.
func Of[T Scalar[T]](x float64) T {
	var z T
	return z.Lift(x)
}

// FromFloats lifts every entry of x into T.
func FromFloats[T Scalar[T]](x []float64) []T {
	out := make([]T, len(x))
	for i, v := range x {
		out[i] = Of[T](v)
	}
	return out
}

// Values extracts the float64 parts of x.
func Values[T Scalar[T]](x []T) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v.Value()
	}
	return out
}

// Max returns the operand with the larger value. Ties return a.
func Max[T Scalar[T]](a, b T) T {
	if b.Value() > a.Value() {
		return b
	}
	return a
}

// Positive reports whether x is strictly positive.
func Positive[T Scalar[T]](x T) bool {
	return x.Value() > 0
}
