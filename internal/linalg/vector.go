package linalg

import "github.com/san-kum/dyncontact/internal/scalar"

// Dot returns xᵀy.
func Dot[T scalar.Scalar[T]](x, y []T) T {
	if len(x) != len(y) {
		panic(ErrShape)
	}
	var sum T
	for i := range x {
		sum = sum.Add(x[i].Mul(y[i]))
	}
	return sum
}

// Sub returns x - y.
func Sub[T scalar.Scalar[T]](x, y []T) []T {
	if len(x) != len(y) {
		panic(ErrShape)
	}
	out := make([]T, len(x))
	for i := range x {
		out[i] = x[i].Sub(y[i])
	}
	return out
}

// SubInPlace sets x = x - y.
func SubInPlace[T scalar.Scalar[T]](x, y []T) {
	if len(x) != len(y) {
		panic(ErrShape)
	}
	for i := range x {
		x[i] = x[i].Sub(y[i])
	}
}

// Clone returns a copy of x.
func Clone[T any](x []T) []T {
	c := make([]T, len(x))
	copy(c, x)
	return c
}

// WeightedSquaredNorm returns Σ wᵢ·xᵢ².
func WeightedSquaredNorm[T scalar.Scalar[T]](x, w []T) T {
	if len(x) != len(w) {
		panic(ErrShape)
	}
	var sum T
	for i := range x {
		sum = sum.Add(x[i].Mul(w[i].Mul(x[i])))
	}
	return sum
}
