package linalg

import (
	"fmt"

	"github.com/san-kum/dyncontact/internal/scalar"
)

// Cholesky holds the factor L of a symmetric positive definite A = L·Lᵀ.
// It is generic so solves propagate derivatives through A.
type Cholesky[T scalar.Scalar[T]] struct {
	l *Matrix[T]
}

// Factorize computes the factorization of a. Only the lower triangle of a
// is read.
func (c *Cholesky[T]) Factorize(a *Matrix[T]) error {
	if a.rows != a.cols {
		return ErrNotSquare
	}
	n := a.rows
	l := NewMatrix[T](n, n)
	for j := 0; j < n; j++ {
		d := a.At(j, j)
		for k := 0; k < j; k++ {
			ljk := l.data[j*n+k]
			d = d.Sub(ljk.Mul(ljk))
		}
		if !scalar.Positive(d) {
			return fmt.Errorf("pivot %d is %g: %w", j, d.Value(), ErrNotPositiveDefinite)
		}
		ljj := d.Sqrt()
		l.data[j*n+j] = ljj
		for i := j + 1; i < n; i++ {
			s := a.At(i, j)
			for k := 0; k < j; k++ {
				s = s.Sub(l.data[i*n+k].Mul(l.data[j*n+k]))
			}
			l.data[i*n+j] = s.Div(ljj)
		}
	}
	c.l = l
	return nil
}

// Size returns the order of the factorized matrix.
func (c *Cholesky[T]) Size() int {
	if c.l == nil {
		return 0
	}
	return c.l.rows
}

// SolveVec returns A⁻¹·b.
func (c *Cholesky[T]) SolveVec(b []T) []T {
	n := c.Size()
	if len(b) != n {
		panic(ErrShape)
	}
	x := Clone(b)
	// L·z = b
	for i := 0; i < n; i++ {
		s := x[i]
		for k := 0; k < i; k++ {
			s = s.Sub(c.l.data[i*n+k].Mul(x[k]))
		}
		x[i] = s.Div(c.l.data[i*n+i])
	}
	// Lᵀ·x = z
	for i := n - 1; i >= 0; i-- {
		s := x[i]
		for k := i + 1; k < n; k++ {
			s = s.Sub(c.l.data[k*n+i].Mul(x[k]))
		}
		x[i] = s.Div(c.l.data[i*n+i])
	}
	return x
}

// Solve returns A⁻¹·B, column by column.
func (c *Cholesky[T]) Solve(b *Matrix[T]) *Matrix[T] {
	if b.rows != c.Size() {
		panic(ErrShape)
	}
	out := NewMatrix[T](b.rows, b.cols)
	col := make([]T, b.rows)
	for j := 0; j < b.cols; j++ {
		for i := 0; i < b.rows; i++ {
			col[i] = b.data[i*b.cols+j]
		}
		x := c.SolveVec(col)
		for i := 0; i < b.rows; i++ {
			out.data[i*b.cols+j] = x[i]
		}
	}
	return out
}
