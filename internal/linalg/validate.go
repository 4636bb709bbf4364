package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/dyncontact/internal/scalar"
)

// symmetryTol is the relative tolerance used when checking symmetry.
const symmetryTol = 1e-12

// Dense copies the float64 parts of m into a gonum matrix.
func (m *Matrix[T]) Dense() *mat.Dense {
	if m.rows == 0 || m.cols == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(m.rows, m.cols, m.Values())
}

// ValidateSPD checks that m is square, symmetric and positive definite.
// The check runs on float64 values through gonum's Cholesky.
func ValidateSPD[T scalar.Scalar[T]](m *Matrix[T]) error {
	if m.rows != m.cols {
		return fmt.Errorf("%dx%d: %w", m.rows, m.cols, ErrNotSquare)
	}
	n := m.rows
	if n == 0 {
		return fmt.Errorf("empty matrix: %w", ErrNotPositiveDefinite)
	}
	vals := m.Values()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := vals[i*n+j], vals[j*n+i]
			if math.Abs(a-b) > symmetryTol*math.Max(1, math.Max(math.Abs(a), math.Abs(b))) {
				return fmt.Errorf("entry (%d,%d)=%g vs (%d,%d)=%g: %w", i, j, a, j, i, b, ErrNotSymmetric)
			}
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(mat.NewSymDense(n, vals)); !ok {
		return ErrNotPositiveDefinite
	}
	return nil
}
