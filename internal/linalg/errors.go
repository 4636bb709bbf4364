package linalg

import "errors"

var (
	// ErrShape indicates operands whose dimensions do not agree. Kernels
	// panic with it; constructors return it.
	ErrShape = errors.New("linalg: dimension mismatch")

	// ErrNotSquare indicates a matrix that must be square is not.
	ErrNotSquare = errors.New("linalg: matrix is not square")

	// ErrNotSymmetric indicates a matrix that must be symmetric is not.
	ErrNotSymmetric = errors.New("linalg: matrix is not symmetric")

	// ErrNotPositiveDefinite indicates a failed Cholesky factorization.
	ErrNotPositiveDefinite = errors.New("linalg: matrix is not positive definite")

	// ErrBlockIndex indicates a block position outside a block operator.
	ErrBlockIndex = errors.New("linalg: block index out of range")
)
