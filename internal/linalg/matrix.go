package linalg

import (
	"fmt"
	"strings"

	"github.com/san-kum/dyncontact/internal/scalar"
)

// Matrix is a dense row-major matrix over T. Entry (i, j) lives at
// data[i*cols+j].
type Matrix[T scalar.Scalar[T]] struct {
	rows, cols int
	data       []T
}

// NewMatrix returns a zero rows×cols matrix.
func NewMatrix[T scalar.Scalar[T]](rows, cols int) *Matrix[T] {
	if rows < 0 || cols < 0 {
		panic(ErrShape)
	}
	return &Matrix[T]{rows: rows, cols: cols, data: make([]T, rows*cols)}
}

// NewMatrixFromFloats lifts row-major float64 data into a rows×cols matrix.
func NewMatrixFromFloats[T scalar.Scalar[T]](rows, cols int, data []float64) (*Matrix[T], error) {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return nil, fmt.Errorf("%dx%d from %d values: %w", rows, cols, len(data), ErrShape)
	}
	return &Matrix[T]{rows: rows, cols: cols, data: scalar.FromFloats[T](data)}, nil
}

// NewMatrixFromRows lifts a slice of rows. All rows must have equal length.
func NewMatrixFromRows[T scalar.Scalar[T]](rows [][]float64) (*Matrix[T], error) {
	if len(rows) == 0 {
		return NewMatrix[T](0, 0), nil
	}
	cols := len(rows[0])
	m := NewMatrix[T](len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(row), cols, ErrShape)
		}
		for j, v := range row {
			m.data[i*cols+j] = scalar.Of[T](v)
		}
	}
	return m, nil
}

// Identity returns the n×n identity.
func Identity[T scalar.Scalar[T]](n int) *Matrix[T] {
	m := NewMatrix[T](n, n)
	m.SetIdentity()
	return m
}

// ScaledIdentity returns s·Iₙ.
func ScaledIdentity[T scalar.Scalar[T]](n int, s T) *Matrix[T] {
	m := NewMatrix[T](n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = s
	}
	return m
}

func (m *Matrix[T]) Rows() int { return m.rows }
func (m *Matrix[T]) Cols() int { return m.cols }

func (m *Matrix[T]) At(i, j int) T {
	m.checkIndex(i, j)
	return m.data[i*m.cols+j]
}

func (m *Matrix[T]) Set(i, j int, v T) {
	m.checkIndex(i, j)
	m.data[i*m.cols+j] = v
}

// Row returns row i as a slice sharing storage with m.
func (m *Matrix[T]) Row(i int) []T {
	m.checkIndex(i, 0)
	return m.data[i*m.cols : (i+1)*m.cols]
}

func (m *Matrix[T]) checkIndex(i, j int) {
	if i < 0 || i >= m.rows || j < 0 || (j >= m.cols && m.cols > 0) {
		panic(fmt.Sprintf("linalg: index (%d,%d) out of range for %dx%d", i, j, m.rows, m.cols))
	}
}

func (m *Matrix[T]) Clone() *Matrix[T] {
	c := &Matrix[T]{rows: m.rows, cols: m.cols, data: make([]T, len(m.data))}
	copy(c.data, m.data)
	return c
}

// Zero resets every entry to the zero value of T.
func (m *Matrix[T]) Zero() {
	var z T
	for i := range m.data {
		m.data[i] = z
	}
}

// SetIdentity overwrites a square m with the identity.
func (m *Matrix[T]) SetIdentity() {
	m.SetDiagonal(nil)
}

// SetDiagonal overwrites a square m with diag(d). A nil d means ones.
func (m *Matrix[T]) SetDiagonal(d []T) {
	if m.rows != m.cols || (d != nil && len(d) != m.rows) {
		panic(ErrShape)
	}
	m.Zero()
	one := scalar.Of[T](1)
	for i := 0; i < m.rows; i++ {
		if d == nil {
			m.data[i*m.cols+i] = one
		} else {
			m.data[i*m.cols+i] = d[i]
		}
	}
}

// Diagonal returns a copy of the main diagonal.
func (m *Matrix[T]) Diagonal() []T {
	n := min(m.rows, m.cols)
	d := make([]T, n)
	for i := 0; i < n; i++ {
		d[i] = m.data[i*m.cols+i]
	}
	return d
}

// MulVecTo sets dst = m·x.
func (m *Matrix[T]) MulVecTo(dst, x []T) {
	if len(x) != m.cols || len(dst) != m.rows {
		panic(ErrShape)
	}
	for i := 0; i < m.rows; i++ {
		var sum T
		row := m.data[i*m.cols : (i+1)*m.cols]
		for j, a := range row {
			sum = sum.Add(a.Mul(x[j]))
		}
		dst[i] = sum
	}
}

// MulVec returns m·x.
func (m *Matrix[T]) MulVec(x []T) []T {
	dst := make([]T, m.rows)
	m.MulVecTo(dst, x)
	return dst
}

// MulTransVecAddTo accumulates dst += mᵀ·x.
func (m *Matrix[T]) MulTransVecAddTo(dst, x []T) {
	if len(x) != m.rows || len(dst) != m.cols {
		panic(ErrShape)
	}
	for i := 0; i < m.rows; i++ {
		xi := x[i]
		row := m.data[i*m.cols : (i+1)*m.cols]
		for j, a := range row {
			dst[j] = dst[j].Add(a.Mul(xi))
		}
	}
}

// Mul returns m·b.
func (m *Matrix[T]) Mul(b *Matrix[T]) *Matrix[T] {
	if m.cols != b.rows {
		panic(ErrShape)
	}
	out := NewMatrix[T](m.rows, b.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < b.cols; j++ {
			var sum T
			for k := 0; k < m.cols; k++ {
				sum = sum.Add(m.data[i*m.cols+k].Mul(b.data[k*b.cols+j]))
			}
			out.data[i*b.cols+j] = sum
		}
	}
	return out
}

// AddInPlace sets m = m + b.
func (m *Matrix[T]) AddInPlace(b *Matrix[T]) {
	if m.rows != b.rows || m.cols != b.cols {
		panic(ErrShape)
	}
	for i := range m.data {
		m.data[i] = m.data[i].Add(b.data[i])
	}
}

func (m *Matrix[T]) Transpose() *Matrix[T] {
	t := NewMatrix[T](m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			t.data[j*m.rows+i] = m.data[i*m.cols+j]
		}
	}
	return t
}

// ScaleColumns returns m·diag(s).
func (m *Matrix[T]) ScaleColumns(s []T) *Matrix[T] {
	if len(s) != m.cols {
		panic(ErrShape)
	}
	out := m.Clone()
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[i*m.cols+j] = out.data[i*m.cols+j].Mul(s[j])
		}
	}
	return out
}

// FrobeniusNorm returns sqrt(Σ mᵢⱼ²).
func (m *Matrix[T]) FrobeniusNorm() T {
	var sum T
	for _, a := range m.data {
		sum = sum.Add(a.Mul(a))
	}
	return sum.Sqrt()
}

// Values returns the float64 parts of m in row-major order.
func (m *Matrix[T]) Values() []float64 {
	return scalar.Values(m.data)
}

// Equal reports whether m and b have the same shape and identical values.
func (m *Matrix[T]) Equal(b *Matrix[T]) bool {
	if m.rows != b.rows || m.cols != b.cols {
		return false
	}
	for i := range m.data {
		if m.data[i].Value() != b.data[i].Value() {
			return false
		}
	}
	return true
}

func (m *Matrix[T]) String() string {
	var b strings.Builder
	for i := 0; i < m.rows; i++ {
		b.WriteString("[")
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%g", m.data[i*m.cols+j].Value())
		}
		b.WriteString("]\n")
	}
	return b.String()
}
