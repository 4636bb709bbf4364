package linalg

import (
	"fmt"

	"github.com/san-kum/dyncontact/internal/scalar"
)

// Block is one non-zero block of a BlockSparse operator.
type Block[T scalar.Scalar[T]] struct {
	Row, Col int
	M        *Matrix[T]
}

// BlockSparse is an operator partitioned into row and column blocks where
// only a few blocks are non-zero. Blocks at the same position accumulate.
type BlockSparse[T scalar.Scalar[T]] struct {
	rowStarts []int
	colStarts []int
	rowSizes  []int
	colSizes  []int
	blocks    []Block[T]
}

// NewBlockSparse returns an empty operator with the given block partition.
func NewBlockSparse[T scalar.Scalar[T]](rowSizes, colSizes []int) *BlockSparse[T] {
	return &BlockSparse[T]{
		rowStarts: starts(rowSizes),
		colStarts: starts(colSizes),
		rowSizes:  Clone(rowSizes),
		colSizes:  Clone(colSizes),
	}
}

// starts returns the prefix sums of sizes with a trailing total.
func starts(sizes []int) []int {
	s := make([]int, len(sizes)+1)
	for i, n := range sizes {
		s[i+1] = s[i] + n
	}
	return s
}

// AddBlock places m at block position (row, col).
func (b *BlockSparse[T]) AddBlock(row, col int, m *Matrix[T]) error {
	if row < 0 || row >= len(b.rowSizes) || col < 0 || col >= len(b.colSizes) {
		return fmt.Errorf("block (%d,%d) in %dx%d blocks: %w", row, col, len(b.rowSizes), len(b.colSizes), ErrBlockIndex)
	}
	if m.rows != b.rowSizes[row] || m.cols != b.colSizes[col] {
		return fmt.Errorf("block (%d,%d) is %dx%d, want %dx%d: %w",
			row, col, m.rows, m.cols, b.rowSizes[row], b.colSizes[col], ErrShape)
	}
	b.blocks = append(b.blocks, Block[T]{Row: row, Col: col, M: m})
	return nil
}

func (b *BlockSparse[T]) Rows() int          { return b.rowStarts[len(b.rowSizes)] }
func (b *BlockSparse[T]) Cols() int          { return b.colStarts[len(b.colSizes)] }
func (b *BlockSparse[T]) NumBlockRows() int  { return len(b.rowSizes) }
func (b *BlockSparse[T]) NumBlockCols() int  { return len(b.colSizes) }
func (b *BlockSparse[T]) Blocks() []Block[T] { return b.blocks }

// MulVecTo sets dst = B·x.
func (b *BlockSparse[T]) MulVecTo(dst, x []T) {
	if len(x) != b.Cols() || len(dst) != b.Rows() {
		panic(ErrShape)
	}
	var z T
	for i := range dst {
		dst[i] = z
	}
	for _, blk := range b.blocks {
		r0, c0 := b.rowStarts[blk.Row], b.colStarts[blk.Col]
		xs := x[c0 : c0+blk.M.cols]
		for i := 0; i < blk.M.rows; i++ {
			var sum T
			row := blk.M.data[i*blk.M.cols : (i+1)*blk.M.cols]
			for j, a := range row {
				sum = sum.Add(a.Mul(xs[j]))
			}
			dst[r0+i] = dst[r0+i].Add(sum)
		}
	}
}

// MulTransVecTo sets dst = Bᵀ·x.
func (b *BlockSparse[T]) MulTransVecTo(dst, x []T) {
	if len(x) != b.Rows() || len(dst) != b.Cols() {
		panic(ErrShape)
	}
	var z T
	for i := range dst {
		dst[i] = z
	}
	for _, blk := range b.blocks {
		r0, c0 := b.rowStarts[blk.Row], b.colStarts[blk.Col]
		blk.M.MulTransVecAddTo(dst[c0:c0+blk.M.cols], x[r0:r0+blk.M.rows])
	}
}

// Dense materializes the operator.
func (b *BlockSparse[T]) Dense() *Matrix[T] {
	out := NewMatrix[T](b.Rows(), b.Cols())
	for _, blk := range b.blocks {
		r0, c0 := b.rowStarts[blk.Row], b.colStarts[blk.Col]
		for i := 0; i < blk.M.rows; i++ {
			for j := 0; j < blk.M.cols; j++ {
				k := (r0+i)*out.cols + c0 + j
				out.data[k] = out.data[k].Add(blk.M.data[i*blk.M.cols+j])
			}
		}
	}
	return out
}
