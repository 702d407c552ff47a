package csc

import "sort"

// Builder accumulates coordinate (COO) triplets and assembles them into a
// canonical Matrix: columns sorted, rows strictly increasing within each
// column, duplicate coordinates summed, and entries that sum to exactly zero
// dropped.
//
// A Builder is not safe for concurrent use; build the Matrix first and share
// that instead.
type Builder struct {
	nrows, ncols int
	cols         []int
	rows         []int
	vals         []float64
}

// NewBuilder returns a Builder for an nrows-by-ncols matrix.
func NewBuilder(nrows, ncols int) (*Builder, error) {
	if nrows <= 0 || ncols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Builder{nrows: nrows, ncols: ncols}, nil
}

// Push records the triplet A(row, col) += val. Duplicate coordinates are
// allowed and are summed at Build time, which is exactly what MNA stamping
// needs: each circuit element contributes independently to shared positions.
func (b *Builder) Push(row, col int, val float64) error {
	if row < 0 || row >= b.nrows || col < 0 || col >= b.ncols {
		return ErrIndexOutOfRange
	}
	b.rows = append(b.rows, row)
	b.cols = append(b.cols, col)
	b.vals = append(b.vals, val)

	return nil
}

// Len returns the number of pushed triplets (before duplicate merging).
func (b *Builder) Len() int { return len(b.rows) }

// Build assembles the accumulated triplets into a Matrix. The Builder keeps
// its triplets, so Push/Build can continue afterwards (useful when a stamp
// pattern is extended incrementally).
func (b *Builder) Build() (*Matrix, error) {
	nnz := len(b.rows)

	// 1. Sort triplet indices column-major, rows ascending within a column.
	order := make([]int, nnz)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(x, y int) bool {
		i, j := order[x], order[y]
		if b.cols[i] != b.cols[j] {
			return b.cols[i] < b.cols[j]
		}

		return b.rows[i] < b.rows[j]
	})

	// 2. Merge duplicates and drop exact zeros while emitting CSC arrays.
	colPtr := make([]int, b.ncols+1)
	rowInd := make([]int, 0, nnz)
	values := make([]float64, 0, nnz)

	flush := func(col, row int, sum float64) {
		if sum == 0 {
			return
		}
		rowInd = append(rowInd, row)
		values = append(values, sum)
		colPtr[col+1]++
	}

	curCol, curRow := -1, -1
	var sum float64
	for _, i := range order {
		c, r := b.cols[i], b.rows[i]
		if c != curCol || r != curRow {
			if curCol >= 0 {
				flush(curCol, curRow, sum)
			}
			curCol, curRow, sum = c, r, 0
		}
		sum += b.vals[i]
	}
	if curCol >= 0 {
		flush(curCol, curRow, sum)
	}

	// 3. Prefix-sum the per-column counts into pointers.
	for j := 0; j < b.ncols; j++ {
		colPtr[j+1] += colPtr[j]
	}

	return NewMatrix(b.nrows, b.ncols, colPtr, rowInd, values)
}
