package csc

// Matrix is a sparse matrix in compressed-sparse-column form.
//
// Column j occupies positions colPtr[j]..colPtr[j+1]-1 of rowInd and values.
// Row indices within a column are strictly increasing. A Matrix is immutable
// once built; the solver pipeline reads it and never writes it, so a single
// Matrix may be shared across concurrent solver contexts.
type Matrix struct {
	nrows, ncols int
	colPtr       []int     // length ncols+1
	rowInd       []int     // length nnz
	values       []float64 // length nnz
}

// NewMatrix wraps the given CSC arrays in a Matrix after validating every
// structural invariant. The arrays are retained, not copied; the caller must
// not mutate them afterwards.
func NewMatrix(nrows, ncols int, colPtr, rowInd []int, values []float64) (*Matrix, error) {
	m := &Matrix{nrows: nrows, ncols: ncols, colPtr: colPtr, rowInd: rowInd, values: values}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate checks all CSC invariants: positive dimensions, a well-formed
// column-pointer array, in-range and strictly increasing row indices per
// column, and matching rowInd/values lengths.
func (m *Matrix) Validate() error {
	// 1. Dimensions
	if m.nrows <= 0 || m.ncols <= 0 {
		return ErrInvalidDimensions
	}

	// 2. Column pointers: length, endpoints, monotonicity. Monotonicity must
	// hold for every pair before any entry range is read, or a decreasing
	// pointer would send a neighbouring column's scan past rowInd.
	if len(m.colPtr) != m.ncols+1 || m.colPtr[0] != 0 || m.colPtr[m.ncols] != len(m.rowInd) {
		return ErrInvalidColPointers
	}
	for j := 0; j < m.ncols; j++ {
		if m.colPtr[j] > m.colPtr[j+1] {
			return ErrInvalidColPointers
		}
	}

	// 3. Parallel array lengths
	if len(m.rowInd) != len(m.values) {
		return ErrLengthMismatch
	}

	// 4. Per-column: sorted in-range rows
	for j := 0; j < m.ncols; j++ {
		prev := -1
		for p := m.colPtr[j]; p < m.colPtr[j+1]; p++ {
			r := m.rowInd[p]
			if r < 0 || r >= m.nrows {
				return ErrIndexOutOfRange
			}
			if r <= prev {
				return ErrRowsNotSorted
			}
			prev = r
		}
	}

	return nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.nrows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.ncols }

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int { return len(m.rowInd) }

// IsSquare reports whether the matrix is square.
func (m *Matrix) IsSquare() bool { return m.nrows == m.ncols }

// ColStart returns the position of the first entry of column j.
// ColStart(ncols) returns NNZ, so ColStart(j+1) is one past column j.
func (m *Matrix) ColStart(j int) int { return m.colPtr[j] }

// RowIndex returns the row index of the entry at position p.
func (m *Matrix) RowIndex(p int) int { return m.rowInd[p] }

// Value returns the numeric value of the entry at position p.
func (m *Matrix) Value(p int) float64 { return m.values[p] }

// Col returns the row indices and values of column j as sub-slices of the
// underlying storage. Callers must treat both slices as read-only.
func (m *Matrix) Col(j int) ([]int, []float64) {
	s, e := m.colPtr[j], m.colPtr[j+1]

	return m.rowInd[s:e], m.values[s:e]
}

// Pattern returns a value-free view over the sparsity structure.
func (m *Matrix) Pattern() Pattern {
	return Pattern{n: m.ncols, nrows: m.nrows, colPtr: m.colPtr, rowInd: m.rowInd}
}

// AddColTimes performs y += x * A(:,j) into the dense vector y.
func (m *Matrix) AddColTimes(j int, x float64, y []float64) {
	rows, vals := m.Col(j)
	for p, i := range rows {
		y[i] += x * vals[p]
	}
}

// MulVec computes y = A·x for dense x and y. y is overwritten and must have
// length Rows(); x must have length Cols().
func (m *Matrix) MulVec(x, y []float64) {
	for i := range y {
		y[i] = 0
	}
	for j := 0; j < m.ncols; j++ {
		m.AddColTimes(j, x[j], y)
	}
}

// PermuteColumns returns A(:, q): a new Matrix whose column k is column q[k]
// of the receiver. q maps new column index to old column index.
func (m *Matrix) PermuteColumns(q []int) *Matrix {
	colPtr := make([]int, 1, m.ncols+1)
	rowInd := make([]int, 0, m.NNZ())
	values := make([]float64, 0, m.NNZ())
	for _, oldJ := range q {
		rows, vals := m.Col(oldJ)
		colPtr = append(colPtr, colPtr[len(colPtr)-1]+len(rows))
		rowInd = append(rowInd, rows...)
		values = append(values, vals...)
	}

	return &Matrix{nrows: m.nrows, ncols: m.ncols, colPtr: colPtr, rowInd: rowInd, values: values}
}

// Transpose returns Aᵗ as a new Matrix, built in O(n + nnz) with a counting
// pass per row. The result has sorted columns by construction.
func (m *Matrix) Transpose() *Matrix {
	nnz := m.NNZ()
	colPtr := make([]int, m.nrows+1)

	// count entries per row of A (column of Aᵗ)
	for _, r := range m.rowInd {
		colPtr[r+1]++
	}
	for i := 0; i < m.nrows; i++ {
		colPtr[i+1] += colPtr[i]
	}

	rowInd := make([]int, nnz)
	values := make([]float64, nnz)
	next := make([]int, m.nrows)
	copy(next, colPtr[:m.nrows])

	for j := 0; j < m.ncols; j++ {
		rows, vals := m.Col(j)
		for p, r := range rows {
			q := next[r]
			rowInd[q] = j
			values[q] = vals[p]
			next[r]++
		}
	}

	return &Matrix{nrows: m.ncols, ncols: m.nrows, colPtr: colPtr, rowInd: rowInd, values: values}
}

// Pattern is a value-free view over a CSC sparsity structure. The ordering
// packages (btf, amd) operate on Patterns since they never read values.
type Pattern struct {
	n      int // number of columns
	nrows  int
	colPtr []int
	rowInd []int
}

// NewPattern wraps column pointers and row indices of an n-by-n pattern.
// The slices are retained, not copied.
func NewPattern(n int, colPtr, rowInd []int) Pattern {
	return Pattern{n: n, nrows: n, colPtr: colPtr, rowInd: rowInd}
}

// N returns the number of columns.
func (p Pattern) N() int { return p.n }

// NNZ returns the number of structural entries.
func (p Pattern) NNZ() int { return p.colPtr[p.n] }

// ColStart returns the position of the first entry of column j.
func (p Pattern) ColStart(j int) int { return p.colPtr[j] }

// ColEnd returns one past the last entry of column j.
func (p Pattern) ColEnd(j int) int { return p.colPtr[j+1] }

// RowIndex returns the row index of the entry at position q.
func (p Pattern) RowIndex(q int) int { return p.rowInd[q] }

// Validate checks pointer monotonicity and row-index ranges. It does not
// require sorted rows; callers with a sortedness requirement (amd) receive
// patterns that are sorted by construction.
func (p Pattern) Validate() error {
	if p.n <= 0 {
		return ErrInvalidDimensions
	}
	if len(p.colPtr) != p.n+1 || p.colPtr[0] != 0 {
		return ErrInvalidColPointers
	}
	for j := 0; j < p.n; j++ {
		if p.colPtr[j] > p.colPtr[j+1] {
			return ErrInvalidColPointers
		}
	}
	for _, r := range p.rowInd[:p.colPtr[p.n]] {
		if r < 0 || r >= p.nrows {
			return ErrIndexOutOfRange
		}
	}

	return nil
}
