package csc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparsekit/sparsekit/csc"
)

// mustMatrix builds a Matrix or fails the test.
func mustMatrix(t *testing.T, nrows, ncols int, colPtr, rowInd []int, values []float64) *csc.Matrix {
	t.Helper()
	m, err := csc.NewMatrix(nrows, ncols, colPtr, rowInd, values)
	require.NoError(t, err)

	return m
}

func TestNewMatrix_BuildAndAccess(t *testing.T) {
	// [ 1 0 2 ]
	// [ 0 3 0 ]
	// [ 4 0 5 ]
	m := mustMatrix(t, 3, 3,
		[]int{0, 2, 3, 5},
		[]int{0, 2, 1, 0, 2},
		[]float64{1, 4, 3, 2, 5},
	)

	require.Equal(t, 3, m.Rows())
	require.Equal(t, 3, m.Cols())
	require.Equal(t, 5, m.NNZ())
	require.True(t, m.IsSquare())

	rows, vals := m.Col(0)
	assert.Equal(t, []int{0, 2}, rows)
	assert.Equal(t, []float64{1, 4}, vals)

	rows, vals = m.Col(2)
	assert.Equal(t, []int{0, 2}, rows)
	assert.Equal(t, []float64{2, 5}, vals)

	assert.Equal(t, 2, m.ColStart(1))
	assert.Equal(t, 1, m.RowIndex(2))
	assert.Equal(t, 3.0, m.Value(2))
}

func TestNewMatrix_InvariantViolations(t *testing.T) {
	tests := []struct {
		name    string
		nrows   int
		ncols   int
		colPtr  []int
		rowInd  []int
		values  []float64
		wantErr error
	}{
		{
			name:  "zero dimensions",
			nrows: 0, ncols: 3,
			colPtr: []int{0, 0, 0, 0}, rowInd: nil, values: nil,
			wantErr: csc.ErrInvalidDimensions,
		},
		{
			name:  "colPtr wrong length",
			nrows: 2, ncols: 2,
			colPtr: []int{0, 1}, rowInd: []int{0}, values: []float64{1},
			wantErr: csc.ErrInvalidColPointers,
		},
		{
			name:  "colPtr last not nnz",
			nrows: 2, ncols: 2,
			colPtr: []int{0, 1, 3}, rowInd: []int{0, 1}, values: []float64{1, 2},
			wantErr: csc.ErrInvalidColPointers,
		},
		{
			name:  "colPtr decreasing",
			nrows: 2, ncols: 2,
			colPtr: []int{0, 2, 1}, rowInd: []int{0}, values: []float64{1},
			wantErr: csc.ErrInvalidColPointers,
		},
		{
			// the decreasing pair sits after a column whose scan would
			// otherwise run past rowInd
			name:  "colPtr decreasing mid sequence",
			nrows: 2, ncols: 3,
			colPtr: []int{0, 1, 3, 2}, rowInd: []int{0, 0}, values: []float64{1, 2},
			wantErr: csc.ErrInvalidColPointers,
		},
		{
			name:  "row index out of range",
			nrows: 2, ncols: 2,
			colPtr: []int{0, 1, 2}, rowInd: []int{0, 5}, values: []float64{1, 2},
			wantErr: csc.ErrIndexOutOfRange,
		},
		{
			name:  "rows not strictly increasing",
			nrows: 3, ncols: 1,
			colPtr: []int{0, 3}, rowInd: []int{0, 2, 2}, values: []float64{1, 2, 3},
			wantErr: csc.ErrRowsNotSorted,
		},
		{
			name:  "value length mismatch",
			nrows: 2, ncols: 2,
			colPtr: []int{0, 1, 2}, rowInd: []int{0, 1}, values: []float64{1},
			wantErr: csc.ErrLengthMismatch,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := csc.NewMatrix(tc.nrows, tc.ncols, tc.colPtr, tc.rowInd, tc.values)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestBuilder_SumsDuplicatesAndDropsZeros(t *testing.T) {
	b, err := csc.NewBuilder(3, 3)
	require.NoError(t, err)

	// Stamp the same position twice (MNA style) and one self-cancelling pair.
	require.NoError(t, b.Push(0, 0, 2.0))
	require.NoError(t, b.Push(0, 0, 3.0))
	require.NoError(t, b.Push(1, 1, 4.0))
	require.NoError(t, b.Push(2, 2, 1.5))
	require.NoError(t, b.Push(2, 2, -1.5))
	require.NoError(t, b.Push(2, 0, 7.0))

	m, err := b.Build()
	require.NoError(t, err)

	require.Equal(t, 3, m.NNZ()) // (2,2) cancelled out

	rows, vals := m.Col(0)
	assert.Equal(t, []int{0, 2}, rows)
	assert.Equal(t, []float64{5.0, 7.0}, vals)

	rows, vals = m.Col(1)
	assert.Equal(t, []int{1}, rows)
	assert.Equal(t, []float64{4.0}, vals)

	rows, _ = m.Col(2)
	assert.Empty(t, rows)
}

func TestBuilder_RejectsOutOfRange(t *testing.T) {
	b, err := csc.NewBuilder(2, 2)
	require.NoError(t, err)

	require.ErrorIs(t, b.Push(-1, 0, 1), csc.ErrIndexOutOfRange)
	require.ErrorIs(t, b.Push(0, 2, 1), csc.ErrIndexOutOfRange)

	_, err = csc.NewBuilder(0, 2)
	require.ErrorIs(t, err, csc.ErrInvalidDimensions)
}

func TestBuilder_UnsortedInputProducesSortedColumns(t *testing.T) {
	b, err := csc.NewBuilder(4, 4)
	require.NoError(t, err)

	// Push in scrambled order.
	for _, tr := range [][2]int{{3, 1}, {0, 3}, {2, 0}, {1, 1}, {0, 0}, {3, 3}} {
		require.NoError(t, b.Push(tr[0], tr[1], 1.0))
	}

	m, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	rows, _ := m.Col(1)
	assert.Equal(t, []int{1, 3}, rows)
	rows, _ = m.Col(3)
	assert.Equal(t, []int{0, 3}, rows)
}

func TestTranspose_RoundTrip(t *testing.T) {
	// 2x3 rectangular:
	// [ 1 0 2 ]
	// [ 0 3 4 ]
	m := mustMatrix(t, 2, 3,
		[]int{0, 1, 2, 4},
		[]int{0, 1, 0, 1},
		[]float64{1, 3, 2, 4},
	)

	mt := m.Transpose()
	require.Equal(t, 3, mt.Rows())
	require.Equal(t, 2, mt.Cols())
	require.NoError(t, mt.Validate())

	rows, vals := mt.Col(0) // first row of m
	assert.Equal(t, []int{0, 2}, rows)
	assert.Equal(t, []float64{1, 2}, vals)

	// Transposing twice restores the original entry for entry.
	mtt := mt.Transpose()
	require.Equal(t, m.Rows(), mtt.Rows())
	require.Equal(t, m.Cols(), mtt.Cols())
	for j := 0; j < m.Cols(); j++ {
		r1, v1 := m.Col(j)
		r2, v2 := mtt.Col(j)
		assert.Equal(t, r1, r2)
		assert.Equal(t, v1, v2)
	}
}

func TestPermuteColumns(t *testing.T) {
	// Diagonal [10 20 30], permute columns by q = [2,0,1].
	m := mustMatrix(t, 3, 3,
		[]int{0, 1, 2, 3},
		[]int{0, 1, 2},
		[]float64{10, 20, 30},
	)

	pm := m.PermuteColumns([]int{2, 0, 1})

	rows, vals := pm.Col(0)
	assert.Equal(t, []int{2}, rows)
	assert.Equal(t, []float64{30}, vals)
	rows, vals = pm.Col(2)
	assert.Equal(t, []int{1}, rows)
	assert.Equal(t, []float64{20}, vals)
}

func TestMulVec(t *testing.T) {
	// [ 2 0 ]   [1]   [2]
	// [ 1 3 ] * [2] = [7]
	m := mustMatrix(t, 2, 2,
		[]int{0, 2, 3},
		[]int{0, 1, 1},
		[]float64{2, 1, 3},
	)

	y := make([]float64, 2)
	m.MulVec([]float64{1, 2}, y)
	assert.Equal(t, []float64{2, 7}, y)
}

func TestPattern_Validate(t *testing.T) {
	m := mustMatrix(t, 3, 3,
		[]int{0, 1, 2, 3},
		[]int{0, 1, 2},
		[]float64{1, 1, 1},
	)
	require.NoError(t, m.Pattern().Validate())

	p := csc.NewPattern(2, []int{0, 1, 1}, []int{5})
	require.ErrorIs(t, p.Validate(), csc.ErrIndexOutOfRange)
}
