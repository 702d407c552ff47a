package lu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/sparsekit/sparsekit/csc"
	"github.com/sparsekit/sparsekit/lu"
)

// buildMatrix assembles a csc.Matrix from dense rows, skipping zeros.
func buildMatrix(t testing.TB, rows [][]float64) *csc.Matrix {
	t.Helper()
	b, err := csc.NewBuilder(len(rows), len(rows[0]))
	require.NoError(t, err)
	for i, r := range rows {
		for j, v := range r {
			if v != 0 {
				require.NoError(t, b.Push(i, j, v))
			}
		}
	}
	m, err := b.Build()
	require.NoError(t, err)

	return m
}

// denseSolve computes the reference solution with gonum's dense solver.
func denseSolve(t *testing.T, rows [][]float64, b []float64) []float64 {
	t.Helper()
	n := len(rows)
	flat := make([]float64, 0, n*n)
	for _, r := range rows {
		flat = append(flat, r...)
	}
	var x mat.VecDense
	require.NoError(t, x.SolveVec(mat.NewDense(n, n, flat), mat.NewVecDense(n, append([]float64(nil), b...))))

	out := make([]float64, n)
	for i := range out {
		out[i] = x.AtVec(i)
	}

	return out
}

// gridLaplacian builds the 5-point Laplacian of a k-by-k grid.
func gridLaplacian(t testing.TB, k int) *csc.Matrix {
	t.Helper()
	n := k * k
	b, err := csc.NewBuilder(n, n)
	require.NoError(t, err)
	id := func(i, j int) int { return i*k + j }
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			v := id(i, j)
			require.NoError(t, b.Push(v, v, 4))
			if i > 0 {
				require.NoError(t, b.Push(v, id(i-1, j), -1))
				require.NoError(t, b.Push(id(i-1, j), v, -1))
			}
			if j > 0 {
				require.NoError(t, b.Push(v, id(i, j-1), -1))
				require.NoError(t, b.Push(id(i, j-1), v, -1))
			}
		}
	}
	m, err := b.Build()
	require.NoError(t, err)

	return m
}

func factorAndSolve(t *testing.T, rows [][]float64, b []float64, opts ...lu.Option) []float64 {
	t.Helper()
	a := buildMatrix(t, rows)
	sym, err := lu.Analyze(a, opts...)
	require.NoError(t, err)
	num, err := lu.Factor(a, sym, opts...)
	require.NoError(t, err)

	x := append([]float64(nil), b...)
	require.NoError(t, num.Solve(x))

	return x
}

func TestFactorSolve_DiagonallyDominant(t *testing.T) {
	rows := [][]float64{
		{4, 1, 0},
		{1, 4, 1},
		{0, 1, 4},
	}
	b := []float64{1, 2, 3}

	got := factorAndSolve(t, rows, b)
	want := denseSolve(t, rows, b)
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-10)
	}
}

func TestSolve_StructuralZeroDiagonal(t *testing.T) {
	// No entry at (0,0): the matching must pair the columns with off-diagonal
	// rows before factorization even starts.
	rows := [][]float64{
		{0, 2},
		{3, 1},
	}
	b := []float64{4, 5}

	got := factorAndSolve(t, rows, b)
	want := denseSolve(t, rows, b)
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12)
	}
}

func TestSolve_NumericZeroDiagonalPivotsOffDiagonal(t *testing.T) {
	// The diagonal candidate exists structurally but is far below the pivot
	// threshold; partial pivoting must reject it for the off-diagonal entry
	// and still reproduce the dense reference solution.
	rows := [][]float64{
		{1e-30, 1},
		{1, 1},
	}
	b := []float64{1, 2}

	a := buildMatrix(t, rows)
	sym, err := lu.Analyze(a)
	require.NoError(t, err)
	num, err := lu.Factor(a, sym)
	require.NoError(t, err)

	x := append([]float64(nil), b...)
	require.NoError(t, num.Solve(x))

	want := denseSolve(t, rows, b)
	for i := range want {
		assert.InDelta(t, want[i], x[i], 1e-12)
	}
	assert.Positive(t, num.Metrics().NOffDiag, "expected an off-diagonal pivot")
}

// toDense expands a sparse matrix for gonum arithmetic.
func toDense(m *csc.Matrix) *mat.Dense {
	d := mat.NewDense(m.Rows(), m.Cols(), nil)
	for j := 0; j < m.Cols(); j++ {
		rows, vals := m.Col(j)
		for p, i := range rows {
			d.Set(i, j, vals[p])
		}
	}

	return d
}

func TestExtract_ReconstructsScaledPermutedMatrix(t *testing.T) {
	rows := [][]float64{
		{2, 3, 0, 0, 0},
		{3, 1, 4, 0, 6},
		{0, 0, 10, 7, 0},
		{0, 0, 0, 5, 8},
		{0, 0, 0, 0, 9},
	}
	a := buildMatrix(t, rows)

	sym, err := lu.Analyze(a)
	require.NoError(t, err)
	num, err := lu.Factor(a, sym)
	require.NoError(t, err)

	f, err := num.Extract()
	require.NoError(t, err)

	n := a.Cols()
	// scaled, permuted input: B[i][k] = A[P[i]][Q[k]] / Rs[i]
	want := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			v := rows[f.RowPerm[i]][f.ColPerm[k]]
			if f.RowScale != nil {
				v /= f.RowScale[i]
			}
			want.Set(i, k, v)
		}
	}

	var got mat.Dense
	got.Mul(toDense(f.L), toDense(f.U))
	got.Add(&got, toDense(f.Off))

	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			assert.InDelta(t, want.At(i, k), got.At(i, k), 1e-12, "entry (%d,%d)", i, k)
		}
	}
}

func TestRefactor_SameValuesGivesSameSolution(t *testing.T) {
	rows := [][]float64{
		{4, 1, 0},
		{1, 4, 1},
		{0, 1, 4},
	}
	a := buildMatrix(t, rows)
	b := []float64{1, 2, 3}

	sym, err := lu.Analyze(a)
	require.NoError(t, err)
	num, err := lu.Factor(a, sym)
	require.NoError(t, err)

	x1 := append([]float64(nil), b...)
	require.NoError(t, num.Solve(x1))

	require.NoError(t, num.Refactor(a))
	x2 := append([]float64(nil), b...)
	require.NoError(t, num.Solve(x2))

	for i := range x1 {
		assert.InDelta(t, x1[i], x2[i], 1e-15)
	}
}

func TestRefactor_NewValuesMatchesFullFactorization(t *testing.T) {
	rows := [][]float64{
		{2, 3, 0, 0, 0},
		{3, 1, 4, 0, 6},
		{0, 0, 10, 7, 0},
		{0, 0, 0, 5, 8},
		{0, 0, 0, 0, 9},
	}
	// same pattern, different values
	rows2 := [][]float64{
		{5, 1, 0, 0, 0},
		{2, 7, 1, 0, 3},
		{0, 0, 4, 2, 0},
		{0, 0, 0, 9, 1},
		{0, 0, 0, 0, 6},
	}
	a := buildMatrix(t, rows)
	a2 := buildMatrix(t, rows2)
	b := []float64{1, -2, 3, -4, 5}

	sym, err := lu.Analyze(a)
	require.NoError(t, err)
	num, err := lu.Factor(a, sym)
	require.NoError(t, err)

	require.NoError(t, num.Refactor(a2))
	got := append([]float64(nil), b...)
	require.NoError(t, num.Solve(got))

	want := denseSolve(t, rows2, b)
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-10)
	}
}

func TestRefactor_PatternMismatch(t *testing.T) {
	a := buildMatrix(t, [][]float64{{4, 1}, {1, 4}})
	other := buildMatrix(t, [][]float64{{4, 0}, {0, 4}})

	sym, err := lu.Analyze(a)
	require.NoError(t, err)
	num, err := lu.Factor(a, sym)
	require.NoError(t, err)

	require.ErrorIs(t, num.Refactor(other), lu.ErrPatternMismatch)
	_, err = lu.Factor(other, sym)
	require.ErrorIs(t, err, lu.ErrPatternMismatch)
}

func TestFactor_SingularMatrix(t *testing.T) {
	// row 1 is entirely zero: structurally rank deficient
	rows := [][]float64{
		{1, 1, 0},
		{0, 0, 0},
		{0, 1, 1},
	}
	a := buildMatrix(t, rows)

	t.Run("halt with btf", func(t *testing.T) {
		sym, err := lu.Analyze(a)
		require.NoError(t, err)
		assert.Equal(t, 2, sym.StructuralRank())

		_, err = lu.Factor(a, sym)
		require.ErrorIs(t, err, lu.ErrSingular)
	})

	t.Run("halt without btf", func(t *testing.T) {
		sym, err := lu.Analyze(a, lu.WithBTF(false))
		require.NoError(t, err)

		_, err = lu.Factor(a, sym, lu.WithBTF(false))
		require.ErrorIs(t, err, lu.ErrStructurallySingular)
	})

	t.Run("continue records degradation", func(t *testing.T) {
		sym, err := lu.Analyze(a)
		require.NoError(t, err)

		num, err := lu.Factor(a, sym, lu.WithHaltIfSingular(false))
		require.NoError(t, err)
		assert.True(t, num.IsSingular())
		m := num.Metrics()
		assert.GreaterOrEqual(t, m.NumericalRank, 0)
		assert.Equal(t, 2, m.SingularCol)
	})
}

func TestAnalyze_BlockStructure(t *testing.T) {
	// two 2-cycles coupled one way: two irreducible diagonal blocks
	rows := [][]float64{
		{1, 2, 0, 5},
		{3, 1, 0, 0},
		{0, 0, 1, 4},
		{0, 0, 7, 1},
	}
	a := buildMatrix(t, rows)

	sym, err := lu.Analyze(a)
	require.NoError(t, err)
	assert.Equal(t, 4, sym.StructuralRank())
	assert.Equal(t, 2, sym.NumBlocks())
	assert.Equal(t, 2, sym.MaxBlockSize())
	assert.Equal(t, 1, sym.OffDiagonalNNZ())

	flat, err := lu.Analyze(a, lu.WithBTF(false))
	require.NoError(t, err)
	assert.Equal(t, 1, flat.NumBlocks())
	assert.Equal(t, 4, flat.MaxBlockSize())
	assert.Equal(t, 0, flat.OffDiagonalNNZ())
	assert.Equal(t, -1, flat.StructuralRank())
}

func TestAnalyze_RejectsNonSquare(t *testing.T) {
	b, err := csc.NewBuilder(2, 3)
	require.NoError(t, err)
	require.NoError(t, b.Push(0, 0, 1))
	require.NoError(t, b.Push(1, 1, 1))
	require.NoError(t, b.Push(0, 2, 1))
	m, err := b.Build()
	require.NoError(t, err)

	_, err = lu.Analyze(m)
	require.ErrorIs(t, err, lu.ErrNotSquare)
}

func TestFactor_AMDOrderingReducesFill(t *testing.T) {
	a := gridLaplacian(t, 7)

	symAMD, err := lu.Analyze(a)
	require.NoError(t, err)
	numAMD, err := lu.Factor(a, symAMD)
	require.NoError(t, err)

	symNat, err := lu.Analyze(a, lu.WithOrdering(lu.OrderingNatural))
	require.NoError(t, err)
	numNat, err := lu.Factor(a, symNat, lu.WithOrdering(lu.OrderingNatural))
	require.NoError(t, err)

	la, ua := numAMD.FactorNNZ()
	ln, un := numNat.FactorNNZ()
	assert.LessOrEqual(t, la+ua, ln+un, "AMD fill must not exceed natural-order fill")
}

func TestGrowth_WellConditioned(t *testing.T) {
	a := gridLaplacian(t, 5)
	sym, err := lu.Analyze(a)
	require.NoError(t, err)
	num, err := lu.Factor(a, sym)
	require.NoError(t, err)

	growth, minPivot := num.Growth(a)
	assert.Greater(t, growth, 0.0)
	assert.LessOrEqual(t, growth, 1.0+1e-12)
	assert.Positive(t, minPivot)
}

func TestSolveBatch_MultipleRightHandSides(t *testing.T) {
	rows := [][]float64{
		{4, 1, 0, 0},
		{1, 4, 1, 0},
		{0, 1, 4, 1},
		{0, 0, 1, 4},
	}
	a := buildMatrix(t, rows)
	n := 4
	nrhs := 5 // crosses the 4-column chunk boundary

	sym, err := lu.Analyze(a)
	require.NoError(t, err)
	num, err := lu.Factor(a, sym)
	require.NoError(t, err)

	b := make([]float64, n*nrhs)
	for r := 0; r < nrhs; r++ {
		for i := 0; i < n; i++ {
			b[r*n+i] = float64(r + i + 1)
		}
	}
	got := append([]float64(nil), b...)
	require.NoError(t, num.SolveBatch(got, n, nrhs))

	for r := 0; r < nrhs; r++ {
		want := denseSolve(t, rows, b[r*n:(r+1)*n])
		for i := 0; i < n; i++ {
			assert.InDelta(t, want[i], got[r*n+i], 1e-10, "rhs %d entry %d", r, i)
		}
	}
}

func TestSolve_RejectsWrongLength(t *testing.T) {
	a := buildMatrix(t, [][]float64{{4, 1}, {1, 4}})
	sym, err := lu.Analyze(a)
	require.NoError(t, err)
	num, err := lu.Factor(a, sym)
	require.NoError(t, err)

	require.ErrorIs(t, num.Solve([]float64{1}), lu.ErrRHSLength)
	require.ErrorIs(t, num.SolveBatch(make([]float64, 3), 1, 2), lu.ErrRHSLength)
}

func TestFactor_ScalingModes(t *testing.T) {
	// badly row-scaled system: row 0 is six orders larger
	rows := [][]float64{
		{4e6, 1e6, 0},
		{1, 4, 1},
		{0, 1, 4},
	}
	b := []float64{1e6, 2, 3}
	want := denseSolve(t, rows, b)

	for name, opt := range map[string]lu.Option{
		"max":  lu.WithScaling(lu.ScaleMax),
		"sum":  lu.WithScaling(lu.ScaleSum),
		"none": lu.WithScaling(lu.ScaleNone),
	} {
		t.Run(name, func(t *testing.T) {
			got := factorAndSolve(t, rows, b, opt)
			for i := range want {
				assert.InDelta(t, want[i], got[i], 1e-9)
			}
		})
	}
}
