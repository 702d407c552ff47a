package lu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparsekit/sparsekit/lu"
)

func TestSession_ReusesNumericFactorization(t *testing.T) {
	rows := [][]float64{
		{4, 1, 0},
		{1, 4, 1},
		{0, 1, 4},
	}
	rows2 := [][]float64{
		{5, 2, 0},
		{2, 5, 2},
		{0, 2, 5},
	}
	a := buildMatrix(t, rows)
	a2 := buildMatrix(t, rows2)

	s := lu.NewSession()
	assert.Equal(t, lu.StateFreshSymbolic, s.State())

	require.NoError(t, s.Factor(a))
	assert.Equal(t, lu.StateReuseNumeric, s.State())

	// second value set over the same pattern: cheap refactorization
	require.NoError(t, s.Factor(a2))
	assert.Equal(t, lu.StateReuseNumeric, s.State())

	st := s.Stats()
	assert.Equal(t, 1, st.Analyses)
	assert.Equal(t, 1, st.Factorizations)
	assert.Equal(t, 1, st.Refactorizations)
	assert.Equal(t, 0, st.ForcedFull)
	assert.Positive(t, st.LastGrowth)
	assert.Positive(t, st.LastMinPivot)

	b := []float64{1, 2, 3}
	require.NoError(t, s.Solve(b))
	want := denseSolve(t, rows2, []float64{1, 2, 3})
	for i := range want {
		assert.InDelta(t, want[i], b[i], 1e-10)
	}
}

func TestSession_GrowthDegradationForcesFullFactor(t *testing.T) {
	rows := [][]float64{
		{4, 1, 0},
		{1, 4, 1},
		{0, 1, 4},
	}
	a := buildMatrix(t, rows)

	// reciprocal growth never exceeds 1, so a threshold of 2 treats every
	// refactorization as degraded
	s := lu.NewSession(lu.WithGrowthThreshold(2))
	require.NoError(t, s.Factor(a))
	require.NoError(t, s.Factor(a))

	st := s.Stats()
	assert.Equal(t, 1, st.Analyses, "pattern did not change")
	assert.Equal(t, 1, st.Refactorizations)
	assert.Equal(t, 1, st.ForcedFull, "degraded refactorization must force a full one")
	assert.Equal(t, 2, st.Factorizations)
	assert.Equal(t, lu.StateReuseNumeric, s.State(), "session recovers after the forced pass")
}

func TestSession_PatternChangeTriggersReanalysis(t *testing.T) {
	a := buildMatrix(t, [][]float64{
		{4, 1},
		{1, 4},
	})
	wider := buildMatrix(t, [][]float64{
		{4, 0},
		{0, 4},
	})

	s := lu.NewSession()
	require.NoError(t, s.Factor(a))
	require.NoError(t, s.Factor(wider))

	st := s.Stats()
	assert.Equal(t, 2, st.Analyses)
	assert.Equal(t, 2, st.Factorizations)
	assert.Equal(t, 0, st.Refactorizations)
}

func TestSession_FailedFactorClearsFactors(t *testing.T) {
	good := buildMatrix(t, [][]float64{
		{4, 1},
		{1, 4},
	})
	// same pattern, but rank 1: refactorization hits a zero pivot and the
	// forced full factorization fails too
	singular := buildMatrix(t, [][]float64{
		{1, 1},
		{1, 1},
	})

	s := lu.NewSession()
	require.NoError(t, s.Factor(good))
	require.NoError(t, s.Solve([]float64{1, 2}))

	require.ErrorIs(t, s.Factor(singular), lu.ErrSingular)
	assert.Nil(t, s.Numeric(), "stale factors must not survive a failed factorization")
	require.ErrorIs(t, s.Solve([]float64{1, 2}), lu.ErrNotFactored)

	// the session recovers once solvable values return
	require.NoError(t, s.Factor(good))
	require.NoError(t, s.Solve([]float64{1, 2}))
}

func TestSession_SolveBeforeFactor(t *testing.T) {
	s := lu.NewSession()
	require.ErrorIs(t, s.Solve([]float64{1}), lu.ErrNotFactored)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "fresh-symbolic", lu.StateFreshSymbolic.String())
	assert.Equal(t, "reuse-numeric", lu.StateReuseNumeric.String())
	assert.Equal(t, "forced-full-factor", lu.StateForcedFullFactor.String())
}
