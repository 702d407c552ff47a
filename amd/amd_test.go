package amd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparsekit/sparsekit/amd"
	"github.com/sparsekit/sparsekit/csc"
)

func requirePermutation(t *testing.T, n int, p []int) {
	t.Helper()
	require.Len(t, p, n)
	seen := make([]bool, n)
	for _, v := range p {
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, n)
		require.False(t, seen[v], "duplicate index %d in %v", v, p)
		seen[v] = true
	}
}

func TestOrder_Regression5x5(t *testing.T) {
	// Minimal AMD regression case:
	//   Ap = { 0,   2,       6,       10,  12, 14 }
	//   Ai = { 0,1, 0,1,2,4, 1,2,3,4, 2,3, 1,4 }
	a := csc.NewPattern(5,
		[]int{0, 2, 6, 10, 12, 14},
		[]int{0, 1, 0, 1, 2, 4, 1, 2, 3, 4, 2, 3, 1, 4},
	)

	perm, info, err := amd.Order(a)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 3, 2, 4, 1}, perm)
	assert.Equal(t, 0, info.NDense)
	requirePermutation(t, 5, perm)
}

func TestOrder_DiagonalOnlyIsIdentityClass(t *testing.T) {
	// Pure diagonal: every node has empty off-diagonal adjacency and is
	// eliminated immediately; any order is optimal, the result must still
	// be a bijection.
	a := csc.NewPattern(4, []int{0, 1, 2, 3, 4}, []int{0, 1, 2, 3})

	perm, info, err := amd.Order(a)
	require.NoError(t, err)

	requirePermutation(t, 4, perm)
	assert.Equal(t, 1.0, info.Symmetry)
	assert.Equal(t, 4, info.NzDiag)
	assert.Equal(t, 0.0, info.Lnz)
}

func TestOrder_TridiagonalProducesNoFillEstimateBlowup(t *testing.T) {
	// Tridiagonal patterns factor with zero fill under a good ordering;
	// lnz must stay at the band's n-1 off-diagonal count.
	n := 10
	b, err := csc.NewBuilder(n, n)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, b.Push(i, i, 1))
		if i > 0 {
			require.NoError(t, b.Push(i-1, i, 1))
			require.NoError(t, b.Push(i, i-1, 1))
		}
	}
	m, err := b.Build()
	require.NoError(t, err)

	perm, info, err := amd.Order(m.Pattern())
	require.NoError(t, err)

	requirePermutation(t, n, perm)
	assert.Equal(t, 1.0, info.Symmetry)
	assert.InDelta(t, float64(n-1), info.Lnz, 0.5)
}

func TestOrder_DenseRowIsOrderedLast(t *testing.T) {
	// Star pattern: node 0 is coupled to every other node. With a small
	// dense multiplier its degree (19) exceeds the floor threshold of 16,
	// so it is parked and must end up last in the permutation.
	n := 20
	b, err := csc.NewBuilder(n, n)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, b.Push(i, i, 1))
		if i > 0 {
			require.NoError(t, b.Push(i, 0, 1))
			require.NoError(t, b.Push(0, i, 1))
		}
	}
	m, err := b.Build()
	require.NoError(t, err)

	perm, info, err := amd.Order(m.Pattern(), amd.WithDenseMultiplier(0.1))
	require.NoError(t, err)

	requirePermutation(t, n, perm)
	require.Equal(t, 1, info.NDense)
	assert.Equal(t, 0, perm[n-1], "dense node must be ordered last")
}

func TestOrder_AggressiveOffStillValid(t *testing.T) {
	a := csc.NewPattern(5,
		[]int{0, 2, 6, 10, 12, 14},
		[]int{0, 1, 0, 1, 2, 4, 1, 2, 3, 4, 2, 3, 1, 4},
	)

	perm, _, err := amd.Order(a, amd.WithAggressive(false))
	require.NoError(t, err)
	requirePermutation(t, 5, perm)
}

func TestOrder_UnsymmetricPatternSymmetryStat(t *testing.T) {
	// One strictly-upper entry with no transposed partner: symmetry 0.
	a := csc.NewPattern(2, []int{0, 1, 3}, []int{0, 0, 1})

	perm, info, err := amd.Order(a)
	require.NoError(t, err)

	requirePermutation(t, 2, perm)
	assert.Equal(t, 0.0, info.Symmetry)
	assert.Equal(t, 2, info.NzDiag)
}

func TestOrder_RejectsBadInput(t *testing.T) {
	_, _, err := amd.Order(csc.NewPattern(2, []int{0, 2, 1}, []int{0, 1}))
	require.ErrorIs(t, err, amd.ErrInvalidPattern)

	_, _, err = amd.Order(csc.NewPattern(2, []int{0, 2, 2}, []int{1, 0}))
	require.ErrorIs(t, err, amd.ErrUnsortedPattern)
}
