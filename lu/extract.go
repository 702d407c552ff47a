package lu

import (
	"fmt"

	"github.com/sparsekit/sparsekit/csc"
)

// Factors is the explicit form of a factorization, produced by Extract.
// With B the scaled, permuted input — B[i][k] = A[RowPerm[i]][ColPerm[k]] /
// RowScale[i] — the factors satisfy B = L·U + Off within rounding, where L
// and U are block diagonal and Off collects the entries above the diagonal
// blocks.
type Factors struct {
	// L is unit lower triangular with the unit diagonal stored explicitly.
	L *csc.Matrix
	// U is upper triangular.
	U *csc.Matrix
	// Off holds the off-diagonal block entries.
	Off *csc.Matrix

	// RowPerm is the realized pivot row permutation, ColPerm the column
	// permutation; both map new index -> old index.
	RowPerm, ColPerm []int
	// RowScale holds the row scale factors in pivot-row order, or nil when
	// scaling was off.
	RowScale []float64
}

// Extract converts the internal block factor storage into three ordinary
// CSC matrices plus the permutations and scale factors. Entries whose value
// is exactly zero (numerical cancellation, or a zero pivot kept under the
// continue-on-singular policy) are dropped from the returned patterns. The
// copies are independent of the Numeric object.
func (num *Numeric) Extract() (*Factors, error) {
	s := num.sym
	n := s.n

	lb, err := csc.NewBuilder(n, n)
	if err != nil {
		return nil, err
	}
	ub, err := csc.NewBuilder(n, n)
	if err != nil {
		return nil, err
	}
	ob, err := csc.NewBuilder(n, n)
	if err != nil {
		return nil, err
	}

	for block := 0; block < s.nblocks; block++ {
		k1, k2 := s.blocks[block], s.blocks[block+1]
		ar := &num.arenas[block]

		for k := k1; k < k2; k++ {
			if err := lb.Push(k, k, 1); err != nil {
				return nil, err
			}
			if err := ub.Push(k, k, num.udiag[k]); err != nil {
				return nil, err
			}
			if k2-k1 == 1 {
				continue
			}

			for p := num.lip[k]; p < num.lip[k]+num.llen[k]; p++ {
				if err := lb.Push(k1+ar.ind[p], k, ar.val[p]); err != nil {
					return nil, err
				}
			}
			for p := num.uip[k]; p < num.uip[k]+num.ulen[k]; p++ {
				if err := ub.Push(k1+ar.ind[p], k, ar.val[p]); err != nil {
					return nil, err
				}
			}
		}
	}

	for k := 0; k < n; k++ {
		for p := num.offp[k]; p < num.offp[k+1]; p++ {
			if err := ob.Push(num.offi[p], k, num.offx[p]); err != nil {
				return nil, err
			}
		}
	}

	l, err := lb.Build()
	if err != nil {
		return nil, fmt.Errorf("lu: extracting L: %w", err)
	}
	u, err := ub.Build()
	if err != nil {
		return nil, fmt.Errorf("lu: extracting U: %w", err)
	}
	off, err := ob.Build()
	if err != nil {
		return nil, fmt.Errorf("lu: extracting off-diagonal part: %w", err)
	}

	return &Factors{
		L:        l,
		U:        u,
		Off:      off,
		RowPerm:  num.PivotRowPerm(),
		ColPerm:  s.ColPerm(),
		RowScale: num.RowScale(),
	}, nil
}
