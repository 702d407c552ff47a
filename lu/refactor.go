package lu

import (
	"fmt"

	"github.com/sparsekit/sparsekit/csc"
)

// Refactor recomputes the numeric values of the factors from a, which must
// have exactly the sparsity pattern the factors were built from. The pivot
// pattern and both permutations are reused as-is: no symbolic DFS and no
// pivot search run, which makes this substantially cheaper than Factor.
// Row scaling is recomputed, singularity metrics are reset, and a zero
// pivot follows the same halt/continue policy as Factor.
func (num *Numeric) Refactor(a *csc.Matrix) error {
	s := num.sym
	n := s.n
	if !a.IsSquare() || a.Cols() != n || a.NNZ() != s.nz {
		return ErrPatternMismatch
	}

	num.metrics.NumericalRank = none
	num.metrics.SingularCol = none

	// recompute scaling in old-row order; permuted back to pivot order at
	// the end, exactly as in Factor
	if num.rs != nil {
		scaleRows(a, num.opts.Scaling, num.rs)
	}

	x := num.xwork
	for k := 0; k < s.maxblock; k++ {
		x[k] = 0
	}

	poff := 0
	for block := 0; block < s.nblocks; block++ {
		k1, k2 := s.blocks[block], s.blocks[block+1]
		nk := k2 - k1

		if nk == 1 {
			oldCol := s.colPerm[k1]
			var diag float64
			rows, vals := a.Col(oldCol)
			for p, oldRow := range rows {
				v := vals[p]
				if num.rs != nil {
					v /= num.rs[oldRow]
				}
				if num.pinv[oldRow] < k1 {
					num.offx[poff] = v
					poff++
				} else {
					diag = v
				}
			}
			num.udiag[k1] = diag
			if diag == 0 {
				if err := num.recordZeroPivot(k1, oldCol, block); err != nil {
					return err
				}
			}

			continue
		}

		ar := &num.arenas[block]
		lip, llen := num.lip[k1:k2], num.llen[k1:k2]
		uip, ulen := num.uip[k1:k2], num.ulen[k1:k2]

		for k := 0; k < nk; k++ {
			// scatter the scaled column into x, in pivot-row order
			oldCol := s.colPerm[k+k1]
			rows, vals := a.Col(oldCol)
			for p, oldRow := range rows {
				v := vals[p]
				if num.rs != nil {
					v /= num.rs[oldRow]
				}
				newRow := num.pinv[oldRow] - k1
				if newRow < 0 {
					num.offx[poff] = v
					poff++
				} else {
					x[newRow] = v
				}
			}

			// sparse lower solve over the frozen U pattern
			ustart := uip[k]
			for up := ustart; up < ustart+ulen[k]; up++ {
				j := ar.ind[up]
				ujk := x[j]
				x[j] = 0
				ar.val[up] = ujk
				lstart := lip[j]
				for p := lstart; p < lstart+llen[j]; p++ {
					x[ar.ind[p]] -= ar.val[p] * ujk
				}
			}

			ukk := x[k]
			x[k] = 0
			if ukk == 0 {
				if err := num.recordZeroPivot(k+k1, oldCol, block); err != nil {
					return err
				}
			}
			num.udiag[k+k1] = ukk

			// gather and divide by the pivot to refresh column k of L
			lstart := lip[k]
			for p := lstart; p < lstart+llen[k]; p++ {
				i := ar.ind[p]
				ar.val[p] = x[i] / ukk
				x[i] = 0
			}
		}
	}

	if num.rs != nil {
		for k := 0; k < n; k++ {
			x[k] = num.rs[num.pnum[k]]
		}
		copy(num.rs, x[:n])
		for k := 0; k < n; k++ {
			x[k] = 0
		}
	}

	return nil
}

// recordZeroPivot notes the first zero pivot in the metrics and errors out
// when halt-on-singular is set.
func (num *Numeric) recordZeroPivot(k, oldCol, block int) error {
	if num.metrics.NumericalRank == none {
		num.metrics.NumericalRank = k
		num.metrics.SingularCol = oldCol
	}
	if num.opts.HaltIfSingular {
		return fmt.Errorf("%w: block %d", ErrSingular, block)
	}

	return nil
}
