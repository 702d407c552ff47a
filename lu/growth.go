package lu

import (
	"math"

	"github.com/sparsekit/sparsekit/csc"
)

// Growth computes the cheap stability signals of a completed factorization
// of a: the reciprocal pivot growth
//
//	min over columns j of  max|A_scaled(:,j)| / max|U(:,j)|
//
// and the smallest absolute pivot. Growth close to 1 means pivoting kept
// the factors on the scale of the input; values near 0 mean the factors
// have blown up and should not be trusted. Singleton blocks have growth 1
// by construction and are skipped. A zero U column yields growth 0.
func (num *Numeric) Growth(a *csc.Matrix) (growth, minPivot float64) {
	s := num.sym

	minPivot = math.Inf(1)
	for k := 0; k < s.n; k++ {
		if p := math.Abs(num.udiag[k]); p < minPivot {
			minPivot = p
		}
	}

	growth = 1
	for block := 0; block < s.nblocks; block++ {
		k1, k2 := s.blocks[block], s.blocks[block+1]
		nk := k2 - k1
		if nk == 1 {
			continue
		}

		ar := &num.arenas[block]
		for k := 0; k < nk; k++ {
			// largest scaled input magnitude in the block part of the column
			maxA := 0.0
			rows, vals := a.Col(s.colPerm[k+k1])
			for p, oldRow := range rows {
				newRow := num.pinv[oldRow]
				if newRow < k1 {
					continue
				}
				v := math.Abs(vals[p])
				if num.rs != nil {
					v /= num.rs[newRow]
				}
				if v > maxA {
					maxA = v
				}
			}

			// largest magnitude in column k of U, diagonal included
			maxU := math.Abs(num.udiag[k1+k])
			ustart := num.uip[k1+k]
			for p := ustart; p < ustart+num.ulen[k1+k]; p++ {
				if v := math.Abs(ar.val[p]); v > maxU {
					maxU = v
				}
			}

			if maxU == 0 {
				return 0, minPivot
			}
			if r := maxA / maxU; r < growth {
				growth = r
			}
		}
	}

	return growth, minPivot
}
