package lu

// Solve overwrites b, of length n, with the solution of A·x = b. The factors
// are read-only during a solve; only the internal workspace is touched, so
// repeated solves against one Numeric are cheap but must stay on a single
// goroutine.
func (num *Numeric) Solve(b []float64) error {
	if len(b) != num.sym.n {
		return ErrRHSLength
	}

	return num.SolveBatch(b, num.sym.n, 1)
}

// SolveBatch solves nrhs systems at once. b holds the right-hand sides
// column-major with leading dimension ld >= n and is overwritten with the
// solutions. Right-hand sides are processed in chunks of up to 4 columns.
func (num *Numeric) SolveBatch(b []float64, ld, nrhs int) error {
	s := num.sym
	n := s.n
	if ld < n || nrhs < 1 || len(b) < ld*(nrhs-1)+n {
		return ErrRHSLength
	}

	x := num.xwork

	for chunk := 0; chunk < nrhs; chunk += 4 {
		nr := nrhs - chunk
		if nr > 4 {
			nr = 4
		}
		bz := b[chunk*ld:]

		// 1. Scale and pivot-permute the right-hand sides into x.
		for k := 0; k < n; k++ {
			i := num.pnum[k]
			d := 1.0
			if num.rs != nil {
				d = num.rs[k]
			}
			for r := 0; r < nr; r++ {
				x[nr*k+r] = bz[i+r*ld] / d
			}
		}

		// 2. Back-substitution over the block DAG, last block first: solve
		// the diagonal block, then push its solution through the
		// off-diagonal entries of earlier blocks.
		for block := s.nblocks - 1; block >= 0; block-- {
			k1, k2 := s.blocks[block], s.blocks[block+1]
			nk := k2 - k1

			if nk == 1 {
				d := num.udiag[k1]
				for r := 0; r < nr; r++ {
					x[nr*k1+r] /= d
				}
			} else {
				ar := &num.arenas[block]
				xb := x[nr*k1:]
				lsolveBlock(nk, nr, num.lip[k1:k2], num.llen[k1:k2], ar, xb)
				usolveBlock(nk, nr, num.uip[k1:k2], num.ulen[k1:k2], num.udiag[k1:k2], ar, xb)
			}

			if block > 0 {
				for k := k1; k < k2; k++ {
					for p := num.offp[k]; p < num.offp[k+1]; p++ {
						i := num.offi[p]
						v := num.offx[p]
						for r := 0; r < nr; r++ {
							x[nr*i+r] -= v * x[nr*k+r]
						}
					}
				}
			}
		}

		// 3. Undo the column permutation back into b.
		for k := 0; k < n; k++ {
			i := s.colPerm[k]
			for r := 0; r < nr; r++ {
				bz[i+r*ld] = x[nr*k+r]
			}
		}
	}

	return nil
}

// lsolveBlock solves L·x = b for one block. L is unit lower triangular with
// the unit diagonal not stored. The single right-hand side case is kept on
// its own path since it dominates simulator workloads.
func lsolveBlock(nk, nr int, lip, llen []int, ar *arena, x []float64) {
	if nr == 1 {
		for k := 0; k < nk; k++ {
			xk := x[k]
			start := lip[k]
			for p := start; p < start+llen[k]; p++ {
				x[ar.ind[p]] -= ar.val[p] * xk
			}
		}

		return
	}

	var t [4]float64
	for k := 0; k < nk; k++ {
		for r := 0; r < nr; r++ {
			t[r] = x[nr*k+r]
		}
		start := lip[k]
		for p := start; p < start+llen[k]; p++ {
			i := ar.ind[p]
			v := ar.val[p]
			for r := 0; r < nr; r++ {
				x[nr*i+r] -= v * t[r]
			}
		}
	}
}

// usolveBlock solves U·x = b for one block. U is upper triangular with its
// diagonal held separately in udiag.
func usolveBlock(nk, nr int, uip, ulen []int, udiag []float64, ar *arena, x []float64) {
	if nr == 1 {
		for k := nk - 1; k >= 0; k-- {
			xk := x[k] / udiag[k]
			x[k] = xk
			start := uip[k]
			for p := start; p < start+ulen[k]; p++ {
				x[ar.ind[p]] -= ar.val[p] * xk
			}
		}

		return
	}

	var t [4]float64
	for k := nk - 1; k >= 0; k-- {
		d := udiag[k]
		for r := 0; r < nr; r++ {
			t[r] = x[nr*k+r] / d
			x[nr*k+r] = t[r]
		}
		start := uip[k]
		for p := start; p < start+ulen[k]; p++ {
			i := ar.ind[p]
			v := ar.val[p]
			for r := 0; r < nr; r++ {
				x[nr*i+r] -= v * t[r]
			}
		}
	}
}
