package amd

import "github.com/sparsekit/sparsekit/csc"

// aatStats summarizes the symmetric pattern B = A+Aᵗ (diagonal excluded).
type aatStats struct {
	// sym is the pattern symmetry of A: the fraction of off-diagonal
	// entries matched by a transposed partner. 1 for symmetric patterns.
	sym float64
	// nzdiag counts structural entries on the diagonal of A.
	nzdiag int
	// nzboth counts off-diagonal entries present in both A and Aᵗ.
	nzboth int
	// nzaat is nnz(B) excluding the diagonal.
	nzaat int
}

// aatCounts computes per-column entry counts of B = A+Aᵗ without building
// it. Both triangles of A are walked in one merged pass: for each column
// the upper-triangular entries are consumed directly while lastPos cursors
// sweep the corresponding lower-triangular columns, so entries present in
// both triangles are counted once. colLen and lastPos are size-n
// workspaces; colLen holds the counts on return.
func aatCounts(a csc.Pattern, colLen, lastPos []int) aatStats {
	n := a.N()
	nz := a.NNZ()
	for j := 0; j < n; j++ {
		colLen[j] = 0
		lastPos[j] = -1
	}

	var st aatStats

	for col := 0; col < n; col++ {
		p := a.ColStart(col)
		pend := a.ColEnd(col)
		for p < pend {
			row := a.RowIndex(p)
			if row < col {
				// strictly upper entry: count it for both B columns
				colLen[row]++
				colLen[col]++
				p++
			} else if row == col {
				st.nzdiag++
				p++

				break // the rest of this column is strictly lower
			} else {
				break // lower triangle, consumed via the cursor sweep
			}

			// advance the cursor of column "row" through its lower part,
			// up to (and including a possible match at) row index col
			q := lastPos[row]
			qend := a.ColEnd(row)
			for q < qend {
				rr := a.RowIndex(q)
				if rr < col {
					// entry only in the lower triangle of A
					colLen[rr]++
					colLen[row]++
					q++
				} else if rr == col {
					// present in both triangles: already counted above
					q++
					st.nzboth++

					break
				} else {
					break
				}
			}
			lastPos[row] = q
		}
		lastPos[col] = p
	}

	// entries left beyond the cursors exist only in the lower triangle
	for col := 0; col < n; col++ {
		for p := lastPos[col]; p < a.ColEnd(col); p++ {
			row := a.RowIndex(p)
			colLen[row]++
			colLen[col]++
		}
	}

	if nz == st.nzdiag {
		st.sym = 1
	} else {
		st.sym = 2 * float64(st.nzboth) / float64(nz-st.nzdiag)
	}
	for j := 0; j < n; j++ {
		st.nzaat += colLen[j]
	}

	return st
}

// aatFill scatters the row indices of B = A+Aᵗ into iw using the same
// merged two-triangle walk as aatCounts. cur[j] holds the write cursor of
// B's column j, initialized to the column's start offset; lastPos is reset
// and reused for the lower-triangle sweep.
func aatFill(a csc.Pattern, iw, cur []int, lastPos []int) {
	n := a.N()
	for j := 0; j < n; j++ {
		lastPos[j] = -1
	}

	for col := 0; col < n; col++ {
		p := a.ColStart(col)
		pend := a.ColEnd(col)
		for p < pend {
			row := a.RowIndex(p)
			if row < col {
				iw[cur[row]] = col
				iw[cur[col]] = row
				cur[row]++
				cur[col]++
				p++
			} else if row == col {
				p++

				break
			} else {
				break
			}

			q := lastPos[row]
			qend := a.ColEnd(row)
			for q < qend {
				rr := a.RowIndex(q)
				if rr < col {
					iw[cur[rr]] = row
					iw[cur[row]] = rr
					cur[rr]++
					cur[row]++
					q++
				} else if rr == col {
					q++

					break
				} else {
					break
				}
			}
			lastPos[row] = q
		}
		lastPos[col] = p
	}

	for col := 0; col < n; col++ {
		for p := lastPos[col]; p < a.ColEnd(col); p++ {
			row := a.RowIndex(p)
			iw[cur[row]] = col
			iw[cur[col]] = row
			cur[row]++
			cur[col]++
		}
	}
}
