package lu

import (
	"math"

	"github.com/sparsekit/sparsekit/csc"
)

const none = -1

// Non-pivotal rows are tracked with a flipped encoding in the kernel's local
// inverse permutation: flip(k) marks "row currently expected to become the
// kth pivot", and any value >= 0 marks an already-pivotal row.
func flip(i int) int { return -i - 2 }

// kernel factors one diagonal block with the left-looking algorithm: per
// column a symbolic DFS finds the pattern, a sparse lower solve computes the
// values, and threshold partial pivoting with diagonal preference picks the
// pivot. L and U share one index/value arena; column k of L lives at
// lip[k]..lip[k]+llen[k]-1 and column k of U right after it at uip[k].
//
// All row indices inside the kernel are block-local in the symbolic order;
// the closing pass maps L's indices into the realized pivot order.
type kernel struct {
	n  int // block dimension
	a  *csc.Matrix
	q  []int // global column permutation (new -> old)
	k1 int   // global offset of this block

	psinv []int     // old row -> new global row, from the symbolic analysis
	rs    []float64 // row scale factors by old row; nil when scaling is off

	// arena shared by L and U, grown on demand
	ind    []int
	val    []float64
	lusize int

	lip, llen, uip, ulen []int
	udiag                []float64

	pblock []int // pblock[k] = local row chosen as the kth pivot
	pinv   []int // local inverse with the flip encoding

	x                         []float64
	stack, flag, appos, lpend []int

	offp, offi []int
	offx       []float64

	opts    *Options
	metrics *Metrics
}

// factor runs the kernel over all columns of the block and returns the
// factor entry counts, diagonals included.
func (kr *kernel) factor() (lnz, unz int, err error) {
	n := kr.n
	for k := 0; k < n; k++ {
		kr.x[k] = 0
		kr.flag[k] = none
		kr.lpend[k] = none
		kr.pblock[k] = k
		kr.pinv[k] = flip(k)
	}

	lup := 0
	firstRow := 0

	for k := 0; k < n; k++ {
		// worst case for this column: n-k entries of L plus k of U
		if lup+n > kr.lusize {
			if err := kr.grow(); err != nil {
				return 0, 0, err
			}
		}

		kr.lip[k] = lup
		top := kr.lsolveSymbolic(k)
		kr.constructColumn(k)
		kr.lsolveNumeric(top)

		diagRow := kr.pblock[k]
		pivRow, pivot, ok, err := kr.lpivot(k, diagRow, &firstRow)
		if err != nil {
			return 0, 0, err
		}
		if !ok && kr.metrics.NumericalRank == none {
			kr.metrics.NumericalRank = k + kr.k1
			kr.metrics.SingularCol = kr.q[k+kr.k1]
		}

		kr.uip[k] = kr.lip[k] + kr.llen[k]
		lup += kr.llen[k]

		// move the settled part of the stack into U; the stacked rows are
		// all pivotal, so their pivot-order indices are final
		kr.ulen[k] = n - top
		up := kr.uip[k]
		for p := top; p < n; p++ {
			j := kr.stack[p]
			kr.ind[up] = kr.pinv[j]
			kr.val[up] = kr.x[j]
			kr.x[j] = 0
			up++
		}
		lup += kr.ulen[k]

		kr.udiag[k] = pivot

		if pivRow != diagRow {
			kr.metrics.NOffDiag++
			if kr.pinv[diagRow] < 0 {
				// diagRow was displaced before becoming pivotal: make it
				// the expected diagonal of the column that was waiting
				// for pivRow
				kbar := flip(kr.pinv[pivRow])
				kr.pblock[kbar] = diagRow
				kr.pinv[diagRow] = flip(kbar)
			}
		}
		kr.pblock[k] = pivRow
		kr.pinv[pivRow] = k

		kr.prune(k, pivRow)

		lnz += kr.llen[k] + 1
		unz += kr.ulen[k] + 1
	}

	// map L's indices into the pivot order and trim the arena
	for j := 0; j < n; j++ {
		start := kr.lip[j]
		for p := start; p < start+kr.llen[j]; p++ {
			kr.ind[p] = kr.pinv[kr.ind[p]]
		}
	}
	kr.ind = kr.ind[:lup]
	kr.val = kr.val[:lup]
	kr.lusize = lup

	return lnz, unz, nil
}

// grow enlarges the arena by the configured growth factor plus room for one
// worst-case column.
func (kr *kernel) grow() error {
	size := kr.opts.MemGrowth*float64(kr.lusize) + float64(2*kr.n+1)
	if size >= float64(math.MaxInt) {
		return ErrTooLarge
	}
	newSize := int(size)

	ind := make([]int, newSize)
	copy(ind, kr.ind)
	kr.ind = ind
	val := make([]float64, newSize)
	copy(val, kr.val)
	kr.val = val
	kr.lusize = newSize
	kr.metrics.NRealloc++

	return nil
}

// lsolveSymbolic computes the pattern of column k: pivotal rows reached from
// the column's entries land on stack[top..n-1] in topological order (the U
// pattern), non-pivotal rows are appended to L's pattern at lip[k]. Returns
// top.
func (kr *kernel) lsolveSymbolic(k int) int {
	top := kr.n
	llen := 0
	lik := kr.ind[kr.lip[k]:]

	rows, _ := kr.a.Col(kr.q[k+kr.k1])
	for _, oldRow := range rows {
		i := kr.psinv[oldRow] - kr.k1
		if i < 0 || kr.flag[i] == k {
			continue // outside the block, or already reached
		}
		if kr.pinv[i] >= 0 {
			top = kr.dfs(i, k, top, &llen, lik)
		} else {
			kr.flag[i] = k
			lik[llen] = i
			llen++
		}
	}

	// llen == 0 here means no pivot row is available for this column
	kr.llen[k] = llen

	return top
}

// dfs walks the graph of L columns from pivotal row j with an explicit
// stack, resuming each column's adjacency scan where it left off (appos).
// Pruned columns are scanned only up to lpend. Non-pivotal rows met along
// the way go straight into L's pattern.
func (kr *kernel) dfs(j, k, top int, llen *int, lik []int) int {
	head := 0
	kr.stack[0] = j

	for head >= 0 {
		j = kr.stack[head]
		jnew := kr.pinv[j]

		if kr.flag[j] != k {
			kr.flag[j] = k
			if kr.lpend[jnew] == none {
				kr.appos[head] = kr.llen[jnew]
			} else {
				kr.appos[head] = kr.lpend[jnew]
			}
		}

		li := kr.ind[kr.lip[jnew]:]
		pos := kr.appos[head] - 1
		for pos >= 0 {
			i := li[pos]
			if kr.flag[i] != k {
				if kr.pinv[i] >= 0 {
					// pivotal and unvisited: remember where we stopped
					// and recurse into column i
					kr.appos[head] = pos
					head++
					kr.stack[head] = i
					break
				}
				kr.flag[i] = k
				lik[*llen] = i
				(*llen)++
			}
			pos--
		}

		if pos < 0 {
			// column j exhausted: pop it and emit in topological order
			head--
			top--
			kr.stack[top] = j
		}
	}

	return top
}

// constructColumn scatters the scaled values of the block's column k into x;
// entries above the block go to the off-diagonal store under their old row
// index.
func (kr *kernel) constructColumn(k int) {
	kglobal := k + kr.k1
	poff := kr.offp[kglobal]

	rows, vals := kr.a.Col(kr.q[kglobal])
	for p, oldRow := range rows {
		v := vals[p]
		if kr.rs != nil {
			// scale factors are still in old-row order at this point; they
			// are permuted into pivot order once factorization completes
			v /= kr.rs[oldRow]
		}
		i := kr.psinv[oldRow] - kr.k1
		if i < 0 {
			kr.offi[poff] = oldRow
			kr.offx[poff] = v
			poff++
		} else {
			kr.x[i] = v
		}
	}
	kr.offp[kglobal+1] = poff
}

// lsolveNumeric applies the already-factored columns on stack[top..n-1] to
// x, completing the sparse solve L·x = b for the current column.
func (kr *kernel) lsolveNumeric(top int) {
	for s := top; s < kr.n; s++ {
		j := kr.stack[s]
		jnew := kr.pinv[j]
		xj := kr.x[j]
		start := kr.lip[jnew]
		for p := start; p < start+kr.llen[jnew]; p++ {
			kr.x[kr.ind[p]] -= kr.val[p] * xj
		}
	}
}

// lpivot gathers column k of L out of x and picks the pivot: the diagonal
// candidate when its magnitude is within PivotTolerance of the largest
// candidate, the largest candidate otherwise. The chosen entry is removed
// from L (its value becomes U(k,k)) and L's column is divided by it.
//
// ok is false when the pivot is zero: either the column has no candidate
// rows at all (structural) or every candidate value vanished (numeric).
// With halt-on-singular set these return ErrStructurallySingular and
// ErrSingular instead.
func (kr *kernel) lpivot(k, diagRow int, firstRow *int) (pivRow int, pivot float64, ok bool, err error) {
	if kr.llen[k] == 0 {
		if kr.opts.HaltIfSingular {
			return 0, 0, false, ErrStructurallySingular
		}
		// pick the lowest-numbered non-pivotal row and a zero pivot
		r := *firstRow
		for r < kr.n && kr.pinv[r] >= 0 {
			r++
		}
		*firstRow = r

		return r, 0, false, nil
	}

	last := kr.llen[k] - 1
	li := kr.ind[kr.lip[k]:]
	lx := kr.val[kr.lip[k]:]
	lastRow := li[last]
	kr.llen[k] = last

	// gather x into L, tracking the diagonal and the largest magnitude;
	// the last entry stays in x until the pivot choice is settled
	pdiag, ppivrow := none, none
	absPivot := -1.0
	for p := 0; p < last; p++ {
		i := li[p]
		v := kr.x[i]
		kr.x[i] = 0
		lx[p] = v

		if i == diagRow {
			pdiag = p
		}
		if va := math.Abs(v); va > absPivot {
			absPivot = va
			ppivrow = p
		}
	}

	lastAbs := math.Abs(kr.x[lastRow])
	if lastAbs > absPivot {
		absPivot = lastAbs
		ppivrow = none
	}

	// diagonal preference under the threshold
	if lastRow == diagRow {
		if lastAbs >= kr.opts.PivotTolerance*absPivot {
			ppivrow = none
		}
	} else if pdiag != none {
		if math.Abs(lx[pdiag]) >= kr.opts.PivotTolerance*absPivot {
			ppivrow = pdiag
		}
	}

	if ppivrow != none {
		pivRow = li[ppivrow]
		pivot = lx[ppivrow]
		// the chosen entry leaves L; the held-back last entry takes its slot
		li[ppivrow] = lastRow
		lx[ppivrow] = kr.x[lastRow]
	} else {
		pivRow = lastRow
		pivot = kr.x[lastRow]
	}
	kr.x[lastRow] = 0

	if pivot == 0 && kr.opts.HaltIfSingular {
		return 0, 0, false, ErrSingular
	}

	for p := 0; p < kr.llen[k]; p++ {
		lx[p] /= pivot
	}

	return pivRow, pivot, pivot != 0, nil
}

// prune applies symmetric pruning: every column j of U's new pattern whose
// L column contains the pivot row gets partitioned into a pivotal head and
// a non-pivotal tail, and later DFS passes scan only the head.
func (kr *kernel) prune(k, pivRow int) {
	ustart := kr.uip[k]
	for p := ustart; p < ustart+kr.ulen[k]; p++ {
		j := kr.ind[p]
		if kr.lpend[j] != none {
			continue // already pruned
		}

		lstart := kr.lip[j]
		li := kr.ind[lstart : lstart+kr.llen[j]]
		lx := kr.val[lstart : lstart+kr.llen[j]]
		for p2 := range li {
			if li[p2] != pivRow {
				continue
			}
			pHead, pTail := 0, len(li)
			for pHead < pTail {
				if kr.pinv[li[pHead]] >= 0 {
					pHead++
				} else {
					pTail--
					li[pHead], li[pTail] = li[pTail], li[pHead]
					lx[pHead], lx[pTail] = lx[pTail], lx[pHead]
				}
			}
			kr.lpend[j] = pTail

			break
		}
	}
}
