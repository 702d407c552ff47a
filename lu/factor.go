package lu

import (
	"fmt"
	"math"

	"github.com/sparsekit/sparsekit/csc"
)

// Metrics are the stability statistics of a factorization. They are reset
// and recomputed by Refactor.
type Metrics struct {
	// NRealloc counts factor-arena growth reallocations.
	NRealloc int
	// NOffDiag counts off-diagonal pivots chosen by partial pivoting.
	NOffDiag int
	// NumericalRank is the first permuted column index at which a zero
	// pivot was met, or -1 when no zero pivot occurred.
	NumericalRank int
	// SingularCol is the original column index of that zero pivot, or -1.
	SingularCol int
}

// Numeric holds the factors of one matrix: per-block L and U in compressed
// column form, the off-diagonal entries, the realized pivot row permutation,
// row scale factors, and statistics. It is mutated in place by Refactor and
// owns reusable workspace, so a Numeric must not be used from more than one
// goroutine at a time.
type Numeric struct {
	sym  *Symbolic
	opts Options

	lnz, unz                 int
	maxLnzBlock, maxUnzBlock int

	// pnum is the realized pivot row permutation (new -> old); pinv its
	// inverse. pnum may differ from the symbolic row permutation wherever
	// partial pivoting rejected the diagonal candidate.
	pnum []int
	pinv []int

	// Factor storage: column k of L occupies lip[k]..lip[k]+llen[k]-1 of
	// its block's arena (indices in pivot order, unit diagonal not stored),
	// column k of U occupies uip[k]..uip[k]+ulen[k]-1 (diagonal in udiag).
	lip, llen, uip, ulen []int
	udiag                []float64
	arenas               []arena

	// off-diagonal entries in compressed column form, row indices in pivot
	// order after factorization completes
	offp, offi []int
	offx       []float64

	rs []float64 // row scale factors in pivot order; nil when scaling is off

	xwork []float64 // length 4n: factor scatter space and solve chunk space
	iwork []int     // length 6*maxblock: kernel integer workspaces

	metrics Metrics
}

type arena struct {
	ind []int
	val []float64
}

// Factor computes the numeric LU factorization of a using the symbolic
// analysis s. The matrix must have exactly the sparsity pattern that was
// analyzed.
func Factor(a *csc.Matrix, s *Symbolic, opts ...Option) (*Numeric, error) {
	o := buildOptions(opts)
	if !a.IsSquare() {
		return nil, ErrNotSquare
	}
	if a.Cols() != s.n || a.NNZ() != s.nz {
		return nil, ErrPatternMismatch
	}
	n := s.n

	num := &Numeric{
		sym:     s,
		opts:    o,
		pnum:    make([]int, n),
		pinv:    make([]int, n),
		lip:     make([]int, n),
		llen:    make([]int, n),
		uip:     make([]int, n),
		ulen:    make([]int, n),
		udiag:   make([]float64, n),
		arenas:  make([]arena, s.nblocks),
		offp:    make([]int, n+1),
		offi:    make([]int, s.nzoff),
		offx:    make([]float64, s.nzoff),
		xwork:   make([]float64, 4*n),
		iwork:   make([]int, 6*s.maxblock),
		metrics: Metrics{NumericalRank: none, SingularCol: none},
	}

	if o.Scaling != ScaleNone {
		num.rs = make([]float64, n)
		scaleRows(a, o.Scaling, num.rs)
	}

	// pinv starts as the inverse of the symbolic row permutation; once all
	// blocks are factored it becomes the inverse of the realized one
	for k, old := range s.rowPerm {
		num.pinv[old] = k
	}
	num.offp[0] = 0

	mb := s.maxblock
	pblock := num.iwork[5*mb : 6*mb]

	var lnz, unz int
	maxLnzBlock, maxUnzBlock := 1, 1

	for block := 0; block < s.nblocks; block++ {
		k1, k2 := s.blocks[block], s.blocks[block+1]
		nk := k2 - k1

		if nk == 1 {
			l1, u1, err := num.factorSingleton(a, block, k1)
			if err != nil {
				return nil, err
			}
			lnz += l1
			unz += u1

			continue
		}

		lnzB, unzB, err := num.factorBlock(a, block, k1, nk, pblock)
		if err != nil {
			return nil, err
		}
		lnz += lnzB
		unz += unzB
		if lnzB > maxLnzBlock {
			maxLnzBlock = lnzB
		}
		if unzB > maxUnzBlock {
			maxUnzBlock = unzB
		}

		// fold the block's pivot ordering into the global permutation
		for k := 0; k < nk; k++ {
			num.pnum[k+k1] = s.rowPerm[pblock[k]+k1]
		}
	}

	num.lnz, num.unz = lnz, unz
	num.maxLnzBlock, num.maxUnzBlock = maxLnzBlock, maxUnzBlock

	for k, old := range num.pnum {
		num.pinv[old] = k
	}

	// permute the scale factors into pivot order
	if num.rs != nil {
		x := num.xwork
		for k := 0; k < n; k++ {
			x[k] = num.rs[num.pnum[k]]
		}
		copy(num.rs, x[:n])
	}

	// off-diagonal row indices switch from old rows to pivot order
	for p := range num.offi {
		num.offi[p] = num.pinv[num.offi[p]]
	}

	return num, nil
}

// factorSingleton handles a 1-by-1 block: its single in-block entry is the
// pivot, everything above it goes to the off-diagonal store.
func (num *Numeric) factorSingleton(a *csc.Matrix, block, k1 int) (lnz, unz int, err error) {
	s := num.sym
	poff := num.offp[k1]
	oldCol := s.colPerm[k1]

	var diag float64
	rows, vals := a.Col(oldCol)
	for p, oldRow := range rows {
		v := vals[p]
		if num.rs != nil {
			v /= num.rs[oldRow]
		}
		if num.pinv[oldRow] < k1 {
			num.offi[poff] = oldRow
			num.offx[poff] = v
			poff++
		} else {
			diag = v
		}
	}

	num.udiag[k1] = diag
	if diag == 0 {
		if num.metrics.NumericalRank == none {
			num.metrics.NumericalRank = k1
			num.metrics.SingularCol = oldCol
		}
		if num.opts.HaltIfSingular {
			return 0, 0, fmt.Errorf("%w: block %d", ErrSingular, block)
		}
	}

	num.offp[k1+1] = poff
	num.pnum[k1] = s.rowPerm[k1]

	return 1, 1, nil
}

// factorBlock sizes the block's arena from the symbolic fill estimate (or
// from nnz(A) when the estimate is unknown) and runs the left-looking
// kernel over it.
func (num *Numeric) factorBlock(a *csc.Matrix, block, k1, nk int, pblock []int) (lnz, unz int, err error) {
	s := num.sym

	var lsize float64
	if s.blockLnz[block] < 0 {
		anz := a.ColStart(k1+nk) - a.ColStart(k1)
		lsize = num.opts.FillFallbackFactor*float64(anz) + float64(nk)
	} else {
		lsize = num.opts.FillEstimateFactor*s.blockLnz[block] + float64(nk)
	}
	maxHalf := (float64(nk)*float64(nk) + float64(nk)) / 2
	lsize = math.Min(math.Max(lsize, float64(nk+1)), maxHalf)

	// one arena slot per entry of L or U
	if 2*lsize >= float64(math.MaxInt) {
		return 0, 0, ErrTooLarge
	}
	lusize := 2 * int(lsize)

	mb := s.maxblock
	kr := kernel{
		n:       nk,
		a:       a,
		q:       s.colPerm,
		k1:      k1,
		psinv:   num.pinv,
		rs:      num.rs,
		ind:     make([]int, lusize),
		val:     make([]float64, lusize),
		lusize:  lusize,
		lip:     num.lip[k1 : k1+nk],
		llen:    num.llen[k1 : k1+nk],
		uip:     num.uip[k1 : k1+nk],
		ulen:    num.ulen[k1 : k1+nk],
		udiag:   num.udiag[k1 : k1+nk],
		pblock:  pblock,
		pinv:    num.iwork[0:mb],
		x:       num.xwork[:nk],
		stack:   num.iwork[mb : 2*mb],
		flag:    num.iwork[2*mb : 3*mb],
		appos:   num.iwork[3*mb : 4*mb],
		lpend:   num.iwork[4*mb : 5*mb],
		offp:    num.offp,
		offi:    num.offi,
		offx:    num.offx,
		opts:    &num.opts,
		metrics: &num.metrics,
	}

	lnz, unz, err = kr.factor()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: block %d", err, block)
	}
	num.arenas[block] = arena{ind: kr.ind, val: kr.val}

	return lnz, unz, nil
}

// Metrics returns the factorization statistics.
func (num *Numeric) Metrics() Metrics { return num.metrics }

// FactorNNZ returns the entry counts of L and U, diagonals included.
func (num *Numeric) FactorNNZ() (lnz, unz int) { return num.lnz, num.unz }

// IsSingular reports whether a zero pivot was met (only possible when
// halt-on-singular is disabled).
func (num *Numeric) IsSingular() bool { return num.metrics.NumericalRank != none }

// PivotRowPerm returns a copy of the realized pivot row permutation
// (new -> old).
func (num *Numeric) PivotRowPerm() []int { return append([]int(nil), num.pnum...) }

// RowScale returns a copy of the row scale factors in pivot-row order, or
// nil when scaling was disabled.
func (num *Numeric) RowScale() []float64 {
	if num.rs == nil {
		return nil
	}

	return append([]float64(nil), num.rs...)
}

// Symbolic returns the symbolic analysis these factors were built from.
func (num *Numeric) Symbolic() *Symbolic { return num.sym }
