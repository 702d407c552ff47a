package amd

import (
	"errors"
	"fmt"
	"math"

	"github.com/sparsekit/sparsekit/csc"
)

var (
	// ErrInvalidPattern is returned for a malformed input pattern.
	ErrInvalidPattern = errors.New("amd: invalid pattern")

	// ErrUnsortedPattern is returned when row indices within a column are
	// not strictly increasing; the A+Aᵗ merge pass requires sorted columns.
	ErrUnsortedPattern = errors.New("amd: row indices not strictly increasing")
)

// empty marks an unused list slot or a missing parent.
const empty = -1

// flip maps an index into the range (..,-2] and back; flip(flip(i)) == i.
// Flipped values mark absorbed nodes: pe[e] == flip(parent) once element e
// has been absorbed into parent.
func flip(i int) int { return -i - 2 }

// Info reports ordering statistics and factorization estimates. The fill
// and flop numbers are exact for a factorization that follows this
// ordering with no numerical pivoting.
type Info struct {
	// Lnz is nnz(L) excluding the diagonal.
	Lnz float64
	// NDiv is the number of divide operations for LDLᵗ or LU.
	NDiv float64
	// NMultSubLDL and NMultSubLU are multiply-subtract pair counts.
	NMultSubLDL float64
	NMultSubLU  float64
	// NDense is the number of dense rows set aside and ordered last.
	NDense int
	// DMax is the dimension of the largest frontal matrix.
	DMax float64
	// NCompactions counts workspace garbage collections.
	NCompactions int
	// Symmetry is the off-diagonal pattern symmetry of the input, in [0,1].
	Symmetry float64
	// NzDiag counts structural diagonal entries of the input.
	NzDiag int
}

// Order computes an approximate-minimum-degree ordering of the square
// pattern a, which must have sorted columns and no duplicate entries.
// The returned permutation maps new index → old index.
func Order(a csc.Pattern, opts ...Option) ([]int, *Info, error) {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	if err := a.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	n := a.N()
	for j := 0; j < n; j++ {
		prev := -1
		for p := a.ColStart(j); p < a.ColEnd(j); p++ {
			r := a.RowIndex(p)
			if r <= prev {
				return nil, nil, ErrUnsortedPattern
			}
			prev = r
		}
	}

	// 1. Count the symmetric pattern B = A+Aᵗ, diagonal dropped.
	colLen := make([]int, n)
	lastPos := make([]int, n)
	st := aatCounts(a, colLen, lastPos)

	// 2. Lay B out in iw with elbow room for element growth (the classic
	// nzaat/5 + n slack; compaction handles the overflow case).
	iwlen := st.nzaat + st.nzaat/5 + n
	iw := make([]int, iwlen)
	pe := make([]int, n)
	cur := make([]int, n)
	pfree := 0
	for j := 0; j < n; j++ {
		pe[j] = pfree
		cur[j] = pfree
		pfree += colLen[j]
	}
	aatFill(a, iw, cur, lastPos)

	info := &Info{DMax: 1, Symmetry: st.sym, NzDiag: st.nzdiag}

	// 3. Eliminate.
	g := &quotientGraph{
		n:          n,
		pe:         pe,
		iw:         iw,
		length:     colLen,
		iwlen:      iwlen,
		pfree:      pfree,
		nv:         make([]int, n),
		elen:       make([]int, n),
		degree:     make([]int, n),
		w:          make([]int, n),
		head:       make([]int, n),
		next:       make([]int, n),
		last:       make([]int, n),
		aggressive: o.Aggressive,
		dense:      o.denseThreshold(n),
		info:       info,
	}
	perm := g.run()

	return perm, info, nil
}

// quotientGraph is the in-place elimination state. Variables and elements
// share the node index space [0,n): a node starts as a variable and turns
// into an element when chosen as pivot. Each node's adjacency list lives
// in iw[pe[i] : pe[i]+length[i]], with elen[i] element entries first and
// supervariable entries after them.
type quotientGraph struct {
	n      int
	pe     []int
	iw     []int
	length []int
	iwlen  int
	pfree  int

	// nv[i] > 0: i is a principal supervariable of that many variables;
	// 0: i was absorbed or parked as dense. Negated while i sits in the
	// pivot element being built.
	nv []int
	// elen[i]: element count in i's list; flip(degree) once i is an
	// element; empty for absorbed/dense nodes.
	elen   []int
	degree []int
	// w carries the element set-difference tags (vs wflg) and, at the very
	// end, postorder ranks.
	w []int

	// degree lists (and, transiently, supervariable hash buckets)
	head []int
	next []int
	last []int

	mindeg int
	nel    int
	wflg   int
	wbig   int
	lemax  int

	aggressive bool
	dense      int
	info       *Info
}

// elimStep is the per-pivot bookkeeping shared by the elimination phases.
type elimStep struct {
	me         int
	pme1, pme2 int // the new element's pattern occupies iw[pme1..pme2]
	nvpiv      int // variables eliminated with this pivot
	degme      int // |Lme|, external degree of the new element
	elenme     int
}

func (g *quotientGraph) run() []int {
	g.initDegreeLists()

	g.wbig = math.MaxInt - g.n
	g.wflg = 0
	g.clearFlag()

	for g.nel < g.n {
		me := g.selectPivot()
		g.removeDegreeListHead(me, g.mindeg)

		st := &elimStep{me: me}
		g.constructElement(st)

		g.clearFlag()
		g.computeSetDifferences(st)
		g.updateDegrees(st)

		if st.degme > g.lemax {
			g.lemax = st.degme
		}
		g.wflg += g.lemax
		g.clearFlag()

		g.detectSupervariables(st)
		p := g.restoreDegreeLists(st)
		g.finalizeElement(st, p)

		g.accountPivot(st)
	}
	g.accountDenseTail()

	g.compressPaths()

	// Postorder the assembly tree into w, then expand supernodes into the
	// final permutation.
	postorderAssemblyTree(g.n, g.pe, g.nv, g.elen, g.w, g.head, g.next, g.last)

	return g.outputPermutation()
}

// initDegreeLists classifies every node and seeds the degree lists.
// Empty rows are eliminated immediately; dense rows are parked.
func (g *quotientGraph) initDegreeLists() {
	for i := 0; i < g.n; i++ {
		g.last[i] = empty
		g.head[i] = empty
		g.next[i] = empty
		g.nv[i] = 1
		g.w[i] = 1
		g.elen[i] = 0
		g.degree[i] = g.length[i]
	}

	for i := 0; i < g.n; i++ {
		deg := g.degree[i]
		switch {
		case deg == 0:
			// no off-diagonal entries: eliminate i on the spot, treated
			// like an already-absorbed element of size 1
			g.elen[i] = flip(1)
			g.nel++
			g.pe[i] = empty
			g.w[i] = 0
		case deg > g.dense:
			// parked: non-principal, no parent, ordered last
			g.info.NDense++
			g.nv[i] = 0
			g.elen[i] = empty
			g.nel++
			g.pe[i] = empty
		default:
			g.addToDegreeList(i, deg)
		}
	}
}

// clearFlag resets the w tag array when wflg would wrap.
func (g *quotientGraph) clearFlag() {
	if g.wflg < 2 || g.wflg >= g.wbig {
		for i := 0; i < g.n; i++ {
			if g.w[i] != 0 {
				g.w[i] = 1
			}
		}
		g.wflg = 2
	}
}

func (g *quotientGraph) addToDegreeList(i, deg int) {
	inext := g.head[deg]
	if inext != empty {
		g.last[inext] = i
	}
	g.next[i] = inext
	g.last[i] = empty
	g.head[deg] = i
}

func (g *quotientGraph) removeDegreeListHead(i, deg int) {
	inext := g.next[i]
	if inext != empty {
		g.last[inext] = empty
	}
	g.head[deg] = inext
}

func (g *quotientGraph) removeFromDegreeList(i int) {
	inext, ilast := g.next[i], g.last[i]
	if inext != empty {
		g.last[inext] = ilast
	}
	if ilast != empty {
		g.next[ilast] = inext
	} else {
		g.head[g.degree[i]] = inext
	}
}

// addToHashBucket files supervariable i under the given hash, reusing the
// degree-list arrays. The bucket head hides in head[hash] (flipped) when
// the degree list for that slot is empty, in last[head[hash]] otherwise.
func (g *quotientGraph) addToHashBucket(i, hash int) {
	j := g.head[hash]
	if j <= empty {
		g.next[i] = flip(j)
		g.head[hash] = flip(i)
	} else {
		g.next[i] = g.last[j]
		g.last[j] = i
	}
	g.last[i] = hash
}

// selectPivot returns the head of the first non-empty degree list at or
// above mindeg.
func (g *quotientGraph) selectPivot() int {
	deg := g.mindeg
	me := empty
	for ; deg < g.n; deg++ {
		me = g.head[deg]
		if me != empty {
			break
		}
	}
	g.mindeg = deg

	return me
}

// constructElement turns pivot me into a new element whose pattern (the
// principal supervariables adjacent to me, directly or through me's
// elements) lands in iw[pme1..pme2]. Elements of me are absorbed. The
// workspace is compacted when pfree hits iwlen.
func (g *quotientGraph) constructElement(st *elimStep) {
	me := st.me
	st.elenme = g.elen[me]
	st.nvpiv = g.nv[me]
	g.nel += st.nvpiv

	// flag me as part of its own element
	g.nv[me] = -st.nvpiv

	if st.elenme == 0 {
		// me has no elements: build the new element in place
		st.pme1 = g.pe[me]
		st.pme2 = st.pme1 - 1
		for p := st.pme1; p <= st.pme1+g.length[me]-1; p++ {
			i := g.iw[p]
			nvi := g.nv[i]
			if nvi > 0 {
				st.degme += nvi
				g.nv[i] = -nvi
				st.pme2++
				g.iw[st.pme2] = i
				g.removeFromDegreeList(i)
			}
		}
	} else {
		// merge me's elements and its own supervariable list into fresh
		// space at iw[pfree...]
		p := g.pe[me]
		st.pme1 = g.pfree
		slenme := g.length[me] - st.elenme

		for knt1 := 1; knt1 <= st.elenme+1; knt1++ {
			var e, pj, ln int
			if knt1 > st.elenme {
				// the supervariables directly adjacent to me
				e = me
				pj = p
				ln = slenme
			} else {
				// one of me's elements
				e = g.iw[p]
				p++
				pj = g.pe[e]
				ln = g.length[e]
			}

			for knt2 := 1; knt2 <= ln; knt2++ {
				i := g.iw[pj]
				pj++
				nvi := g.nv[i]
				if nvi <= 0 {
					continue // already gathered, or non-principal
				}

				if g.pfree >= g.iwlen {
					// out of elbow room: trim the two lists being walked
					// to their unread tails, then compact
					g.pe[me] = p
					g.length[me] -= knt1
					if g.length[me] == 0 {
						g.pe[me] = empty
					}
					g.pe[e] = pj
					g.length[e] = ln - knt2
					if g.length[e] == 0 {
						g.pe[e] = empty
					}

					g.compact(&st.pme1)

					pj = g.pe[e]
					p = g.pe[me]
				}

				st.degme += nvi
				g.nv[i] = -nvi
				g.iw[g.pfree] = i
				g.pfree++
				g.removeFromDegreeList(i)
			}

			if e != me {
				// all of e's supervariables are in Lme now: absorb e
				g.pe[e] = flip(me)
				g.w[e] = 0
			}
		}
		st.pme2 = g.pfree - 1
	}

	g.degree[me] = st.degme
	g.pe[me] = st.pme1
	g.length[me] = st.pme2 - st.pme1 + 1

	// flip(elen[me]) is the pivot degree including the diagonal block
	g.elen[me] = flip(st.nvpiv + st.degme)
}

// compact garbage-collects iw: every live list is tagged through its pe
// entry, slid to the front, and the partially built element at pme1 is
// moved down after it.
func (g *quotientGraph) compact(pme1 *int) {
	g.info.NCompactions++

	// tag each live list by stashing its first entry in pe and a flipped
	// back-pointer in the list head slot
	for j := 0; j < g.n; j++ {
		pn := g.pe[j]
		if pn >= 0 {
			g.pe[j] = g.iw[pn]
			g.iw[pn] = flip(j)
		}
	}

	// slide live lists down, restoring heads as they pass
	psrc, pdst := 0, 0
	pend := *pme1 - 1
	for psrc <= pend {
		j := flip(g.iw[psrc])
		psrc++
		if j < 0 {
			continue
		}
		g.iw[pdst] = g.pe[j]
		g.pe[j] = pdst
		pdst++
		for k := 0; k <= g.length[j]-2; k++ {
			g.iw[pdst] = g.iw[psrc]
			pdst++
			psrc++
		}
	}

	// move the element under construction
	p1 := pdst
	for psrc := *pme1; psrc <= g.pfree-1; psrc++ {
		g.iw[pdst] = g.iw[psrc]
		pdst++
	}
	*pme1 = p1
	g.pfree = pdst
}

// computeSetDifferences is scan 1 of the approximate degree update: for
// every element e adjacent to a supervariable of the new element, w[e] is
// set so that |Le \ Lme| = w[e] - wflg.
func (g *quotientGraph) computeSetDifferences(st *elimStep) {
	for pme := st.pme1; pme <= st.pme2; pme++ {
		i := g.iw[pme]
		eln := g.elen[i]
		if eln <= 0 {
			continue
		}
		// nv[i] was negated to mark i in Lme
		nvi := -g.nv[i]
		wnvi := g.wflg - nvi

		for p := g.pe[i]; p <= g.pe[i]+eln-1; p++ {
			e := g.iw[p]
			we := g.w[e]
			if we >= g.wflg {
				// e already seen in this scan: remove i's contribution
				we -= nvi
			} else if we != 0 {
				// first visit to unabsorbed e in this scan
				we = g.degree[e] + wnvi
			}
			g.w[e] = we
		}
	}
}

// updateDegrees is scan 2: each supervariable i in the new element gets an
// approximate external degree from its element set differences, absorbed
// elements are pruned from its list, the new element is prepended, and i
// is filed into a hash bucket for supervariable detection. Nodes reduced
// to a lone edge to the pivot are mass-eliminated.
func (g *quotientGraph) updateDegrees(st *elimStep) {
	me := st.me
	for pme := st.pme1; pme <= st.pme2; pme++ {
		i := g.iw[pme]
		p1 := g.pe[i]
		p2 := p1 + g.elen[i]
		pn := p1
		hash := 0
		deg := 0

		// scan i's elements, dropping absorbed ones
		if g.aggressive {
			for p := p1; p < p2; p++ {
				e := g.iw[p]
				we := g.w[e]
				if we == 0 {
					continue
				}
				dext := we - g.wflg
				if dext > 0 {
					deg += dext
					g.iw[pn] = e
					pn++
					hash += e
				} else {
					// |Le \ Lme| == 0: absorb e into me outright
					g.pe[e] = flip(me)
					g.w[e] = 0
				}
			}
		} else {
			for p := p1; p < p2; p++ {
				e := g.iw[p]
				we := g.w[e]
				if we != 0 {
					deg += we - g.wflg
					g.iw[pn] = e
					pn++
					hash += e
				}
			}
		}

		g.elen[i] = pn - p1 + 1 // counting me, added below

		// scan i's supervariables
		p3 := pn
		p4 := p1 + g.length[i]
		for p := p2; p < p4; p++ {
			j := g.iw[p]
			nvj := g.nv[j]
			if nvj > 0 {
				deg += nvj
				g.iw[pn] = j
				pn++
				hash += j
			}
		}

		if g.elen[i] == 1 && p3 == pn {
			// mass elimination: nothing left of i but an edge to me
			g.pe[i] = flip(me)
			nvi := -g.nv[i]
			st.degme -= nvi
			st.nvpiv += nvi
			g.nel += nvi
			g.nv[i] = 0
			g.elen[i] = empty
		} else {
			// tighten the degree bound; the new element's size is added
			// when the degree lists are rebuilt
			if deg < g.degree[i] {
				g.degree[i] = deg
			}

			// prepend me to i's element list
			g.iw[pn] = g.iw[p3]
			g.iw[p3] = g.iw[p1]
			g.iw[p1] = me
			g.length[i] = pn - p1 + 1

			g.addToHashBucket(i, hash%g.n)
		}
	}

	g.degree[me] = st.degme
}

// detectSupervariables walks the hash buckets populated by updateDegrees
// and merges variables with identical lists into one supervariable.
func (g *quotientGraph) detectSupervariables(st *elimStep) {
	for pme := st.pme1; pme <= st.pme2; pme++ {
		i := g.iw[pme]
		if g.nv[i] >= 0 {
			continue // already absorbed into another supervariable
		}

		// bucket head for i's hash key (stored in last[i])
		hash := g.last[i]
		j := g.head[hash]
		switch {
		case j == empty:
			i = empty
		case j < empty:
			i = flip(j)
			g.head[hash] = empty
		default:
			i = g.last[j]
			g.last[j] = empty
		}

		for i != empty && g.next[i] != empty {
			ln := g.length[i]
			eln := g.elen[i]

			// tag i's list (all but the leading element, me)
			p1 := g.pe[i]
			for p := p1 + 1; p <= p1+ln-1; p++ {
				g.w[g.iw[p]] = g.wflg
			}

			jlast := i
			j = g.next[i]
			for j != empty {
				ok := g.length[j] == ln && g.elen[j] == eln
				pj := g.pe[j]
				for p := pj + 1; ok && p <= pj+ln-1; p++ {
					if g.w[g.iw[p]] != g.wflg {
						ok = false
					}
				}

				if ok {
					// identical lists: fold j into i
					g.pe[j] = flip(i)
					g.nv[i] += g.nv[j]
					g.nv[j] = 0
					g.elen[j] = empty
					j = g.next[j]
					g.next[jlast] = j
				} else {
					jlast = j
					j = g.next[j]
				}
			}

			g.wflg++
			i = g.next[i]
		}
	}
}

// restoreDegreeLists puts the surviving principal supervariables of the
// new element back on the degree lists with their updated external
// degrees, compacting the element pattern in place. Returns one past the
// end of the compacted pattern.
func (g *quotientGraph) restoreDegreeLists(st *elimStep) int {
	p := st.pme1
	nleft := g.n - g.nel
	for pme := st.pme1; pme <= st.pme2; pme++ {
		i := g.iw[pme]
		nvi := -g.nv[i]
		if nvi <= 0 {
			continue
		}
		g.nv[i] = nvi

		// external degree including the new element
		deg := g.degree[i] + st.degme - nvi
		if limit := nleft - nvi; deg > limit {
			deg = limit
		}

		g.addToDegreeList(i, deg)
		g.degree[i] = deg
		if deg < g.mindeg {
			g.mindeg = deg
		}

		g.iw[p] = i
		p++
	}

	return p
}

// finalizeElement fixes up the pivot's metadata after its pattern has been
// compacted to iw[pme1:p].
func (g *quotientGraph) finalizeElement(st *elimStep, p int) {
	me := st.me
	g.nv[me] = st.nvpiv
	g.length[me] = p - st.pme1
	if g.length[me] == 0 {
		// nothing left: me is a root of the assembly tree
		g.pe[me] = empty
		g.w[me] = 0
	}
	if st.elenme != 0 {
		// element was built in fresh space; release the unused tail
		g.pfree = p
	}
}

// accountPivot accumulates fill and flop estimates for one pivot.
func (g *quotientGraph) accountPivot(st *elimStep) {
	f := float64(st.nvpiv)
	r := float64(st.degme) + float64(g.info.NDense)
	g.info.DMax = math.Max(g.info.DMax, f+r)

	lnzme := f*r + (f-1)*f/2
	g.info.Lnz += lnzme
	g.info.NDiv += lnzme

	s := f*r*r + r*(f-1)*f + (f-1)*f*(2*f-1)/6
	g.info.NMultSubLU += s
	g.info.NMultSubLDL += (s + lnzme) / 2
}

// accountDenseTail adds the cost of the dense rows eliminated last.
func (g *quotientGraph) accountDenseTail() {
	f := float64(g.info.NDense)
	g.info.DMax = math.Max(g.info.DMax, f)

	lnzme := (f - 1) * f / 2
	g.info.Lnz += lnzme
	g.info.NDiv += lnzme

	s := (f - 1) * f * (2*f - 1) / 6
	g.info.NMultSubLU += s
	g.info.NMultSubLDL += (s + lnzme) / 2
}

// compressPaths unflips pe into a proper assembly tree (parent pointers)
// and elen into element sizes, then path-compresses absorbed variables so
// every one points directly at its element.
func (g *quotientGraph) compressPaths() {
	for i := 0; i < g.n; i++ {
		g.pe[i] = flip(g.pe[i])
	}
	for i := 0; i < g.n; i++ {
		g.elen[i] = flip(g.elen[i])
	}

	for i := 0; i < g.n; i++ {
		if g.nv[i] != 0 {
			continue
		}
		j := g.pe[i]
		if j == empty {
			continue // dense variable, no parent
		}

		// climb to the element that absorbed this chain
		for g.nv[j] == 0 {
			j = g.pe[j]
		}
		e := j

		// second pass: point the whole path at e
		j = i
		for g.nv[j] == 0 {
			jnext := g.pe[j]
			g.pe[j] = e
			j = jnext
		}
	}
}

// outputPermutation expands the postordered supernodes (ranks in w) into
// the final node permutation: each element's variables are numbered
// consecutively, absorbed variables immediately before their element,
// dense variables at the very end.
func (g *quotientGraph) outputPermutation() []int {
	n := g.n
	for k := 0; k < n; k++ {
		g.head[k] = empty
		g.next[k] = empty
	}

	// head[k] = element with postorder rank k
	for e := 0; e < n; e++ {
		if g.w[e] != empty {
			g.head[g.w[e]] = e
		}
	}

	// assign each element's supernode a contiguous range
	nel := 0
	for k := 0; k < n; k++ {
		e := g.head[k]
		if e == empty {
			break
		}
		g.next[e] = nel
		nel += g.nv[e]
	}

	// non-principal variables: absorbed ones slot in just before their
	// element, dense ones go last
	for i := 0; i < n; i++ {
		if g.nv[i] != 0 {
			continue
		}
		e := g.pe[i]
		if e != empty {
			g.next[i] = g.next[e]
			g.next[e]++
		} else {
			g.next[i] = nel
			nel++
		}
	}

	// invert: next holds positions, perm holds nodes
	perm := make([]int, n)
	for i, pos := range g.next {
		perm[pos] = i
	}

	return perm
}
