package lu

import (
	"fmt"
	"sort"

	"github.com/sparsekit/sparsekit/amd"
	"github.com/sparsekit/sparsekit/btf"
	"github.com/sparsekit/sparsekit/csc"
)

// Symbolic is the pattern-only analysis of a matrix: the block-triangular
// structure, the composed fill-reducing permutations, and workspace
// estimates. It is immutable once built and may be shared read-only across
// any number of concurrent factorizations of matrices with this exact
// sparsity pattern.
type Symbolic struct {
	n  int
	nz int

	// rowPerm and colPerm map new index -> old index; they combine the
	// block-triangular permutation with the per-block fill ordering.
	rowPerm []int
	colPerm []int

	// blocks holds block boundaries in the permuted index space,
	// length nblocks+1.
	blocks   []int
	nblocks  int
	maxblock int

	// nzoff counts entries above the diagonal blocks.
	nzoff int

	// structuralRank is the maximum-transversal match count, or -1 when the
	// block-triangular pass was disabled and no matching was computed.
	structuralRank int

	// blockLnz estimates nnz(L) per block, diagonal included; -1 means
	// unknown (naturally ordered block) and makes factorization size its
	// arena from nnz(A) instead.
	blockLnz []float64
	lnzEst   float64
}

// Analyze computes the symbolic factorization of a: block-triangular
// decomposition (unless disabled), a fill-reducing ordering of every
// diagonal block, and the composition of both into one row and one column
// permutation.
func Analyze(a *csc.Matrix, opts ...Option) (*Symbolic, error) {
	o := buildOptions(opts)
	if !a.IsSquare() {
		return nil, ErrNotSquare
	}
	n := a.Cols()

	s := &Symbolic{
		n:       n,
		nz:      a.NNZ(),
		rowPerm: make([]int, n),
		colPerm: make([]int, n),
	}

	// 1. Block-triangular pre-ordering, or a single whole-matrix block.
	var btfRow, btfCol []int
	if o.BTF {
		ord, err := btf.Order(a.Pattern())
		if err != nil {
			return nil, err
		}
		btfRow, btfCol = ord.RowPerm, ord.ColPerm
		s.blocks = ord.Blocks
		s.structuralRank = ord.StructuralRank
	} else {
		btfRow = make([]int, n)
		btfCol = make([]int, n)
		for i := 0; i < n; i++ {
			btfRow[i] = i
			btfCol[i] = i
		}
		s.blocks = []int{0, n}
		s.structuralRank = -1
	}
	s.nblocks = len(s.blocks) - 1
	s.maxblock = 1
	for b := 0; b < s.nblocks; b++ {
		if size := s.blocks[b+1] - s.blocks[b]; size > s.maxblock {
			s.maxblock = size
		}
	}
	s.blockLnz = make([]float64, s.nblocks)

	// rowInv maps old row -> new (block-triangular) row.
	rowInv := make([]int, n)
	for k, old := range btfRow {
		rowInv[old] = k
	}

	// 2. Order each diagonal block. The block sub-pattern is extracted into
	// bcp/bri; mapping rows through rowInv can leave columns unsorted, so
	// each extracted column is sorted before ordering.
	bcp := make([]int, s.maxblock+1)
	bri := make([]int, a.NNZ())
	bperm := make([]int, s.maxblock)

	for block := 0; block < s.nblocks; block++ {
		k1, k2 := s.blocks[block], s.blocks[block+1]
		size := k2 - k1

		pc := 0
		for k := k1; k < k2; k++ {
			bcp[k-k1] = pc
			colStart := pc
			rows, _ := a.Col(btfCol[k])
			for _, oldRow := range rows {
				newRow := rowInv[oldRow]
				if newRow < k1 {
					// entry above the diagonal block
					s.nzoff++
				} else {
					bri[pc] = newRow - k1
					pc++
				}
			}
			sort.Ints(bri[colStart:pc])
		}
		bcp[size] = pc

		var lnz1 float64
		switch {
		case size <= 3:
			for k := 0; k < size; k++ {
				bperm[k] = k
			}
			lnz1 = float64(size) * float64(size+1) / 2
		case o.Ordering == OrderingAMD:
			perm, info, err := amd.Order(csc.NewPattern(size, bcp[:size+1], bri[:pc]))
			if err != nil {
				return nil, fmt.Errorf("lu: ordering block %d: %w", block, err)
			}
			copy(bperm, perm)
			lnz1 = info.Lnz + float64(size)
		default: // OrderingNatural
			for k := 0; k < size; k++ {
				bperm[k] = k
			}
			lnz1 = -1
		}

		s.blockLnz[block] = lnz1
		if lnz1 >= 0 {
			s.lnzEst += lnz1
		}

		// 3. Compose the block ordering with the block-triangular one.
		for k := 0; k < size; k++ {
			s.colPerm[k+k1] = btfCol[bperm[k]+k1]
			s.rowPerm[k+k1] = btfRow[bperm[k]+k1]
		}
	}

	return s, nil
}

// N returns the system dimension.
func (s *Symbolic) N() int { return s.n }

// NumBlocks returns the number of diagonal blocks.
func (s *Symbolic) NumBlocks() int { return s.nblocks }

// BlockRange returns the half-open permuted index range [k1, k2) of block b.
func (s *Symbolic) BlockRange(b int) (k1, k2 int) { return s.blocks[b], s.blocks[b+1] }

// MaxBlockSize returns the dimension of the largest diagonal block.
func (s *Symbolic) MaxBlockSize() int { return s.maxblock }

// OffDiagonalNNZ returns the number of entries above the diagonal blocks.
func (s *Symbolic) OffDiagonalNNZ() int { return s.nzoff }

// StructuralRank returns the maximum-transversal match count; n means
// structurally nonsingular, -1 means the block-triangular pass was disabled
// and no matching was computed.
func (s *Symbolic) StructuralRank() int { return s.structuralRank }

// EstimatedLnz returns the predicted nnz(L) over all blocks with a known
// fill estimate. Naturally ordered blocks contribute nothing.
func (s *Symbolic) EstimatedLnz() float64 { return s.lnzEst }

// RowPerm returns a copy of the symbolic row permutation (new -> old).
// Partial pivoting may deviate from it; see Numeric.PivotRowPerm.
func (s *Symbolic) RowPerm() []int { return append([]int(nil), s.rowPerm...) }

// ColPerm returns a copy of the column permutation (new -> old).
func (s *Symbolic) ColPerm() []int { return append([]int(nil), s.colPerm...) }
