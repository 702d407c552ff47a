package btf

import (
	"errors"
	"fmt"

	"github.com/sparsekit/sparsekit/csc"
)

// ErrInvalidPattern is returned by Order for a malformed input pattern.
var ErrInvalidPattern = errors.New("btf: invalid pattern")

// Ordering is the block-triangular permutation of a square pattern.
// All permutation slices map new index → old index.
type Ordering struct {
	// RowPerm is the row permutation P.
	RowPerm []int
	// ColPerm is the combined column permutation Q·Pᵗ, so that A(RowPerm,
	// ColPerm) is block upper triangular with the matched entries on its
	// diagonal.
	ColPerm []int
	// Blocks holds block boundaries: block b spans rows/columns
	// Blocks[b]..Blocks[b+1]-1 of the permuted matrix. Length NumBlocks()+1.
	Blocks []int
	// StructuralRank is the number of rows matched by the maximum
	// transversal; less than n means the matrix is structurally singular
	// and some diagonal entries of the permuted matrix are structural zeros.
	StructuralRank int
}

// NumBlocks returns the number of diagonal blocks.
func (o *Ordering) NumBlocks() int { return len(o.Blocks) - 1 }

// MaxBlockSize returns the dimension of the largest diagonal block.
func (o *Ordering) MaxBlockSize() int {
	max := 0
	for b := 0; b < o.NumBlocks(); b++ {
		if s := o.Blocks[b+1] - o.Blocks[b]; s > max {
			max = s
		}
	}

	return max
}

// Order computes the block-triangular ordering of the square pattern a:
// maximum transversal first, then Tarjan SCC over the matched graph. A
// structurally singular matrix still yields a total permutation (unmatched
// rows are paired with the unused columns) and its deficiency is reported
// via StructuralRank.
func Order(a csc.Pattern) (*Ordering, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	n := a.N()

	nmatch, match := MaxTransversal(a)
	if nmatch < n {
		completeMatching(n, match)
	}

	_, rowPerm, blocks := scc(a, match)

	colPerm := make([]int, n)
	for k, oldRow := range rowPerm {
		colPerm[k] = match[oldRow]
	}

	return &Ordering{
		RowPerm:        rowPerm,
		ColPerm:        colPerm,
		Blocks:         blocks,
		StructuralRank: nmatch,
	}, nil
}

// completeMatching extends a partial matching to a total one by handing the
// unused columns, largest index first, to the unmatched rows in ascending
// row order. The diagonal entries this fabricates are structural zeros; the
// matching count is unaffected.
func completeMatching(n int, match []int) {
	used := make([]bool, n)
	for _, col := range match {
		if col != Unmatched {
			used[col] = true
		}
	}

	unused := make([]int, 0, n)
	for j := n - 1; j >= 0; j-- {
		if !used[j] {
			unused = append(unused, j)
		}
	}

	k := len(unused)
	for row := 0; row < n && k > 0; row++ {
		if match[row] == Unmatched {
			k--
			match[row] = unused[k]
		}
	}
}
