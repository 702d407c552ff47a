// Package btf permutes a square sparse pattern to block triangular form.
//
// The pipeline runs in two stages:
//
//  1. MaxTransversal — a maximum matching of rows to columns (Duff's
//     MAXTRANS), found with greedy "cheap" assignment plus explicit-stack
//     augmenting-path search. A full matching puts structural nonzeros on
//     the whole diagonal; fewer than n matches means the matrix is
//     structurally singular.
//  2. Tarjan's strongly-connected-components algorithm, iterative with
//     explicit stacks, over the directed graph whose edge j→i exists when
//     row i is a structural nonzero of the column matched to j. Each SCC
//     becomes one irreducible diagonal block.
//
// Order combines both: it returns a row permutation P and a column
// permutation Q (both as new-index → old-index maps) such that A(P,Q) is
// block upper triangular with as many structural nonzeros on the diagonal
// as the matching allows, plus the block boundary offsets.
//
// Key properties:
//
//   - All searches are iterative; stack depth never depends on n.
//   - Blocks come out in topological order of the block DAG, and the
//     original relative order of columns is preserved inside each block.
//   - Structurally singular inputs still produce a total permutation and a
//     best-effort block structure; Order reports the structural rank.
//
// Complexity: O(n·nnz) worst case for the matching, O(n + nnz) for SCC.
package btf
