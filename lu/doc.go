// Package lu implements a sparse direct solver for the unsymmetric linear
// systems produced by circuit simulation (Modified Nodal Analysis), in the
// style of the classic KLU algorithm.
//
// The pipeline has three stages:
//
//   - Analyze — pattern-only preprocessing: block-triangular decomposition
//     (package btf), a fill-reducing ordering per diagonal block (package
//     amd), and composition of the results into one row and one column
//     permutation plus workspace estimates. The resulting Symbolic object is
//     immutable and may be shared read-only across concurrent contexts.
//
//   - Factor — left-looking sparse LU of every diagonal block with threshold
//     partial pivoting, optional row scaling, and off-diagonal entries kept
//     in a separate compressed store. Produces a Numeric object owning the
//     factors, the realized pivot permutation, and stability statistics.
//
//   - Solve — forward/backward substitution through the block structure for
//     one or more right-hand sides. Never mutates the factors.
//
// Repeated solves with new values over the same sparsity pattern go through
// Numeric.Refactor, which reruns the numeric phase over the frozen pivot
// pattern without any symbolic work. Session wraps the full cycle with a
// policy state machine that watches reciprocal pivot growth and falls back
// to a full factorization when a cheap refactorization degrades.
//
// # Complexity
//
//   - Analyze: O(n + nnz) for BTF plus the AMD cost per block.
//   - Factor:  O(flops(LU)); left-looking with symmetric pruning.
//   - Refactor: O(flops(LU)) with no symbolic DFS and no pivot search.
//   - Solve:   O(nnz(L) + nnz(U)) per right-hand side.
//
// # Errors
//
//   - ErrNotSquare            - the input matrix is not square.
//   - ErrStructurallySingular - a block column has no eligible pivot rows.
//   - ErrSingular             - a zero pivot was met with halt-on-singular set.
//   - ErrPatternMismatch      - Refactor input does not match the analyzed pattern.
//   - ErrRHSLength            - right-hand side length disagrees with the matrix.
//   - ErrTooLarge             - a workspace size computation overflowed.
//   - ErrNotFactored          - Session.Solve before any successful Factor.
package lu
