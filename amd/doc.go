// Package amd computes fill-reducing orderings with the approximate
// minimum degree algorithm of Amestoy, Davis, and Duff.
//
// Order takes the pattern of a square matrix A, forms the symmetric
// pattern A+Aᵗ, and greedily eliminates the node of minimum approximate
// external degree, maintaining a quotient graph of variables and elements
// instead of the explicit elimination graph. The classic AMD refinements
// are all here:
//
//   - approximate (upper bound) external degrees via element set
//     differences, so a degree update costs |Le| work, not |Le|²;
//   - supervariable detection through hash buckets, merging nodes with
//     identical adjacency so they are eliminated together;
//   - mass elimination of nodes left with only an edge to the pivot;
//   - aggressive element absorption (on by default);
//   - dense rows parked aside (threshold max(16, min(n, c·√n)), c
//     configurable) and appended at the end of the ordering;
//   - in-place workspace compaction when the element lists run out of
//     elbow room.
//
// The assembly tree left behind by elimination is postordered (largest
// child last) so supernodes come out in a contiguous, cache-friendly
// sequence. The returned permutation perm maps new index → old index:
// eliminating in the order perm[0], perm[1], ... approximately minimizes
// fill-in of the LU or Cholesky factors.
//
// Info reports the fill and flop estimates the symbolic analysis layer
// uses to size factor storage: nnz(L), divide and multiply-subtract
// counts, the largest front, dense-row count, and the pattern symmetry of
// the input.
//
// Complexity: O(n + nnz) space; empirically near O(nnz) time for the
// sparse patterns circuit matrices produce.
//
// Errors:
//
//   - ErrInvalidPattern   malformed or non-square input pattern.
//   - ErrUnsortedPattern  row indices within a column not strictly increasing.
package amd
