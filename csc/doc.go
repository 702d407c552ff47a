// Package csc implements the compressed-sparse-column (CSC) matrix format
// used throughout sparsekit.
//
// The csc package provides:
//
//   - Matrix: an immutable square or rectangular CSC matrix with validated
//     invariants (non-decreasing column pointers, in-range and strictly
//     increasing row indices per column).
//   - Builder: a coordinate (COO) accumulator that sorts entries, sums
//     duplicates, drops explicit zeros, and emits a canonical Matrix.
//   - Pattern: a value-free view over column pointers and row indices, used
//     by the ordering packages (btf, amd) that never read numeric values.
//
// CSC is the input contract of the whole solver pipeline: the MNA stamping
// collaborator hands the solver a Matrix, and every downstream stage (block
// triangularization, ordering, factorization, solve) reads it without copying.
//
// Complexity:
//
//   - Builder.Build: O(nnz·log nnz) for the sort plus O(n + nnz) assembly.
//   - Matrix accessors: O(1); Transpose and PermuteColumns: O(n + nnz).
//
// Errors:
//
//   - ErrInvalidDimensions   non-positive nrows/ncols.
//   - ErrIndexOutOfRange     a row or column index outside [0, n).
//   - ErrInvalidColPointers  malformed column-pointer array.
//   - ErrRowsNotSorted       row indices within a column not strictly increasing.
//   - ErrLengthMismatch      row-index and value arrays disagree in length.
package csc
