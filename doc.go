// Package sparsekit is a sparse direct solver toolkit for the unsymmetric
// linear systems that circuit and network simulators produce — modified
// nodal analysis matrices: square, very sparse, nearly block triangular
// after permutation, refactored thousands of times over a fixed pattern.
//
// 🚀 What is sparsekit?
//
//	A pure-Go solver pipeline that brings together:
//		• Compressed sparse column matrices with a duplicate-merging builder
//		• MatrixMarket coordinate I/O
//		• Maximum transversal + strongly connected components = BTF ordering
//		• Approximate minimum degree (AMD) fill-reducing ordering per block
//		• Left-looking sparse LU with threshold partial pivoting, row
//		  scaling, and symmetric pruning
//		• Cheap value-only refactorization over a frozen pivot pattern
//		• A Session policy that picks analyze/factor/refactor automatically
//		  from reciprocal pivot growth
//
// ✨ Why choose sparsekit?
//
//   - Built for the simulator loop – factor once, refactor on every
//     Newton iteration, fall back to a full pivot search only when the
//     growth statistic says the frozen pattern went stale
//   - Explicit numerics – reciprocal pivot growth, minimum pivot, rank
//     and singular-column reporting on every factorization
//   - Pure Go – no cgo, no hidden deps
//
// Under the hood, everything is organized under five subpackages:
//
//	csc/ — compressed sparse column matrix, pattern view, builder
//	mtx/ — MatrixMarket coordinate reader
//	btf/ — maximum transversal + Tarjan SCC block triangular ordering
//	amd/ — approximate minimum degree ordering with postordering
//	lu/  — analyze / factor / solve / refactor, and the Session policy
//
// Quick sketch of the pipeline:
//
//	A ──BTF──▶ P·A·Q block triangular ──AMD──▶ per-block ordering
//	  ──LU──▶ L, U, Off ──solve──▶ x    ──refactor──▶ L', U' (same pattern)
//
// The cmd/sparsebench command drives the full pipeline against
// MatrixMarket files and reports structure, timing, and accuracy.
//
//	go get github.com/sparsekit/sparsekit
package sparsekit
