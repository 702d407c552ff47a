package lu

import "errors"

var (
	// ErrNotSquare is returned when the input matrix is not square.
	ErrNotSquare = errors.New("lu: matrix is not square")

	// ErrStructurallySingular is returned during factorization when a block
	// column has no non-pivotal rows left, so no pivot can be chosen. Only
	// raised when halt-on-singular is set; otherwise a zero pivot is recorded
	// in Metrics and factorization continues.
	ErrStructurallySingular = errors.New("lu: matrix is structurally singular")

	// ErrSingular is returned when a numerically zero pivot is met with
	// halt-on-singular set.
	ErrSingular = errors.New("lu: matrix is singular")

	// ErrPatternMismatch is returned by Refactor when the matrix dimensions
	// or entry count differ from the pattern the factors were built for.
	ErrPatternMismatch = errors.New("lu: sparsity pattern differs from analyzed matrix")

	// ErrRHSLength is returned by Solve when the right-hand side is shorter
	// than the system dimension.
	ErrRHSLength = errors.New("lu: right-hand side has wrong length")

	// ErrTooLarge is returned when a factor-workspace size computation
	// overflows the int range.
	ErrTooLarge = errors.New("lu: problem too large")

	// ErrNotFactored is returned by Session.Solve before the first
	// successful Session.Factor call.
	ErrNotFactored = errors.New("lu: session has no factorization")
)
