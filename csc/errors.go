package csc

import "errors"

var (
	// ErrInvalidDimensions is returned when a matrix is created with a
	// non-positive row or column count.
	ErrInvalidDimensions = errors.New("csc: dimensions must be > 0")

	// ErrIndexOutOfRange indicates a row or column index outside the valid
	// range [0, nrows) / [0, ncols).
	ErrIndexOutOfRange = errors.New("csc: index out of range")

	// ErrInvalidColPointers indicates a malformed column-pointer array:
	// wrong length, a non-zero first entry, a last entry not equal to nnz,
	// or a decreasing pair.
	ErrInvalidColPointers = errors.New("csc: invalid column pointers")

	// ErrRowsNotSorted indicates that the row indices within some column are
	// not strictly increasing (duplicates count as a violation).
	ErrRowsNotSorted = errors.New("csc: row indices not strictly increasing")

	// ErrLengthMismatch indicates that the row-index and value arrays have
	// different lengths.
	ErrLengthMismatch = errors.New("csc: row index / value length mismatch")
)
