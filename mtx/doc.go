// Package mtx loads sparse matrices from MatrixMarket files.
//
// Supported subset — the coordinate exchange format circuit and benchmark
// collections publish:
//
//	%%MatrixMarket matrix coordinate {integer|real} general
//
// Indices in the file are 1-based and converted to 0-based on load. Comment
// lines (%) and blank lines are skipped anywhere. Duplicate coordinates are
// summed, matching MNA stamping semantics.
//
// Errors:
//
//   - ErrInvalidBanner        missing or malformed %%MatrixMarket header.
//   - ErrUnsupportedType      non-coordinate format, non-general symmetry,
//     or a field other than integer/real.
//   - ErrInvalidSizeLine      the "nrows ncols nnz" line is missing or malformed.
//   - ErrInvalidEntry         a data line does not parse as "row col value".
//   - ErrEntryCountMismatch   the file holds a different number of entries
//     than its size line declares.
//
// All errors carry the offending line number via fmt.Errorf wrapping and
// unwrap to the sentinels above with errors.Is.
package mtx
