package mtx

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sparsekit/sparsekit/csc"
)

var (
	// ErrInvalidBanner indicates a missing or malformed %%MatrixMarket header.
	ErrInvalidBanner = errors.New("mtx: invalid banner")

	// ErrUnsupportedType indicates a banner outside the supported subset
	// (matrix coordinate {integer|real} general).
	ErrUnsupportedType = errors.New("mtx: unsupported matrix type")

	// ErrInvalidSizeLine indicates a missing or malformed "nrows ncols nnz" line.
	ErrInvalidSizeLine = errors.New("mtx: invalid size line")

	// ErrInvalidEntry indicates a data line that does not parse as "row col value".
	ErrInvalidEntry = errors.New("mtx: invalid entry")

	// ErrEntryCountMismatch indicates a file whose entry count disagrees with
	// its size line.
	ErrEntryCountMismatch = errors.New("mtx: entry count mismatch")
)

// field is the value type declared in the banner.
type field int

const (
	fieldInteger field = iota
	fieldReal
)

// LoadFile reads a MatrixMarket coordinate file from disk into a canonical
// CSC matrix.
func LoadFile(path string) (*csc.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mtx: open %s: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// Load reads a MatrixMarket coordinate stream into a canonical CSC matrix:
// sorted columns, duplicates summed, explicit zeros dropped.
func Load(r io.Reader) (*csc.Matrix, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0

	next := func() (string, bool) {
		for sc.Scan() {
			lineNo++
			t := strings.TrimSpace(sc.Text())
			if t != "" {
				return t, true
			}
		}

		return "", false
	}

	// 1. Banner: first non-empty line.
	header, ok := next()
	if !ok {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidBanner)
	}
	header = strings.TrimPrefix(header, "\ufeff")

	fld, err := parseBanner(header, lineNo)
	if err != nil {
		return nil, err
	}

	// 2. Size line: first non-comment line after the banner.
	var sizeLine string
	for {
		sizeLine, ok = next()
		if !ok {
			return nil, fmt.Errorf("%w: missing size line", ErrInvalidSizeLine)
		}
		if !strings.HasPrefix(sizeLine, "%") {
			break
		}
	}

	nrows, ncols, nnz, err := parseSizeLine(sizeLine, lineNo)
	if err != nil {
		return nil, err
	}

	b, err := csc.NewBuilder(nrows, ncols)
	if err != nil {
		return nil, fmt.Errorf("%w (line %d): %v", ErrInvalidSizeLine, lineNo, err)
	}

	// 3. Entries.
	read := 0
	for {
		line, ok := next()
		if !ok {
			break
		}
		if strings.HasPrefix(line, "%") {
			continue
		}
		if read >= nnz {
			return nil, fmt.Errorf("%w (line %d): more than nnz=%d entries", ErrInvalidEntry, lineNo, nnz)
		}
		if err := parseEntry(b, line, lineNo, fld); err != nil {
			return nil, err
		}
		read++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("mtx: read: %w", err)
	}
	if read != nnz {
		return nil, fmt.Errorf("%w: expected %d entries, found %d", ErrEntryCountMismatch, nnz, read)
	}

	m, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("mtx: assemble: %w", err)
	}

	return m, nil
}

func parseBanner(header string, lineNo int) (field, error) {
	tokens := strings.Fields(header)
	if len(tokens) != 5 {
		return 0, fmt.Errorf("%w (line %d): expected 5 tokens, got %d: %q", ErrInvalidBanner, lineNo, len(tokens), header)
	}
	if tokens[0] != "%%MatrixMarket" {
		return 0, fmt.Errorf("%w (line %d): missing %%%%MatrixMarket: %q", ErrInvalidBanner, lineNo, header)
	}

	object := strings.ToLower(tokens[1])
	format := strings.ToLower(tokens[2])
	fieldName := strings.ToLower(tokens[3])
	symmetry := strings.ToLower(tokens[4])

	if object != "matrix" || format != "coordinate" {
		return 0, fmt.Errorf("%w (line %d): only 'matrix coordinate' is supported, got %q %q",
			ErrUnsupportedType, lineNo, tokens[1], tokens[2])
	}
	if symmetry != "general" {
		return 0, fmt.Errorf("%w (line %d): only 'general' symmetry is supported, got %q",
			ErrUnsupportedType, lineNo, tokens[4])
	}

	switch fieldName {
	case "integer":
		return fieldInteger, nil
	case "real":
		return fieldReal, nil
	default:
		return 0, fmt.Errorf("%w (line %d): only 'integer' and 'real' fields are supported, got %q",
			ErrUnsupportedType, lineNo, tokens[3])
	}
}

func parseSizeLine(line string, lineNo int) (nrows, ncols, nnz int, err error) {
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%w (line %d): expected 3 integers: %q", ErrInvalidSizeLine, lineNo, line)
	}

	dims := make([]int, 3)
	for i, p := range parts {
		v, perr := strconv.Atoi(p)
		if perr != nil || v < 0 {
			return 0, 0, 0, fmt.Errorf("%w (line %d): bad integer %q: %q", ErrInvalidSizeLine, lineNo, p, line)
		}
		dims[i] = v
	}

	return dims[0], dims[1], dims[2], nil
}

func parseEntry(b *csc.Builder, line string, lineNo int, fld field) error {
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return fmt.Errorf("%w (line %d): expected 'row col value', got %q", ErrInvalidEntry, lineNo, line)
	}

	row1, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("%w (line %d): bad row index %q", ErrInvalidEntry, lineNo, parts[0])
	}
	col1, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("%w (line %d): bad col index %q", ErrInvalidEntry, lineNo, parts[1])
	}
	if row1 <= 0 || col1 <= 0 {
		return fmt.Errorf("%w (line %d): indices are 1-based, got %d %d", ErrInvalidEntry, lineNo, row1, col1)
	}

	var val float64
	switch fld {
	case fieldInteger:
		v, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return fmt.Errorf("%w (line %d): bad integer value %q", ErrInvalidEntry, lineNo, parts[2])
		}
		val = float64(v)
	case fieldReal:
		v, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return fmt.Errorf("%w (line %d): bad real value %q", ErrInvalidEntry, lineNo, parts[2])
		}
		val = v
	}

	if err := b.Push(row1-1, col1-1, val); err != nil {
		return fmt.Errorf("%w (line %d): %v", ErrInvalidEntry, lineNo, err)
	}

	return nil
}
