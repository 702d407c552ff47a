package amd

import "math"

// Options configure the elimination heuristics.
type Options struct {
	// Aggressive enables aggressive element absorption: an element whose
	// supervariables are all covered by the new pivot element is absorbed
	// even when it is not adjacent to the pivot.
	Aggressive bool

	// DenseMultiplier scales the √n dense-row threshold. A row with more
	// than max(16, min(n, DenseMultiplier·√n)) off-diagonal entries is set
	// aside and ordered last. Values <= 0 fall back to the default.
	DenseMultiplier float64
}

// DefaultOptions mirror the classic AMD defaults: aggressive absorption on,
// dense multiplier 10.
func DefaultOptions() Options {
	return Options{
		Aggressive:      true,
		DenseMultiplier: 10,
	}
}

// Option mutates Options.
type Option func(*Options)

// WithAggressive toggles aggressive element absorption.
func WithAggressive(enabled bool) Option {
	return func(o *Options) { o.Aggressive = enabled }
}

// WithDenseMultiplier overrides the dense-row threshold multiplier.
func WithDenseMultiplier(c float64) Option {
	return func(o *Options) { o.DenseMultiplier = c }
}

// denseThreshold returns the entry count above which a row is treated as
// dense. Rows with 16 or fewer entries are never dense.
func (o Options) denseThreshold(n int) int {
	c := o.DenseMultiplier
	if c <= 0 {
		c = DefaultOptions().DenseMultiplier
	}
	d := int(c * math.Sqrt(float64(n)))
	if d > n {
		d = n
	}
	if d < 16 {
		d = 16
	}

	return d
}
