package lu

// Scaling selects how row scale factors are computed before factorization.
type Scaling int

const (
	// ScaleMax divides each row by its largest absolute value (the default).
	ScaleMax Scaling = iota
	// ScaleSum divides each row by the sum of its absolute values.
	ScaleSum
	// ScaleNone disables row scaling.
	ScaleNone
)

// OrderingMethod selects the per-block fill-reducing ordering used by Analyze.
type OrderingMethod int

const (
	// OrderingAMD orders each diagonal block with approximate minimum degree
	// (the default).
	OrderingAMD OrderingMethod = iota
	// OrderingNatural keeps each block in its given order. Fill estimates are
	// then unknown and factorization sizes its workspace from nnz(A) instead.
	OrderingNatural
)

// Options configure analysis, factorization, and the refactor policy.
type Options struct {
	// PivotTolerance is the threshold for diagonal preference during partial
	// pivoting: the diagonal candidate is kept whenever its magnitude is at
	// least PivotTolerance times the largest candidate. Clamped to [0, 1].
	PivotTolerance float64

	// Scaling selects the row-scaling mode.
	Scaling Scaling

	// Ordering selects the per-block fill-reducing ordering.
	Ordering OrderingMethod

	// BTF enables the block-triangular pre-ordering. When off the whole
	// matrix is treated as a single block.
	BTF bool

	// HaltIfSingular aborts factorization on a zero pivot. When off the zero
	// pivot is recorded in Metrics and a zero U diagonal remains; a later
	// Solve will produce non-finite values for the affected unknowns.
	HaltIfSingular bool

	// MemGrowth is the growth factor applied to a block's factor arena when
	// it fills up mid-factorization. Clamped to at least 1.
	MemGrowth float64

	// FillEstimateFactor sizes a block's initial factor arena as
	// FillEstimateFactor*nnz(L) + blocksize when an ordering fill estimate is
	// available. Clamped to at least 1.
	FillEstimateFactor float64

	// FillFallbackFactor sizes the arena as FillFallbackFactor*nnz(A) + n
	// when no fill estimate exists. Clamped to at least 10.
	FillFallbackFactor float64

	// GrowthThreshold is the reciprocal-pivot-growth floor used by Session:
	// a refactorization whose growth falls below it triggers a full
	// factorization with a fresh pivot search.
	GrowthThreshold float64
}

// DefaultOptions mirror the classic KLU defaults: tolerance 0.001, max row
// scaling, AMD ordering, BTF on, halt on singular, growth threshold 1e-4.
func DefaultOptions() Options {
	return Options{
		PivotTolerance:     0.001,
		Scaling:            ScaleMax,
		Ordering:           OrderingAMD,
		BTF:                true,
		HaltIfSingular:     true,
		MemGrowth:          1.2,
		FillEstimateFactor: 1.2,
		FillFallbackFactor: 10,
		GrowthThreshold:    1e-4,
	}
}

// Option mutates Options.
type Option func(*Options)

// WithPivotTolerance sets the diagonal-preference threshold.
func WithPivotTolerance(tol float64) Option {
	return func(o *Options) { o.PivotTolerance = tol }
}

// WithScaling selects the row-scaling mode.
func WithScaling(s Scaling) Option {
	return func(o *Options) { o.Scaling = s }
}

// WithOrdering selects the per-block fill-reducing ordering.
func WithOrdering(m OrderingMethod) Option {
	return func(o *Options) { o.Ordering = m }
}

// WithBTF toggles the block-triangular pre-ordering.
func WithBTF(enabled bool) Option {
	return func(o *Options) { o.BTF = enabled }
}

// WithHaltIfSingular toggles aborting on a zero pivot.
func WithHaltIfSingular(halt bool) Option {
	return func(o *Options) { o.HaltIfSingular = halt }
}

// WithMemGrowth sets the factor-arena growth factor.
func WithMemGrowth(f float64) Option {
	return func(o *Options) { o.MemGrowth = f }
}

// WithFillEstimateFactor sets the arena sizing multiplier applied to the
// ordering's fill estimate.
func WithFillEstimateFactor(f float64) Option {
	return func(o *Options) { o.FillEstimateFactor = f }
}

// WithFillFallbackFactor sets the arena sizing multiplier applied to nnz(A)
// when no fill estimate exists.
func WithFillFallbackFactor(f float64) Option {
	return func(o *Options) { o.FillFallbackFactor = f }
}

// WithGrowthThreshold sets the reciprocal-growth floor for Session's forced
// full factorization.
func WithGrowthThreshold(t float64) Option {
	return func(o *Options) { o.GrowthThreshold = t }
}

// buildOptions applies opts over the defaults and clamps every knob into its
// valid range.
func buildOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.PivotTolerance < 0 {
		o.PivotTolerance = 0
	}
	if o.PivotTolerance > 1 {
		o.PivotTolerance = 1
	}
	if o.MemGrowth < 1 {
		o.MemGrowth = 1
	}
	if o.FillEstimateFactor < 1 {
		o.FillEstimateFactor = 1
	}
	if o.FillFallbackFactor < 10 {
		o.FillFallbackFactor = 10
	}
	if o.GrowthThreshold < 0 {
		o.GrowthThreshold = 0
	}

	return o
}
