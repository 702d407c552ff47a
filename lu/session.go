package lu

import "github.com/sparsekit/sparsekit/csc"

// State identifies where a Session is in its refactorization policy.
type State int

const (
	// StateFreshSymbolic means no analysis exists yet; the next Factor call
	// runs full symbolic analysis and factorization.
	StateFreshSymbolic State = iota
	// StateReuseNumeric means a trusted factorization exists; the next
	// Factor call refactors cheaply over the frozen pivot pattern.
	StateReuseNumeric
	// StateForcedFullFactor means the last cheap refactorization degraded
	// past the growth threshold (or failed); the next Factor call runs a
	// full factorization with a fresh pivot search.
	StateForcedFullFactor
)

// String returns the state name.
func (st State) String() string {
	switch st {
	case StateFreshSymbolic:
		return "fresh-symbolic"
	case StateReuseNumeric:
		return "reuse-numeric"
	case StateForcedFullFactor:
		return "forced-full-factor"
	default:
		return "unknown"
	}
}

// Stats aggregates what a Session has done and its latest stability signals.
type Stats struct {
	// Analyses counts symbolic analyses (one per distinct pattern).
	Analyses int
	// Factorizations counts full factorizations with pivot search.
	Factorizations int
	// Refactorizations counts cheap value-only refactorizations.
	Refactorizations int
	// ForcedFull counts full factorizations forced by growth degradation
	// or by a failed refactorization.
	ForcedFull int
	// LastGrowth and LastMinPivot are the stability signals of the most
	// recent successful factorization.
	LastGrowth   float64
	LastMinPivot float64
}

// Session owns one symbolic object, one numeric object, and the refactor
// policy state machine for a sequence of solves over matrices with a fixed
// sparsity pattern — the shape of a simulator's Newton loop, where values
// change every iteration but the topology does not. A Session must not be
// shared between goroutines; independent contexts get independent Sessions
// (they may share the Symbolic read-only via Symbolic()).
type Session struct {
	opts  []Option
	o     Options
	sym   *Symbolic
	num   *Numeric
	state State
	stats Stats
}

// NewSession creates a session; the options apply to every analysis and
// factorization it performs.
func NewSession(opts ...Option) *Session {
	return &Session{opts: opts, o: buildOptions(opts), state: StateFreshSymbolic}
}

// Factor brings the session's factors up to date with a. The first call —
// or any call after the sparsity pattern changed — runs full analysis and
// factorization. Later calls refactor cheaply, then check reciprocal pivot
// growth against the configured threshold: on degradation the cheap result
// is discarded and a full factorization with a fresh pivot search runs
// instead, returning the session to cheap reuse on success.
func (s *Session) Factor(a *csc.Matrix) error {
	if s.sym != nil && (a.Cols() != s.sym.n || a.Rows() != s.sym.n || a.NNZ() != s.sym.nz) {
		s.sym, s.num = nil, nil
		s.state = StateFreshSymbolic
	}

	if s.sym == nil {
		sym, err := Analyze(a, s.opts...)
		if err != nil {
			return err
		}
		s.stats.Analyses++
		s.sym = sym

		return s.fullFactor(a, false)
	}

	if s.state == StateReuseNumeric {
		if err := s.num.Refactor(a); err == nil {
			s.stats.Refactorizations++
			growth, minPivot := s.num.Growth(a)
			s.stats.LastGrowth, s.stats.LastMinPivot = growth, minPivot
			if growth >= s.o.GrowthThreshold {
				return nil
			}
		}
		// degraded or failed: redo the pivot search
		s.state = StateForcedFullFactor
	}

	return s.fullFactor(a, true)
}

func (s *Session) fullFactor(a *csc.Matrix, forced bool) error {
	num, err := Factor(a, s.sym, s.opts...)
	if err != nil {
		// the previous factors were built from older values; Solve must not
		// serve them after the matrix moved on
		s.num = nil

		return err
	}
	s.stats.Factorizations++
	if forced {
		s.stats.ForcedFull++
	}
	s.num = num
	s.state = StateReuseNumeric
	s.stats.LastGrowth, s.stats.LastMinPivot = num.Growth(a)

	return nil
}

// Solve overwrites b with the solution against the current factors.
func (s *Session) Solve(b []float64) error {
	if s.num == nil {
		return ErrNotFactored
	}

	return s.num.Solve(b)
}

// State returns the current policy state.
func (s *Session) State() State { return s.state }

// Stats returns the session counters and latest stability signals.
func (s *Session) Stats() Stats { return s.stats }

// Symbolic returns the current symbolic analysis, or nil before the first
// Factor call.
func (s *Session) Symbolic() *Symbolic { return s.sym }

// Numeric returns the current factors, or nil before the first successful
// Factor call.
func (s *Session) Numeric() *Numeric { return s.num }
