package solve

import (
	"math"

	"github.com/nishantsule/Planetary-Energy-Balance/internal/ebm"
	"github.com/nishantsule/Planetary-Energy-Balance/internal/flux"
)

const (
	DefaultTolerance = 1e-6
	DefaultMaxIter   = 100

	// initial secant offset, in Kelvin
	bracketStep = 1.0
)

// Option adjusts solver settings.
type Option func(*settings)

type settings struct {
	tol     float64
	maxIter int
}

// WithTolerance sets the absolute tolerance on |NetFlux| at the root.
func WithTolerance(tol float64) Option {
	return func(s *settings) { s.tol = tol }
}

// WithMaxIter bounds the number of secant iterations.
func WithMaxIter(n int) Option {
	return func(s *settings) { s.maxIter = n }
}

// FindRoot locates a steady-state temperature near guess by secant iteration
// on the net flux. The solver is deliberately local: the ice-albedo feedback
// gives the net flux up to three roots, and which one is found depends on the
// starting guess. Callers wanting several roots call with several guesses.
//
// If the iteration budget runs out the last estimate is still returned, inside
// a [ebm.ConvergenceError].
func FindRoot(m *flux.Model, guess float64, opts ...Option) (float64, error) {
	s := settings{tol: DefaultTolerance, maxIter: DefaultMaxIter}
	for _, opt := range opts {
		opt(&s)
	}

	t0, t1 := guess, guess+bracketStep
	f0, f1 := m.NetFlux(t0), m.NetFlux(t1)

	for i := 0; i < s.maxIter; i++ {
		if math.Abs(f1) < s.tol {
			return t1, nil
		}
		if f1 == f0 {
			// flat secant, nudge instead of dividing by zero
			t1 += bracketStep
			f1 = m.NetFlux(t1)
			continue
		}
		next := t1 - f1*(t1-t0)/(f1-f0)
		t0, f0 = t1, f1
		t1, f1 = next, m.NetFlux(next)
	}

	return t1, &ebm.ConvergenceError{Estimate: t1, Residual: math.Abs(f1), Iterations: s.maxIter}
}
