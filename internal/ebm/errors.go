package ebm

import (
	"errors"
	"fmt"
)

// Domain errors for model operations.
var (
	// ErrNumericalDivergence indicates an integration produced a non-finite state.
	ErrNumericalDivergence = errors.New("ebm: numerical divergence (NaN or Inf state)")

	// ErrNoConvergence indicates the root solver exhausted its iteration budget.
	ErrNoConvergence = errors.New("ebm: root iteration did not converge")

	// ErrUndefinedCoV indicates a coefficient of variation over a zero-mean series.
	ErrUndefinedCoV = errors.New("ebm: coefficient of variation undefined (zero mean)")
)

// DivergenceError records where an integration blew up.
type DivergenceError struct {
	Step int
	Time float64
	Last State
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("%v at step %d (t=%.4f)", ErrNumericalDivergence, e.Step, e.Time)
}

func (e *DivergenceError) Unwrap() error { return ErrNumericalDivergence }

// ConvergenceError carries the best estimate reached when the solver gave up,
// so a caller can still inspect or refine it.
type ConvergenceError struct {
	Estimate   float64
	Residual   float64
	Iterations int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%v after %d iterations (best T=%.6f, residual=%.3e)",
		ErrNoConvergence, e.Iterations, e.Estimate, e.Residual)
}

func (e *ConvergenceError) Unwrap() error { return ErrNoConvergence }

// RunError tags an ensemble member's failure with its run index.
type RunError struct {
	Run     int
	Wrapped error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %d: %v", e.Run, e.Wrapped)
}

func (e *RunError) Unwrap() error { return e.Wrapped }
