package analysis

import (
	"math"
	"sort"

	"github.com/nishantsule/Planetary-Energy-Balance/internal/ebm"
	"github.com/nishantsule/Planetary-Energy-Balance/internal/flux"
	"github.com/nishantsule/Planetary-Energy-Balance/internal/solve"
)

// stabilityStep is the finite-difference width for the net flux slope.
const stabilityStep = 0.01

// rootSeparation is the minimum distance (K) between distinct equilibria.
const rootSeparation = 0.5

// Equilibrium is a steady state of the net flux with its linear stability.
// A root where the net flux slope is negative restores perturbations and is
// stable; a positive slope marks the unstable middle branch.
type Equilibrium struct {
	Temp   float64
	Stable bool
}

// Equilibria collects the distinct steady states reachable from the given
// starting guesses, sorted by temperature. Guesses that fail to converge are
// skipped; duplicates landing on the same root are merged.
func Equilibria(m *flux.Model, guesses []float64, opts ...solve.Option) []Equilibrium {
	roots := make([]float64, 0, len(guesses))
	for _, g := range guesses {
		root, err := solve.FindRoot(m, g, opts...)
		if err != nil {
			continue
		}
		dup := false
		for _, r := range roots {
			if math.Abs(r-root) < rootSeparation {
				dup = true
				break
			}
		}
		if !dup {
			roots = append(roots, root)
		}
	}
	sort.Float64s(roots)

	eq := make([]Equilibrium, len(roots))
	for i, r := range roots {
		slope := (m.NetFlux(r+stabilityStep) - m.NetFlux(r-stabilityStep)) / (2 * stabilityStep)
		eq[i] = Equilibrium{Temp: r, Stable: slope < 0}
	}
	return eq
}

// SweepPoint records the equilibria found at one swept parameter value.
type SweepPoint struct {
	SolarConstant float64
	Equilibria    []Equilibrium
}

// SolarSweep varies the solar constant across [min, max] and records the
// steady states at each value. The ice-albedo feedback folds the equilibrium
// curve: over a middle range of insolation the cold and warm branches coexist
// with an unstable branch between them, which is the hysteresis loop of the
// snowball transition.
func SolarSweep(base ebm.Params, min, max float64, steps int, guesses []float64) []SweepPoint {
	if steps < 2 {
		steps = 2
	}
	out := make([]SweepPoint, 0, steps)
	delta := (max - min) / float64(steps-1)

	for i := 0; i < steps; i++ {
		p := base
		p.SolarConstant = min + float64(i)*delta
		out = append(out, SweepPoint{
			SolarConstant: p.SolarConstant,
			Equilibria:    Equilibria(flux.New(p), guesses),
		})
	}
	return out
}
