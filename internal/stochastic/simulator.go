package stochastic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/nishantsule/Planetary-Energy-Balance/internal/ebm"
	"github.com/nishantsule/Planetary-Energy-Balance/internal/flux"
)

// Config controls one ensemble invocation.
type Config struct {
	Start float64 // t0 of the uniform grid
	Dt    float64 // step size, must be positive
	Steps int     // grid points per run, must be >= 2
	Runs  int     // independent realizations, must be >= 1
	Seed  int64   // base seed; run k draws from a source seeded Seed+k
}

func (c Config) validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("stochastic: dt must be positive, got %g", c.Dt)
	}
	if c.Steps < 2 {
		return fmt.Errorf("stochastic: need at least 2 steps, got %d", c.Steps)
	}
	if c.Runs < 1 {
		return fmt.Errorf("stochastic: need at least 1 run, got %d", c.Runs)
	}
	return nil
}

// Simulator produces ensembles of noisy trajectories by the Euler-Maruyama
// scheme. Each state component receives an independent Gaussian increment of
// variance dt per step, so the diffusion converges to Brownian motion as dt
// shrinks. A Simulator is stateless between calls and safe for concurrent use.
type Simulator struct {
	model *flux.Model
}

func New(m *flux.Model) *Simulator {
	return &Simulator{model: m}
}

// Run computes cfg.Runs independent realizations from the same initial state.
// Runs execute on parallel goroutines; each owns its trajectory and its random
// source, seeded cfg.Seed+k, so the ensemble is reproducible for a fixed seed
// and runs share no random stream.
//
// A run whose state goes non-finite is aborted and reported; the remaining
// runs still complete. The returned ensemble holds every finished trajectory
// (failed slots are zero-length), and the error joins all per-run failures so
// the caller decides whether to discard, re-seed, or abort.
func (s *Simulator) Run(ctx context.Context, initial ebm.State, cfg Config) (ebm.Ensemble, error) {
	if err := cfg.validate(); err != nil {
		return ebm.Ensemble{}, err
	}

	ens := ebm.Ensemble{
		Runs:    make([]ebm.Trajectory, cfg.Runs),
		Initial: initial,
		Dt:      cfg.Dt,
		Seed:    cfg.Seed,
	}
	errs := make([]error, cfg.Runs)

	var wg sync.WaitGroup
	for k := 0; k < cfg.Runs; k++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			ens.Runs[idx], errs[idx] = s.run(ctx, initial, cfg, cfg.Seed+int64(idx))
		}(k)
	}
	wg.Wait()

	var failures []error
	for k, err := range errs {
		if err != nil {
			failures = append(failures, &ebm.RunError{Run: k, Wrapped: err})
		}
	}
	return ens, errors.Join(failures...)
}

// run advances a single realization. Steps are strictly sequential: state i
// depends only on state i-1.
func (s *Simulator) run(ctx context.Context, initial ebm.State, cfg Config, seed int64) (ebm.Trajectory, error) {
	noise := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(uint64(seed))}
	p := s.model.Params()
	sqrtDt := math.Sqrt(cfg.Dt)

	tr := ebm.Trajectory{
		Times:  make([]float64, cfg.Steps),
		States: make([]ebm.State, cfg.Steps),
	}
	x := initial
	tr.Times[0] = cfg.Start
	tr.States[0] = x

	for i := 1; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return ebm.Trajectory{}, ctx.Err()
		default:
		}

		// the noise draw happens even when its intensity is zero, so the
		// per-run streams stay aligned across noise settings
		x = ebm.State{
			Temp: x.Temp + s.model.TempDerivative(x.Temp, x.Albedo)*cfg.Dt +
				p.NoiseTemp*sqrtDt*noise.Rand(),
			Albedo: x.Albedo + s.model.AlbedoDerivative(x.Temp, x.Albedo)*cfg.Dt +
				p.NoiseAlbedo*sqrtDt*noise.Rand(),
		}
		if !x.IsValid() {
			return ebm.Trajectory{}, &ebm.DivergenceError{Step: i, Time: tr.Times[i-1] + cfg.Dt, Last: x}
		}
		tr.Times[i] = cfg.Start + float64(i)*cfg.Dt
		tr.States[i] = x
	}

	return tr, nil
}
