package stochastic

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/nishantsule/Planetary-Energy-Balance/internal/ebm"
	"github.com/nishantsule/Planetary-Energy-Balance/internal/flux"
	"github.com/nishantsule/Planetary-Energy-Balance/internal/integrate"
)

func noisyParams(etaT, etaA float64) ebm.Params {
	p := ebm.DefaultParams()
	p.NoiseTemp = etaT
	p.NoiseAlbedo = etaA
	return p
}

func TestRunShape(t *testing.T) {
	sim := New(flux.New(noisyParams(1.0, 0.01)))
	initial := ebm.State{Temp: 288, Albedo: 0.3}

	ens, err := sim.Run(context.Background(), initial, Config{Dt: 0.01, Steps: 100, Runs: 7, Seed: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(ens.Runs) != 7 {
		t.Fatalf("expected 7 runs, got %d", len(ens.Runs))
	}
	for k, run := range ens.Runs {
		if run.Len() != 100 {
			t.Fatalf("run %d: expected 100 samples, got %d", k, run.Len())
		}
		if run.States[0] != initial {
			t.Errorf("run %d does not start from the initial state", k)
		}
		if run.Times[0] != 0 {
			t.Errorf("run %d grid does not start at t0", k)
		}
		if math.Abs(run.Times[99]-0.99) > 1e-12 {
			t.Errorf("run %d grid endpoint wrong: %f", k, run.Times[99])
		}
	}
}

func TestRunConfigValidation(t *testing.T) {
	sim := New(flux.New(noisyParams(1.0, 0.01)))
	initial := ebm.State{Temp: 288, Albedo: 0.3}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Steps: 10, Runs: 1}},
		{"negative dt", Config{Dt: -0.01, Steps: 10, Runs: 1}},
		{"one step", Config{Dt: 0.01, Steps: 1, Runs: 1}},
		{"zero runs", Config{Dt: 0.01, Steps: 10, Runs: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sim.Run(context.Background(), initial, tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSeedReproducibility(t *testing.T) {
	sim := New(flux.New(noisyParams(2.0, 0.05)))
	initial := ebm.State{Temp: 288, Albedo: 0.3}
	cfg := Config{Dt: 0.01, Steps: 200, Runs: 20, Seed: 42}

	a, err := sim.Run(context.Background(), initial, cfg)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	b, err := sim.Run(context.Background(), initial, cfg)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	for k := range a.Runs {
		for i := range a.Runs[k].States {
			if a.Runs[k].States[i] != b.Runs[k].States[i] {
				t.Fatalf("run %d step %d differs between identically seeded ensembles", k, i)
			}
		}
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	sim := New(flux.New(noisyParams(2.0, 0.05)))
	initial := ebm.State{Temp: 288, Albedo: 0.3}

	a, err := sim.Run(context.Background(), initial, Config{Dt: 0.01, Steps: 50, Runs: 1, Seed: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	b, err := sim.Run(context.Background(), initial, Config{Dt: 0.01, Steps: 50, Runs: 1, Seed: 2})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if a.Runs[0].Final() == b.Runs[0].Final() {
		t.Error("different seeds produced identical trajectories")
	}
}

func TestRunsAreIndependent(t *testing.T) {
	sim := New(flux.New(noisyParams(2.0, 0.05)))
	initial := ebm.State{Temp: 288, Albedo: 0.3}

	ens, err := sim.Run(context.Background(), initial, Config{Dt: 0.01, Steps: 50, Runs: 10, Seed: 7})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// no two runs may share a noise stream
	for i := 0; i < len(ens.Runs); i++ {
		for j := i + 1; j < len(ens.Runs); j++ {
			if ens.Runs[i].Final() == ens.Runs[j].Final() {
				t.Errorf("runs %d and %d ended identically, streams look shared", i, j)
			}
		}
	}
}

// With both noise intensities zero the scheme is plain forward Euler and must
// track the deterministic integrator up to discretization differences.
func TestZeroNoiseMatchesDeterministic(t *testing.T) {
	p := ebm.DefaultParams() // noise already zero
	m := flux.New(p)
	sim := New(m)
	initial := ebm.State{Temp: 240, Albedo: 0.35}

	steps := 6001
	dt := 0.001
	ens, err := sim.Run(context.Background(), initial, Config{Dt: dt, Steps: steps, Runs: 2, Seed: 3})
	if err != nil {
		t.Fatalf("stochastic run failed: %v", err)
	}

	// zero noise: every run is the same deterministic path
	if ens.Runs[0].Final() != ens.Runs[1].Final() {
		t.Error("zero-noise runs disagree with each other")
	}

	tr, err := integrate.Integrate(m, initial, integrate.Grid(0, float64(steps-1)*dt, 601))
	if err != nil {
		t.Fatalf("deterministic run failed: %v", err)
	}

	if diff := math.Abs(ens.Runs[0].Final().Temp - tr.Final().Temp); diff > 0.1 {
		t.Errorf("Euler and RK4 endpoints differ by %.4f K", diff)
	}
	if diff := math.Abs(ens.Runs[0].Final().Albedo - tr.Final().Albedo); diff > 1e-3 {
		t.Errorf("Euler and RK4 albedos differ by %.6f", diff)
	}
}

// Halving dt while doubling the step count holds the simulated horizon fixed;
// with variance-in-dt noise scaling the spread of the final temperatures must
// stay put. An increment scaled by dt instead of sqrt(dt) fails this.
func TestNoiseVarianceScaling(t *testing.T) {
	initial := ebm.State{Temp: 288, Albedo: 0.304}
	sim := New(flux.New(noisyParams(2.0, 0.0)))

	variance := func(dt float64, steps int, seed int64) float64 {
		ens, err := sim.Run(context.Background(), initial, Config{Dt: dt, Steps: steps, Runs: 600, Seed: seed})
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		finals := make([]float64, len(ens.Runs))
		for k, run := range ens.Runs {
			finals[k] = run.Final().Temp
		}
		return stat.Variance(finals, nil)
	}

	// one model year in each case
	vCoarse := variance(0.01, 101, 11)
	vFine := variance(0.005, 201, 12)

	ratio := vCoarse / vFine
	if ratio < 0.6 || ratio > 1.6 {
		t.Errorf("final-time variance shifted with step size: coarse=%.4f fine=%.4f ratio=%.2f",
			vCoarse, vFine, ratio)
	}
}

// The spread of per-run means shrinks roughly as 1/sqrt(N) in estimator error,
// so larger ensembles pin the ensemble mean more tightly to the truth.
func TestEnsembleMeanStabilizes(t *testing.T) {
	initial := ebm.State{Temp: 288, Albedo: 0.304}
	sim := New(flux.New(noisyParams(2.0, 0.0)))

	meanOfFinals := func(runs int, seed int64) float64 {
		ens, err := sim.Run(context.Background(), initial, Config{Dt: 0.01, Steps: 101, Runs: runs, Seed: seed})
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		finals := make([]float64, len(ens.Runs))
		for k, run := range ens.Runs {
			finals[k] = run.Final().Temp
		}
		return stat.Mean(finals, nil)
	}

	// the ensemble mean must sit near the deterministic fixed point, and the
	// big ensemble must sit at least as close as the small one up to noise
	small := math.Abs(meanOfFinals(20, 100) - 288)
	big := math.Abs(meanOfFinals(2000, 200) - 288)
	if big > 1.0 {
		t.Errorf("large-ensemble mean drifted %.3f K from the fixed point", big)
	}
	if big > small+0.5 {
		t.Errorf("mean error grew with ensemble size: n=20 err=%.3f, n=2000 err=%.3f", small, big)
	}
}

func TestContextCancellation(t *testing.T) {
	sim := New(flux.New(noisyParams(1.0, 0.0)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Run(ctx, ebm.State{Temp: 288, Albedo: 0.3}, Config{Dt: 0.01, Steps: 1000, Runs: 2, Seed: 1})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in the error chain, got %v", err)
	}
}

func TestDivergentRunSurfaces(t *testing.T) {
	p := noisyParams(0, 0)
	p.Emissivity = -50 // runaway source term
	sim := New(flux.New(p))

	ens, err := sim.Run(context.Background(), ebm.State{Temp: 400, Albedo: 0.3},
		Config{Dt: 0.5, Steps: 500, Runs: 3, Seed: 1})
	if err == nil {
		t.Fatal("expected divergence to surface")
	}
	if !errors.Is(err, ebm.ErrNumericalDivergence) {
		t.Errorf("expected ErrNumericalDivergence, got %v", err)
	}

	var re *ebm.RunError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RunError in the chain, got %v", err)
	}
	// the ensemble container still exists for the caller's retry decision
	if len(ens.Runs) != 3 {
		t.Errorf("expected 3 run slots, got %d", len(ens.Runs))
	}
}
