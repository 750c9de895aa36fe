package ebm

import "math"

// Params holds the physical constants of the energy balance model. Values are
// fixed at configuration time and never mutated during a run.
type Params struct {
	SolarConstant   float64 // S0, W/m^2
	RefTemperature  float64 // T0, K, sets the time scale of the temperature equation
	Emissivity      float64 // effective longwave emissivity
	StefanBoltzmann float64 // sigma, W/m^2/K^4
	IceAlbedo       float64 // albedo of an ice-covered planet
	WaterAlbedo     float64 // albedo of an ice-free planet
	TransitionTemp  float64 // Tc, K, center of the ice-albedo transition
	TransitionWidth float64 // wT, K, width of the transition
	RelaxationRate  float64 // delta, albedo relaxation rate relative to the thermal time scale
	NoiseTemp       float64 // eta_T, temperature noise intensity
	NoiseAlbedo     float64 // eta_a, albedo noise intensity
}

// DefaultParams returns present-day Earth parameters with noise switched off.
func DefaultParams() Params {
	return Params{
		SolarConstant:   1368.0,
		RefTemperature:  288.0,
		Emissivity:      0.61,
		StefanBoltzmann: 5.67e-8,
		IceAlbedo:       0.7,
		WaterAlbedo:     0.3,
		TransitionTemp:  265.0,
		TransitionWidth: 20.0,
		RelaxationRate:  1e-2,
	}
}

// State is the two-dimensional model state. Temperature and albedo occupy named
// slots so the two cannot be confused by index order. Albedo is conceptually in
// [0,1] and temperature positive, but neither is clamped: large noise can push a
// run outside the physical range, and the model lets it.
type State struct {
	Temp   float64
	Albedo float64
}

// IsValid reports whether both components are finite.
func (s State) IsValid() bool {
	return !math.IsNaN(s.Temp) && !math.IsInf(s.Temp, 0) &&
		!math.IsNaN(s.Albedo) && !math.IsInf(s.Albedo, 0)
}

// Trajectory is one integration run sampled on a fixed time grid. Times and
// States always have equal length. A trajectory is immutable once produced.
type Trajectory struct {
	Times  []float64
	States []State
}

// Len returns the number of samples.
func (tr Trajectory) Len() int { return len(tr.Times) }

// Final returns the last sampled state.
func (tr Trajectory) Final() State {
	return tr.States[len(tr.States)-1]
}

// Temperatures copies the temperature component into a flat slice.
func (tr Trajectory) Temperatures() []float64 {
	out := make([]float64, len(tr.States))
	for i, s := range tr.States {
		out[i] = s.Temp
	}
	return out
}

// Albedos copies the albedo component into a flat slice.
func (tr Trajectory) Albedos() []float64 {
	out := make([]float64, len(tr.States))
	for i, s := range tr.States {
		out[i] = s.Albedo
	}
	return out
}

// Ensemble is a set of independent noisy trajectories sharing the same
// parameters, time grid and initial state. Each run owns its trajectory
// exclusively; consumers treat the whole structure as read-only.
type Ensemble struct {
	Runs    []Trajectory
	Initial State
	Dt      float64
	Seed    int64
}
