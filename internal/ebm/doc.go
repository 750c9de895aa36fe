// Package ebm defines the shared types of the planetary energy balance model:
//
//   - [Params]: physical constants, fixed per run
//   - [State]: the (temperature, albedo) pair
//   - [Trajectory]: one run sampled on a time grid
//   - [Ensemble]: many independent noisy trajectories
//
// The numerical packages (flux, integrate, solve, stochastic, stats) build on
// these types and never mutate a trajectory after producing it.
package ebm
