// Package analysis characterizes the steady-state structure of the energy
// balance model:
//
//   - [Equilibria]: distinct net-flux roots with linear stability
//   - [SolarSweep]: equilibrium branches across a range of insolation
//
// The sweep exposes the fold bifurcations of the ice-albedo feedback: between
// the two folds the frozen and temperate branches coexist, which is what makes
// noise-driven transitions between them possible.
package analysis
