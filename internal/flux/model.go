package flux

import (
	"math"

	"github.com/nishantsule/Planetary-Energy-Balance/internal/ebm"
)

// Model evaluates the radiative fluxes and state derivatives of the energy
// balance model. All methods are pure functions of the stored parameters and
// their arguments, total over the reals: no clamping, no error returns.
//
// Fluxes are normalized by S0, so incoming and outgoing are dimensionless and
// directly comparable. The temperature equation is scaled by the reference
// temperature T0, which puts time in units of the planetary thermal relaxation
// time (years, for Earth-like parameters).
type Model struct {
	p ebm.Params
}

func New(p ebm.Params) *Model {
	return &Model{p: p}
}

// Params returns the parameter set the model was built with.
func (m *Model) Params() ebm.Params { return m.p }

// Incoming returns the absorbed shortwave flux (1-a)/4 for a planetary
// albedo a. The factor 4 is the sphere-to-disk geometry ratio.
func (m *Model) Incoming(albedo float64) float64 {
	return (1 - albedo) / 4
}

// Outgoing returns the emitted longwave flux eps*sigma*T^4/S0.
func (m *Model) Outgoing(temp float64) float64 {
	t2 := temp * temp
	return m.p.Emissivity * m.p.StefanBoltzmann / m.p.SolarConstant * t2 * t2
}

// AlbedoEquilibrium returns the albedo the surface relaxes toward at
// temperature T: a smooth tanh step from IceAlbedo (cold) down to WaterAlbedo
// (warm), centered at TransitionTemp with width TransitionWidth. Monotonically
// decreasing and differentiable everywhere.
func (m *Model) AlbedoEquilibrium(temp float64) float64 {
	mid := (m.p.IceAlbedo + m.p.WaterAlbedo) / 2
	amp := (m.p.IceAlbedo - m.p.WaterAlbedo) / 2
	return mid - amp*math.Tanh((temp-m.p.TransitionTemp)/(m.p.TransitionWidth/2))
}

// TempDerivative returns dT/dt: the radiative imbalance scaled by T0.
func (m *Model) TempDerivative(temp, albedo float64) float64 {
	return m.p.RefTemperature * (m.Incoming(albedo) - m.Outgoing(temp))
}

// AlbedoDerivative returns da/dt: first-order relaxation toward the
// instantaneous equilibrium albedo at rate delta.
func (m *Model) AlbedoDerivative(temp, albedo float64) float64 {
	return m.p.RelaxationRate * (m.AlbedoEquilibrium(temp) - albedo)
}

// NetFlux returns the radiative imbalance in the fast-albedo limit, where the
// albedo sits exactly on its equilibrium curve. Its roots are the steady
// states of the coupled system; the ice-albedo feedback gives it up to three.
func (m *Model) NetFlux(temp float64) float64 {
	return m.Incoming(m.AlbedoEquilibrium(temp)) - m.Outgoing(temp)
}

// Derive packs both state derivatives, for the integrators.
func (m *Model) Derive(s ebm.State) ebm.State {
	return ebm.State{
		Temp:   m.TempDerivative(s.Temp, s.Albedo),
		Albedo: m.AlbedoDerivative(s.Temp, s.Albedo),
	}
}

// NetFluxSeries evaluates NetFlux over a temperature grid.
func (m *Model) NetFluxSeries(temps []float64) []float64 {
	out := make([]float64, len(temps))
	for i, t := range temps {
		out[i] = m.NetFlux(t)
	}
	return out
}

// AlbedoEquilibriumSeries evaluates AlbedoEquilibrium over a temperature grid.
func (m *Model) AlbedoEquilibriumSeries(temps []float64) []float64 {
	out := make([]float64, len(temps))
	for i, t := range temps {
		out[i] = m.AlbedoEquilibrium(t)
	}
	return out
}
