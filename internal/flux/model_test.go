package flux

import (
	"math"
	"testing"

	"github.com/nishantsule/Planetary-Energy-Balance/internal/ebm"
)

func defaultModel() *Model {
	return New(ebm.DefaultParams())
}

func TestIncoming(t *testing.T) {
	m := defaultModel()

	tests := []struct {
		albedo   float64
		expected float64
	}{
		{0.0, 0.25},
		{0.3, 0.175},
		{0.7, 0.075},
		{1.0, 0.0},
	}

	for _, tt := range tests {
		got := m.Incoming(tt.albedo)
		if math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("Incoming(%.2f) = %f, expected %f", tt.albedo, got, tt.expected)
		}
	}
}

func TestOutgoingScaling(t *testing.T) {
	m := defaultModel()

	// quartic: doubling T multiplies the flux by 16
	ratio := m.Outgoing(400) / m.Outgoing(200)
	if math.Abs(ratio-16) > 1e-9 {
		t.Errorf("expected T^4 scaling ratio 16, got %f", ratio)
	}

	if m.Outgoing(0) != 0 {
		t.Errorf("Outgoing(0) should be 0, got %f", m.Outgoing(0))
	}
}

func TestAlbedoEquilibriumMonotoneAndBounded(t *testing.T) {
	m := defaultModel()
	p := m.Params()

	prev := math.Inf(1)
	for temp := 100.0; temp <= 400.0; temp += 0.5 {
		a := m.AlbedoEquilibrium(temp)
		if a > prev {
			t.Fatalf("albedo equilibrium increased at T=%.1f: %f > %f", temp, a, prev)
		}
		if a < p.WaterAlbedo || a > p.IceAlbedo {
			t.Fatalf("albedo equilibrium out of [%.2f, %.2f] at T=%.1f: %f",
				p.WaterAlbedo, p.IceAlbedo, temp, a)
		}
		prev = a
	}
}

func TestAlbedoEquilibriumLimits(t *testing.T) {
	m := defaultModel()
	p := m.Params()

	if got := m.AlbedoEquilibrium(-1e6); math.Abs(got-p.IceAlbedo) > 1e-9 {
		t.Errorf("cold limit: expected %f, got %f", p.IceAlbedo, got)
	}
	if got := m.AlbedoEquilibrium(1e6); math.Abs(got-p.WaterAlbedo) > 1e-9 {
		t.Errorf("warm limit: expected %f, got %f", p.WaterAlbedo, got)
	}
	// midpoint of the step sits at the transition temperature
	mid := (p.IceAlbedo + p.WaterAlbedo) / 2
	if got := m.AlbedoEquilibrium(p.TransitionTemp); math.Abs(got-mid) > 1e-12 {
		t.Errorf("at Tc: expected %f, got %f", mid, got)
	}
}

func TestNetFluxNearWarmEquilibrium(t *testing.T) {
	m := defaultModel()

	// the warm steady state of the default parameters sits close to 288 K
	if f := m.NetFlux(288.0); math.Abs(f) > 1e-3 {
		t.Errorf("net flux at 288 K should be near zero, got %e", f)
	}
	// well inside the cold branch the planet still gains energy at 220 K
	if f := m.NetFlux(220.0); f <= 0 {
		t.Errorf("net flux at 220 K should be positive, got %e", f)
	}
}

func TestDeriveMatchesComponents(t *testing.T) {
	m := defaultModel()
	s := ebm.State{Temp: 250.0, Albedo: 0.4}

	d := m.Derive(s)
	if d.Temp != m.TempDerivative(s.Temp, s.Albedo) {
		t.Error("Derive temperature component disagrees with TempDerivative")
	}
	if d.Albedo != m.AlbedoDerivative(s.Temp, s.Albedo) {
		t.Error("Derive albedo component disagrees with AlbedoDerivative")
	}
}

func TestAlbedoDerivativeRelaxation(t *testing.T) {
	m := defaultModel()

	// on the equilibrium curve the albedo does not move
	temp := 270.0
	if d := m.AlbedoDerivative(temp, m.AlbedoEquilibrium(temp)); math.Abs(d) > 1e-15 {
		t.Errorf("expected zero derivative on the equilibrium curve, got %e", d)
	}
	// below equilibrium it relaxes upward, above it downward
	if d := m.AlbedoDerivative(temp, 0.1); d <= 0 {
		t.Errorf("expected positive relaxation below equilibrium, got %e", d)
	}
	if d := m.AlbedoDerivative(temp, 0.9); d >= 0 {
		t.Errorf("expected negative relaxation above equilibrium, got %e", d)
	}
}

func TestSeriesMatchScalar(t *testing.T) {
	m := defaultModel()
	temps := []float64{200, 240, 265, 290, 320}

	nf := m.NetFluxSeries(temps)
	ae := m.AlbedoEquilibriumSeries(temps)
	if len(nf) != len(temps) || len(ae) != len(temps) {
		t.Fatalf("series length mismatch")
	}
	for i, temp := range temps {
		if nf[i] != m.NetFlux(temp) {
			t.Errorf("NetFluxSeries[%d] disagrees with scalar", i)
		}
		if ae[i] != m.AlbedoEquilibrium(temp) {
			t.Errorf("AlbedoEquilibriumSeries[%d] disagrees with scalar", i)
		}
	}
}
