package integrate

import (
	"fmt"
	"math"

	"github.com/nishantsule/Planetary-Energy-Balance/internal/ebm"
	"github.com/nishantsule/Planetary-Energy-Balance/internal/flux"
)

// maxSubstep bounds the internal RK4 step so accuracy does not depend on how
// coarsely the caller samples the trajectory. The temperature equation's
// relaxation time is order one in scaled units, so 0.05 keeps the local error
// well below the sampling resolution anywhere near the transition.
const maxSubstep = 0.05

// Integrate advances the coupled (T, a) system across the requested time grid
// using classic fourth-order Runge-Kutta and returns one sample per grid
// point, the first being the initial state. times must be strictly increasing
// with at least two points. A non-finite intermediate state aborts the run
// with a divergence error; there is no other failure mode.
func Integrate(m *flux.Model, initial ebm.State, times []float64) (ebm.Trajectory, error) {
	if len(times) < 2 {
		return ebm.Trajectory{}, fmt.Errorf("integrate: need at least 2 time points, got %d", len(times))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return ebm.Trajectory{}, fmt.Errorf("integrate: time points must be strictly increasing (index %d)", i)
		}
	}

	tr := ebm.Trajectory{
		Times:  make([]float64, len(times)),
		States: make([]ebm.State, len(times)),
	}
	copy(tr.Times, times)

	x := initial
	tr.States[0] = x

	for i := 1; i < len(times); i++ {
		span := times[i] - times[i-1]
		n := int(math.Ceil(span / maxSubstep))
		if n < 1 {
			n = 1
		}
		h := span / float64(n)

		t := times[i-1]
		for k := 0; k < n; k++ {
			x = step(m, x, h)
			t += h
			if !x.IsValid() {
				return ebm.Trajectory{}, &ebm.DivergenceError{Step: i, Time: t, Last: x}
			}
		}
		tr.States[i] = x
	}

	return tr, nil
}

// step performs one RK4 update of size h. The system is autonomous, so the
// stage times never enter the derivative.
func step(m *flux.Model, x ebm.State, h float64) ebm.State {
	k1 := m.Derive(x)
	k2 := m.Derive(ebm.State{
		Temp:   x.Temp + h*0.5*k1.Temp,
		Albedo: x.Albedo + h*0.5*k1.Albedo,
	})
	k3 := m.Derive(ebm.State{
		Temp:   x.Temp + h*0.5*k2.Temp,
		Albedo: x.Albedo + h*0.5*k2.Albedo,
	})
	k4 := m.Derive(ebm.State{
		Temp:   x.Temp + h*k3.Temp,
		Albedo: x.Albedo + h*k3.Albedo,
	})

	h6 := h / 6.0
	return ebm.State{
		Temp:   x.Temp + h6*(k1.Temp+2*k2.Temp+2*k3.Temp+k4.Temp),
		Albedo: x.Albedo + h6*(k1.Albedo+2*k2.Albedo+2*k3.Albedo+k4.Albedo),
	}
}

// Grid returns n evenly spaced time points spanning [t0, t1].
func Grid(t0, t1 float64, n int) []float64 {
	pts := make([]float64, n)
	if n == 1 {
		pts[0] = t0
		return pts
	}
	step := (t1 - t0) / float64(n-1)
	for i := range pts {
		pts[i] = t0 + float64(i)*step
	}
	return pts
}
