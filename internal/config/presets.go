package config

import "sort"

// Presets are named starting scenarios. Physics stays at the defaults unless a
// preset overrides it; noise presets bump the intensities into the range where
// transitions between the warm and cold branches become visible.
var Presets = map[string]*Config{
	"warm-start": {
		InitState: InitState{Temp: 290.0, Albedo: 0.30},
		Run:       RunConfig{Dt: 0.01, Steps: 500, Runs: 100, Duration: 6.0, Samples: 500},
	},
	"cold-start": {
		InitState: InitState{Temp: 235.0, Albedo: 0.70},
		Run:       RunConfig{Dt: 0.01, Steps: 500, Runs: 100, Duration: 6.0, Samples: 500},
	},
	"thaw": {
		InitState: InitState{Temp: 240.0, Albedo: 0.35},
		Run:       RunConfig{Dt: 0.012, Steps: 500, Runs: 100, Duration: 6.0, Samples: 500},
	},
	"noisy-warm": {
		Physics:   PhysicsConfig{NoiseTemp: 2.0, NoiseAlbedo: 0.05},
		InitState: InitState{Temp: 290.0, Albedo: 0.30},
		Run:       RunConfig{Dt: 0.01, Steps: 2000, Runs: 200, Duration: 20.0, Samples: 2000},
	},
	"noisy-cold": {
		Physics:   PhysicsConfig{NoiseTemp: 2.0, NoiseAlbedo: 0.05},
		InitState: InitState{Temp: 235.0, Albedo: 0.70},
		Run:       RunConfig{Dt: 0.01, Steps: 2000, Runs: 200, Duration: 20.0, Samples: 2000},
	},
}

// GetPreset returns a full config for the named preset, or nil if unknown.
// Unset physics fields fall back to the defaults.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	if p.Physics.NoiseTemp != 0 {
		cfg.Physics.NoiseTemp = p.Physics.NoiseTemp
	}
	if p.Physics.NoiseAlbedo != 0 {
		cfg.Physics.NoiseAlbedo = p.Physics.NoiseAlbedo
	}
	cfg.InitState = p.InitState
	cfg.Run.Dt = p.Run.Dt
	cfg.Run.Steps = p.Run.Steps
	cfg.Run.Runs = p.Run.Runs
	cfg.Run.Duration = p.Run.Duration
	cfg.Run.Samples = p.Run.Samples
	return cfg
}

// ListPresets returns the preset names in stable order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
