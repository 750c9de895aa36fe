package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nishantsule/Planetary-Energy-Balance/internal/ebm"
)

const (
	DefaultDt       = 0.01
	DefaultSteps    = 500
	DefaultRuns     = 100
	DefaultDuration = 6.0
	DefaultSamples  = 500
	DefaultInitTemp = 240.0
	DefaultInitAlb  = 0.35
)

type Config struct {
	Physics   PhysicsConfig `yaml:"physics"`
	InitState InitState     `yaml:"init_state"`
	Run       RunConfig     `yaml:"run"`
}

type PhysicsConfig struct {
	SolarConstant   float64 `yaml:"solar_constant"`
	RefTemperature  float64 `yaml:"ref_temperature"`
	Emissivity      float64 `yaml:"emissivity"`
	StefanBoltzmann float64 `yaml:"stefan_boltzmann"`
	IceAlbedo       float64 `yaml:"ice_albedo"`
	WaterAlbedo     float64 `yaml:"water_albedo"`
	TransitionTemp  float64 `yaml:"transition_temp"`
	TransitionWidth float64 `yaml:"transition_width"`
	RelaxationRate  float64 `yaml:"relaxation_rate"`
	NoiseTemp       float64 `yaml:"noise_temp"`
	NoiseAlbedo     float64 `yaml:"noise_albedo"`
}

type InitState struct {
	Temp   float64 `yaml:"temp"`
	Albedo float64 `yaml:"albedo"`
}

type RunConfig struct {
	Dt       float64 `yaml:"dt"`       // ensemble step size, years
	Steps    int     `yaml:"steps"`    // ensemble grid points
	Runs     int     `yaml:"runs"`     // ensemble size
	Seed     int64   `yaml:"seed"`     // base noise seed
	Duration float64 `yaml:"duration"` // deterministic horizon, years
	Samples  int     `yaml:"samples"`  // deterministic grid points
}

func DefaultConfig() *Config {
	p := ebm.DefaultParams()
	return &Config{
		Physics: PhysicsConfig{
			SolarConstant:   p.SolarConstant,
			RefTemperature:  p.RefTemperature,
			Emissivity:      p.Emissivity,
			StefanBoltzmann: p.StefanBoltzmann,
			IceAlbedo:       p.IceAlbedo,
			WaterAlbedo:     p.WaterAlbedo,
			TransitionTemp:  p.TransitionTemp,
			TransitionWidth: p.TransitionWidth,
			RelaxationRate:  p.RelaxationRate,
		},
		InitState: InitState{Temp: DefaultInitTemp, Albedo: DefaultInitAlb},
		Run: RunConfig{
			Dt:       DefaultDt,
			Steps:    DefaultSteps,
			Runs:     DefaultRuns,
			Duration: DefaultDuration,
			Samples:  DefaultSamples,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Physics.SolarConstant <= 0 {
		return fmt.Errorf("config: solar_constant must be positive")
	}
	if c.Physics.RefTemperature <= 0 {
		return fmt.Errorf("config: ref_temperature must be positive")
	}
	if c.Physics.TransitionWidth == 0 {
		return fmt.Errorf("config: transition_width must be nonzero")
	}
	if c.Run.Dt <= 0 {
		return fmt.Errorf("config: run.dt must be positive")
	}
	if c.Run.Steps < 2 {
		return fmt.Errorf("config: run.steps must be at least 2")
	}
	if c.Run.Runs < 1 {
		return fmt.Errorf("config: run.runs must be at least 1")
	}
	return nil
}

// Params assembles the physical parameter record consumed by the model.
func (c *Config) Params() ebm.Params {
	return ebm.Params{
		SolarConstant:   c.Physics.SolarConstant,
		RefTemperature:  c.Physics.RefTemperature,
		Emissivity:      c.Physics.Emissivity,
		StefanBoltzmann: c.Physics.StefanBoltzmann,
		IceAlbedo:       c.Physics.IceAlbedo,
		WaterAlbedo:     c.Physics.WaterAlbedo,
		TransitionTemp:  c.Physics.TransitionTemp,
		TransitionWidth: c.Physics.TransitionWidth,
		RelaxationRate:  c.Physics.RelaxationRate,
		NoiseTemp:       c.Physics.NoiseTemp,
		NoiseAlbedo:     c.Physics.NoiseAlbedo,
	}
}

// Initial returns the configured initial state.
func (c *Config) Initial() ebm.State {
	return ebm.State{Temp: c.InitState.Temp, Albedo: c.InitState.Albedo}
}
