package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chainsim/internal/dynamo"
	"github.com/san-kum/chainsim/internal/integrators"
	"github.com/san-kum/chainsim/internal/physics"
	"github.com/san-kum/chainsim/internal/sim"
)

const (
	DefaultDt    = 0.1
	DefaultTicks = 2000
)

var ErrInvalid = errors.New("config: invalid scenario")

// Config describes a scenario: universe settings plus the initial chain,
// listed from the pivot outwards.
type Config struct {
	Method  string      `yaml:"method"`
	Gravity float64     `yaml:"gravity"`
	Speed   float64     `yaml:"speed"`
	Dt      float64     `yaml:"dt"`
	Ticks   int         `yaml:"ticks"`
	Seed    uint64      `yaml:"seed,omitempty"`
	MaxBobs int         `yaml:"max_bobs,omitempty"`
	Bobs    []BobConfig `yaml:"bobs"`
}

// BobConfig is one bob and the rod hanging it from its parent. Zero
// values fall back to the universe defaults; a missing color is drawn
// from the palette.
type BobConfig struct {
	Theta    float64 `yaml:"theta"`
	Omega    float64 `yaml:"omega"`
	Length   float64 `yaml:"length,omitempty"`
	RodMass  float64 `yaml:"rod_mass,omitempty"`
	RodColor uint32  `yaml:"rod_color,omitempty"`
	Mass     float64 `yaml:"mass,omitempty"`
	Radius   int     `yaml:"radius,omitempty"`
	Color    *uint32 `yaml:"color,omitempty"`
}

func DefaultConfig() *Config {
	red, blue := uint32(0xff0000), uint32(0x0000ff)
	return &Config{
		Method:  integrators.MethodEuler.String(),
		Gravity: sim.DefaultGravity,
		Speed:   sim.DefaultSpeed,
		Dt:      DefaultDt,
		Ticks:   DefaultTicks,
		Bobs: []BobConfig{
			{Theta: math.Pi / 2, Mass: 100, Color: &red},
			{Theta: math.Pi / 2, Mass: 100, Color: &blue},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	cfg.Bobs = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Bobs == nil {
		cfg.Bobs = DefaultConfig().Bobs
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Bobs = make([]BobConfig, len(c.Bobs))
	for i, b := range c.Bobs {
		if b.Color != nil {
			color := *b.Color
			b.Color = &color
		}
		out.Bobs[i] = b
	}
	return &out
}

func (c *Config) Validate() error {
	if _, err := integrators.ParseMethod(c.Method); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !finite(c.Gravity) || !finite(c.Speed) || !finite(c.Dt) {
		return fmt.Errorf("%w: gravity, speed and dt must be finite", ErrInvalid)
	}
	if c.Ticks < 0 || c.MaxBobs < 0 {
		return fmt.Errorf("%w: ticks and max_bobs must not be negative", ErrInvalid)
	}
	for i, b := range c.Bobs {
		if !finite(b.Theta) || !finite(b.Omega) {
			return fmt.Errorf("%w: bob %d has a non-finite state", ErrInvalid, i)
		}
		if !finite(b.Length) {
			return fmt.Errorf("%w: bob %d has a non-finite length", ErrInvalid, i)
		}
		// negative rod lengths are allowed and mirror the bob through its parent
		if b.Mass < 0 || b.RodMass < 0 || b.Radius < 0 {
			return fmt.Errorf("%w: bob %d has a negative dimension", ErrInvalid, i)
		}
	}
	return nil
}

// NewUniverse builds a universe in the configured state. Bob positions are
// laid out from the pivot so the chain starts consistent with its angles.
func (c *Config) NewUniverse() (*sim.Universe, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	method, _ := integrators.ParseMethod(c.Method)

	u := sim.NewEmpty()
	if err := u.SetMethod(method); err != nil {
		return nil, err
	}
	if c.MaxBobs > 0 {
		u.SetMaxBobs(c.MaxBobs)
	}
	if c.Seed != 0 {
		u.SetColorSource(sim.NewSeededColors(c.Seed))
	}
	u.SetGravity(c.Gravity)
	u.SetSpeed(c.Speed)
	u.SetStep(c.Dt)

	var pos dynamo.Vec2
	for _, b := range c.Bobs {
		length := orDefault(b.Length, sim.DefaultLength)
		rodMass := orDefault(b.RodMass, sim.DefaultMass)
		rodColor := b.RodColor
		if rodColor == 0 {
			rodColor = sim.DefaultRodColor
		}
		radius := b.Radius
		if radius == 0 {
			radius = sim.DefaultRadius
		}
		var color uint32
		if b.Color != nil {
			color = *b.Color
		} else {
			color = u.NextColor()
		}

		pos = pos.Add(dynamo.V2(length*math.Sin(b.Theta), length*math.Cos(b.Theta)))
		u.AddBob(physics.NewBob(pos, b.Omega, b.Theta,
			physics.NewLink(length, rodMass, rodColor),
			radius, orDefault(b.Mass, sim.DefaultMass), color))
	}
	return u, nil
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
