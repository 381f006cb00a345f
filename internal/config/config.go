package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/physics"
)

const (
	DefaultStep        = 0.01
	DefaultMaxFrame    = 50 * time.Millisecond
	DefaultYield       = time.Millisecond
	DefaultFrame       = 16 * time.Millisecond
	DefaultTimeScale   = 1.0
	DefaultDuration    = 60.0
	DefaultSampleEvery = 10
)

// Config describes a scenario: the bodies and how the driver paces them.
type Config struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Units       string        `yaml:"units"`
	Step        float64       `yaml:"step"`
	MaxFrame    time.Duration `yaml:"max_frame"`
	Yield       time.Duration `yaml:"yield"`
	TimeScale   float64       `yaml:"time_scale"`
	Frame       time.Duration `yaml:"frame"`
	Duration    float64       `yaml:"duration"`
	SampleEvery int           `yaml:"sample_every"`
	Bodies      []BodyConfig  `yaml:"bodies"`
}

// BodyConfig is one body. When Orbit is set, the body's velocity is replaced
// by a circular orbital velocity around the body at that index (which must
// come earlier in the list), added to that body's own velocity.
type BodyConfig struct {
	Name     string     `yaml:"name"`
	Mass     float64    `yaml:"mass"`
	Radius   float64    `yaml:"radius,omitempty"`
	Position [3]float64 `yaml:"position,flow"`
	Velocity [3]float64 `yaml:"velocity,flow"`
	Orbit    *int       `yaml:"orbit,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:        "custom",
		Units:       physics.DefaultUnits,
		Step:        DefaultStep,
		MaxFrame:    DefaultMaxFrame,
		Yield:       DefaultYield,
		TimeScale:   DefaultTimeScale,
		Frame:       DefaultFrame,
		Duration:    DefaultDuration,
		SampleEvery: DefaultSampleEvery,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML scenario on top of DefaultConfig and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
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

// Validate checks everything that can be checked without building bodies.
func (c *Config) Validate() error {
	if _, err := physics.LookupUnits(c.Units); err != nil {
		return err
	}
	if !(c.Step > 0) || math.IsInf(c.Step, 1) {
		return fmt.Errorf("step must be positive and finite, got %f: %w", c.Step, dynamo.ErrParameterBounds)
	}
	if c.MaxFrame <= 0 {
		return fmt.Errorf("max_frame must be positive, got %v: %w", c.MaxFrame, dynamo.ErrParameterBounds)
	}
	if c.Yield < 0 {
		return fmt.Errorf("yield must not be negative, got %v: %w", c.Yield, dynamo.ErrParameterBounds)
	}
	if c.Frame <= 0 {
		return fmt.Errorf("frame must be positive, got %v: %w", c.Frame, dynamo.ErrParameterBounds)
	}
	if c.Frame > c.MaxFrame {
		return fmt.Errorf("frame %v exceeds max_frame %v: %w", c.Frame, c.MaxFrame, dynamo.ErrParameterBounds)
	}
	if !(c.TimeScale >= 0) || math.IsInf(c.TimeScale, 1) {
		return fmt.Errorf("time_scale must be finite and not negative, got %f: %w", c.TimeScale, dynamo.ErrParameterBounds)
	}
	if c.SampleEvery <= 0 {
		return fmt.Errorf("sample_every must be positive, got %d: %w", c.SampleEvery, dynamo.ErrParameterBounds)
	}
	if len(c.Bodies) == 0 {
		return dynamo.ErrNoBodies
	}
	for i, b := range c.Bodies {
		if b.Orbit != nil && (*b.Orbit < 0 || *b.Orbit >= i) {
			return fmt.Errorf("body %d (%s): orbit index %d must refer to an earlier body: %w", i, b.Name, *b.Orbit, dynamo.ErrParameterBounds)
		}
	}
	return nil
}

// Specs resolves the bodies into construction tuples, filling in automatic
// orbital velocities. Body-level validation (mass, finiteness) happens when
// the registry is built.
func (c *Config) Specs() ([]dynamo.BodySpec, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	units, _ := physics.LookupUnits(c.Units)

	specs := make([]dynamo.BodySpec, len(c.Bodies))
	for i, b := range c.Bodies {
		specs[i] = dynamo.BodySpec{
			Name:     b.Name,
			Mass:     b.Mass,
			Radius:   b.Radius,
			Position: dynamo.Vec3(b.Position),
			Velocity: dynamo.Vec3(b.Velocity),
		}
		if b.Orbit != nil {
			parent := specs[*b.Orbit]
			v, err := orbitalVelocity(units.G, parent, specs[i].Position)
			if err != nil {
				return nil, fmt.Errorf("body %d (%s): %w", i, b.Name, err)
			}
			specs[i].Velocity = v
		}
	}
	return specs, nil
}

var up = dynamo.Vec3{0, 1, 0}

// orbitalVelocity returns the velocity for a circular orbit around parent in
// the plane perpendicular to the y axis (or the x axis when the separation is
// vertical).
func orbitalVelocity(g float64, parent dynamo.BodySpec, pos dynamo.Vec3) (dynamo.Vec3, error) {
	d := pos.Sub(parent.Position)
	r := d.Len()
	if r == 0 {
		return dynamo.Vec3{}, fmt.Errorf("orbit at zero distance: %w", dynamo.ErrParameterBounds)
	}
	if parent.Mass <= 0 {
		return dynamo.Vec3{}, fmt.Errorf("orbit around massless body: %w", dynamo.ErrInvalidMass)
	}

	dir := d.Cross(up)
	if dynamo.LenSqr(dir) < 1e-12*r*r {
		dir = d.Cross(dynamo.Vec3{1, 0, 0})
	}
	v := physics.CircularVelocity(g, parent.Mass, r)
	return parent.Velocity.Add(dir.Normalize().Mul(v)), nil
}

// Clone returns a deep copy so presets are never mutated by callers.
func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = make([]BodyConfig, len(c.Bodies))
	for i, b := range c.Bodies {
		out.Bodies[i] = b
		if b.Orbit != nil {
			o := *b.Orbit
			out.Bodies[i].Orbit = &o
		}
	}
	return &out
}
