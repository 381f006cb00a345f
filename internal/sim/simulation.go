package sim

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/physics"
	"github.com/san-kum/orbsim/internal/registry"
)

// Options configures New. The zero value gives sim units, the default driver
// pacing, real-time scale and the system clock.
type Options struct {
	Name      string
	Units     string
	Driver    DriverConfig
	TimeScale *float64
	Clock     Clock
	Logger    *log.Logger
}

// Simulation owns one isolated universe: its bodies, its time-scale and the
// driver that advances them. Any number may exist side by side.
type Simulation struct {
	Name      string
	Units     physics.Units
	Gravity   *physics.Gravity
	Registry  *registry.Registry
	TimeScale *TimeScale
	Driver    *Driver

	logger *log.Logger
}

func New(specs []dynamo.BodySpec, opts Options) (*Simulation, error) {
	units, err := physics.LookupUnits(opts.Units)
	if err != nil {
		return nil, err
	}

	reg, err := registry.New(specs)
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}

	dcfg := opts.Driver
	if dcfg == (DriverConfig{}) {
		dcfg = DefaultDriverConfig()
	}

	scale := 1.0
	if opts.TimeScale != nil {
		scale = *opts.TimeScale
	}
	if math.IsNaN(scale) || scale < 0 {
		return nil, fmt.Errorf("time scale must not be negative or NaN, got %f: %w", scale, dynamo.ErrParameterBounds)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Name != "" {
		logger = logger.With("sim", opts.Name)
	}

	g := physics.NewGravity(units.G)
	ts := NewTimeScale(scale)

	drv, err := NewDriver(reg, ts, g, opts.Clock, dcfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("simulation built", "bodies", reg.Len(), "units", units.Name, "g", units.G, "step", dcfg.Step)

	return &Simulation{
		Name:      opts.Name,
		Units:     units,
		Gravity:   g,
		Registry:  reg,
		TimeScale: ts,
		Driver:    drv,
		logger:    logger,
	}, nil
}

// FromConfig builds a simulation from a validated scenario.
func FromConfig(cfg *config.Config, clock Clock, logger *log.Logger) (*Simulation, error) {
	specs, err := cfg.Specs()
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", cfg.Name, err)
	}

	scale := cfg.TimeScale
	return New(specs, Options{
		Name:  cfg.Name,
		Units: cfg.Units,
		Driver: DriverConfig{
			Step:     cfg.Step,
			MaxFrame: cfg.MaxFrame,
			Yield:    cfg.Yield,
		},
		TimeScale: &scale,
		Clock:     clock,
		Logger:    logger,
	})
}

// Start runs the driver in the background until Stop or ctx cancellation.
func (s *Simulation) Start(ctx context.Context) error {
	return s.Driver.Start(ctx)
}

func (s *Simulation) Stop() { s.Driver.Stop() }

// Energy returns the total mechanical energy of a frame under this
// simulation's gravity.
func (s *Simulation) Energy(f *registry.Frame) float64 {
	pos, vel, mass := Split(f)
	return s.Gravity.TotalEnergy(pos, vel, mass)
}

// Split unpacks a frame into the parallel slices the physics helpers take.
func Split(f *registry.Frame) (pos, vel []dynamo.Vec3, mass []float64) {
	n := len(f.Bodies)
	pos = make([]dynamo.Vec3, n)
	vel = make([]dynamo.Vec3, n)
	mass = make([]float64, n)
	for i, b := range f.Bodies {
		pos[i] = b.Position
		vel[i] = b.Velocity
		mass[i] = b.Mass
	}
	return pos, vel, mass
}
