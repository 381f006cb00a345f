package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/integrators"
	"github.com/san-kum/orbsim/internal/registry"
)

const (
	DefaultStep     = 0.01
	DefaultMaxFrame = 50 * time.Millisecond
	DefaultYield    = time.Millisecond
)

var ErrDriverRunning = errors.New("sim: driver already running")

// DriverConfig fixes the pacing of a Driver.
type DriverConfig struct {
	// Step is the fixed integration step in simulated seconds.
	Step float64
	// MaxFrame caps the real time credited per iteration, before scaling.
	MaxFrame time.Duration
	// Yield is slept between loop iterations; zero only yields the processor.
	Yield time.Duration
}

func DefaultDriverConfig() DriverConfig {
	return DriverConfig{
		Step:     DefaultStep,
		MaxFrame: DefaultMaxFrame,
		Yield:    DefaultYield,
	}
}

func (c DriverConfig) validate() error {
	if !(c.Step > 0) || math.IsInf(c.Step, 1) {
		return fmt.Errorf("step must be positive and finite, got %f: %w", c.Step, dynamo.ErrParameterBounds)
	}
	if c.MaxFrame <= 0 {
		return fmt.Errorf("max frame must be positive, got %v: %w", c.MaxFrame, dynamo.ErrParameterBounds)
	}
	if c.Yield < 0 {
		return fmt.Errorf("yield must not be negative, got %v: %w", c.Yield, dynamo.ErrParameterBounds)
	}
	return nil
}

// Driver converts variable wall-clock time into whole fixed integration
// steps and publishes the result to the registry once per iteration.
//
// Advance, SimTime, Steps and Accumulator belong to the goroutine running the
// loop; call them directly only while the driver is not started.
type Driver struct {
	reg    *registry.Registry
	scale  *TimeScale
	clock  Clock
	cfg    DriverConfig
	logger *log.Logger

	shadow *integrators.Shadow
	lf     *integrators.Leapfrog

	accumulator float64
	steps       uint64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDriver snapshots reg into a private shadow state and computes the
// initial accelerations.
func NewDriver(reg *registry.Registry, scale *TimeScale, field dynamo.ForceField, clock Clock, cfg DriverConfig, logger *log.Logger) (*Driver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	n := reg.Len()
	pos := make([]dynamo.Vec3, n)
	vel := make([]dynamo.Vec3, n)
	if err := reg.State(pos, vel); err != nil {
		return nil, err
	}
	shadow, err := integrators.NewShadow(pos, vel, reg.Masses())
	if err != nil {
		return nil, err
	}

	lf := integrators.NewLeapfrog(field)
	lf.Init(shadow)

	return &Driver{
		reg:    reg,
		scale:  scale,
		clock:  clock,
		cfg:    cfg,
		logger: logger,
		shadow: shadow,
		lf:     lf,
	}, nil
}

// Advance credits elapsed real time, runs as many fixed steps as the
// accumulator allows, publishes, and returns the number of steps taken.
// Negative elapsed time counts as zero and anything above MaxFrame is capped.
func (d *Driver) Advance(elapsed time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > d.cfg.MaxFrame {
		elapsed = d.cfg.MaxFrame
	}

	d.accumulator += elapsed.Seconds() * d.scale.Load()

	n := 0
	for d.accumulator >= d.cfg.Step {
		d.lf.Step(d.shadow, d.cfg.Step)
		d.accumulator -= d.cfg.Step
		d.steps++
		n++
	}

	d.publish()
	return n
}

func (d *Driver) publish() {
	// lengths are fixed at construction, so this cannot fail
	_ = d.reg.Publish(d.shadow.Positions, d.shadow.Velocities, d.SimTime(), d.steps)
}

// Run drives the loop until ctx is done. It returns ctx's error.
func (d *Driver) Run(ctx context.Context) error {
	return d.run(ctx, d.clock.Now())
}

// run credits real time from last onwards.
func (d *Driver) run(ctx context.Context, last time.Time) error {
	d.logger.Debug("driver loop starting", "bodies", d.shadow.Len(), "step", d.cfg.Step)

	for {
		select {
		case <-ctx.Done():
			d.logger.Debug("driver loop stopped", "steps", d.steps, "sim_time", d.SimTime())
			return ctx.Err()
		default:
		}

		now := d.clock.Now()
		d.Advance(now.Sub(last))
		last = now

		if d.cfg.Yield > 0 {
			time.Sleep(d.cfg.Yield)
		} else {
			runtime.Gosched()
		}
	}
}

// Start launches the loop on its own goroutine. Real time is credited from
// the moment Start is called. A loop that already exited because its parent
// context was cancelled does not count as running.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.alive() {
		return ErrDriverRunning
	}
	d.reset()

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	last := d.clock.Now()

	go func(done chan struct{}) {
		defer close(done)
		_ = d.run(ctx, last)
	}(d.done)

	d.logger.Info("simulation started", "bodies", d.shadow.Len())
	return nil
}

// Stop signals the loop and waits for it to exit. Safe to call repeatedly
// and on a driver that was never started.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.done == nil {
		return
	}
	d.reset()

	d.logger.Info("simulation stopped", "steps", d.steps, "sim_time", d.SimTime())
}

// Running reports whether the loop goroutine is active.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.alive()
}

// alive and reset require d.mu.
func (d *Driver) alive() bool {
	if d.done == nil {
		return false
	}
	select {
	case <-d.done:
		return false
	default:
		return true
	}
}

func (d *Driver) reset() {
	if d.done == nil {
		return
	}
	d.cancel()
	<-d.done
	d.done = nil
	d.cancel = nil
}

// SimTime is the simulated time integrated so far.
func (d *Driver) SimTime() float64 { return float64(d.steps) * d.cfg.Step }

func (d *Driver) Steps() uint64 { return d.steps }

// Accumulator is the scaled real time not yet converted into steps.
func (d *Driver) Accumulator() float64 { return d.accumulator }

func (d *Driver) Config() DriverConfig { return d.cfg }
