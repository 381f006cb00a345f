package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/registry"
)

var ErrStalled = errors.New("sim: time scale is zero, simulated time cannot advance")

// RunOptions bounds a headless run. At least one of Duration (simulated
// seconds) and Wall (real time fed to the driver) must be set; the run ends
// when either is reached.
type RunOptions struct {
	Duration    float64
	Wall        time.Duration
	Frame       time.Duration
	SampleEvery int
}

// SampleFunc receives the published frame at the start, every SampleEvery
// frames and at the end of a run. The frame is reused between calls.
type SampleFunc func(f *registry.Frame) error

// Result summarises a headless run.
type Result struct {
	Name    string
	Scale   float64
	Frames  int
	Steps   uint64
	SimTime float64
	Wall    time.Duration
	Final   registry.Frame
}

// RunHeadless drives the simulation with a virtual clock: each frame credits
// exactly opts.Frame of real time, so the outcome depends only on the
// scenario, the scale and the options.
func (s *Simulation) RunHeadless(ctx context.Context, opts RunOptions, sample SampleFunc) (*Result, error) {
	if s.Driver.Running() {
		return nil, ErrDriverRunning
	}
	if opts.Duration <= 0 && opts.Wall <= 0 {
		return nil, fmt.Errorf("headless run needs a duration or wall budget: %w", dynamo.ErrParameterBounds)
	}
	if opts.Frame <= 0 {
		return nil, fmt.Errorf("frame must be positive, got %v: %w", opts.Frame, dynamo.ErrParameterBounds)
	}
	if limit := s.Driver.Config().MaxFrame; opts.Frame > limit {
		return nil, fmt.Errorf("frame %v exceeds the driver's max frame %v: %w", opts.Frame, limit, dynamo.ErrParameterBounds)
	}
	if opts.SampleEvery <= 0 {
		opts.SampleEvery = 1
	}
	if opts.Wall <= 0 && s.TimeScale.Load() == 0 {
		return nil, ErrStalled
	}

	res := &Result{Name: s.Name, Scale: s.TimeScale.Load()}
	frame := &registry.Frame{}

	emit := func() error {
		if sample == nil {
			return nil
		}
		s.Registry.Snapshot(frame)
		return sample(frame)
	}

	if err := emit(); err != nil {
		return nil, err
	}

	s.logger.Debug("headless run", "duration", opts.Duration, "wall", opts.Wall, "frame", opts.Frame, "scale", res.Scale)

	var fed time.Duration
	for !s.done(opts, fed) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		elapsed := opts.Frame
		if opts.Wall > 0 && opts.Wall-fed < elapsed {
			elapsed = opts.Wall - fed
		}
		s.Driver.Advance(elapsed)
		fed += elapsed
		res.Frames++

		if res.Frames%opts.SampleEvery == 0 {
			if err := emit(); err != nil {
				return nil, err
			}
		}
	}

	if res.Frames%opts.SampleEvery != 0 {
		if err := emit(); err != nil {
			return nil, err
		}
	}

	res.Steps = s.Driver.Steps()
	res.SimTime = s.Driver.SimTime()
	res.Wall = fed
	s.Registry.Snapshot(&res.Final)

	s.logger.Info("run complete", "frames", res.Frames, "steps", res.Steps, "sim_time", res.SimTime)
	return res, nil
}

func (s *Simulation) done(opts RunOptions, fed time.Duration) bool {
	if opts.Wall > 0 && fed >= opts.Wall {
		return true
	}
	return opts.Duration > 0 && s.Driver.SimTime() >= opts.Duration
}
