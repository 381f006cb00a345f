package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/integrators"
)

const (
	DefaultPerturbation = 1e-8
	DefaultRenormEvery  = 10
)

// LyapunovOptions configures LyapunovExponent. Zero fields take defaults:
// step 0.01, duration 50, perturbation 1e-8, renormalising every 10 steps.
type LyapunovOptions struct {
	Body         int
	Step         float64
	Duration     float64
	Perturbation float64
	RenormEvery  int
}

func (o *LyapunovOptions) defaults() {
	if o.Step == 0 {
		o.Step = 0.01
	}
	if o.Duration == 0 {
		o.Duration = 50
	}
	if o.Perturbation == 0 {
		o.Perturbation = DefaultPerturbation
	}
	if o.RenormEvery == 0 {
		o.RenormEvery = DefaultRenormEvery
	}
}

// LyapunovExponent estimates the largest Lyapunov exponent of the system
// described by specs under field.
//
// A copy of the system with body opts.Body displaced by opts.Perturbation
// along x is integrated in lock-step with the original. Every RenormEvery
// steps the phase-space separation d is measured, ln(d/d0) accumulated, and
// the copy pulled back to distance d0 along the same direction.
// λ ≈ Σ ln(d/d0) / t.
func LyapunovExponent(field dynamo.ForceField, specs []dynamo.BodySpec, opts LyapunovOptions) (float64, error) {
	opts.defaults()
	if len(specs) == 0 {
		return 0, dynamo.ErrNoBodies
	}
	if opts.Body < 0 || opts.Body >= len(specs) {
		return 0, fmt.Errorf("body index %d out of range [0, %d): %w", opts.Body, len(specs), dynamo.ErrParameterBounds)
	}
	if opts.Step <= 0 || opts.Duration < opts.Step || opts.Perturbation <= 0 || opts.RenormEvery < 0 {
		return 0, fmt.Errorf("step %g, duration %g, perturbation %g, renorm %d: %w",
			opts.Step, opts.Duration, opts.Perturbation, opts.RenormEvery, dynamo.ErrParameterBounds)
	}

	n := len(specs)
	pos := make([]dynamo.Vec3, n)
	vel := make([]dynamo.Vec3, n)
	mass := make([]float64, n)
	for i, s := range specs {
		if err := s.Validate(); err != nil {
			return 0, err
		}
		pos[i], vel[i], mass[i] = s.Position, s.Velocity, s.Mass
	}

	x, err := integrators.NewShadow(pos, vel, mass)
	if err != nil {
		return 0, err
	}
	xp := x.Clone()
	xp.Positions[opts.Body][0] += opts.Perturbation

	lf := integrators.NewLeapfrog(field)
	lfp := integrators.NewLeapfrog(field)
	lf.Init(x)
	lfp.Init(xp)

	d0 := separation(x, xp)
	steps := int(math.Ceil(opts.Duration / opts.Step))

	var sumLog float64
	for k := 1; k <= steps; k++ {
		lf.Step(x, opts.Step)
		lfp.Step(xp, opts.Step)

		if k%opts.RenormEvery != 0 && k != steps {
			continue
		}
		d := separation(x, xp)
		if d == 0 {
			continue
		}
		sumLog += math.Log(d / d0)
		renormalise(x, xp, d0/d)
		lfp.Init(xp)
	}

	return sumLog / (float64(steps) * opts.Step), nil
}

// separation is the Euclidean distance between a and b in phase space.
func separation(a, b *integrators.Shadow) float64 {
	var sum float64
	for i := range a.Positions {
		sum += dynamo.LenSqr(b.Positions[i].Sub(a.Positions[i]))
		sum += dynamo.LenSqr(b.Velocities[i].Sub(a.Velocities[i]))
	}
	return math.Sqrt(sum)
}

func renormalise(ref, p *integrators.Shadow, scale float64) {
	for i := range ref.Positions {
		p.Positions[i] = ref.Positions[i].Add(p.Positions[i].Sub(ref.Positions[i]).Mul(scale))
		p.Velocities[i] = ref.Velocities[i].Add(p.Velocities[i].Sub(ref.Velocities[i]).Mul(scale))
	}
}
