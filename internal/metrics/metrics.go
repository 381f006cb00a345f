package metrics

import (
	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/registry"
)

// Metric accumulates a scalar over a sequence of published frames.
type Metric interface {
	Name() string
	Observe(f *registry.Frame)
	Value() float64
	Reset()
}

// Collect feeds one frame to every metric.
func Collect(f *registry.Frame, ms ...Metric) {
	for _, m := range ms {
		m.Observe(f)
	}
}

// Values maps each metric's name to its current value.
func Values(ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// columns holds reusable per-body slices so metrics don't allocate per frame.
type columns struct {
	pos, vel []dynamo.Vec3
	mass     []float64
}

func (c *columns) load(f *registry.Frame) {
	c.pos, c.vel, c.mass = c.pos[:0], c.vel[:0], c.mass[:0]
	for _, b := range f.Bodies {
		c.pos = append(c.pos, b.Position)
		c.vel = append(c.vel, b.Velocity)
		c.mass = append(c.mass, b.Mass)
	}
}
