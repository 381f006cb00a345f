package metrics

import (
	"math"

	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/physics"
	"github.com/san-kum/orbsim/internal/registry"
)

// MomentumDrift is the largest change in total linear momentum seen since the
// first frame. Pairwise gravity conserves it, so anything above rounding
// noise points at an asymmetric force evaluation.
type MomentumDrift struct {
	name    string
	cols    columns
	initial dynamo.Vec3
	max     float64
	samples int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(f *registry.Frame) {
	m.cols.load(f)
	p := physics.Momentum(m.cols.vel, m.cols.mass)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.max = math.Max(m.max, p.Sub(m.initial).Len())
}

func (m *MomentumDrift) Value() float64 { return m.max }

func (m *MomentumDrift) Reset() {
	m.initial = dynamo.Vec3{}
	m.max = 0
	m.samples = 0
}
