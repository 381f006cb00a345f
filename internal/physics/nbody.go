package physics

import (
	"math"

	"github.com/san-kum/orbsim/internal/dynamo"
)

// DefaultEpsilon is the squared separation at or below which a pair of
// bodies is treated as coincident and exerts no force.
const DefaultEpsilon = 1e-4

// Gravity evaluates pairwise Newtonian gravitation.
type Gravity struct {
	G       float64
	Epsilon float64
}

// NewGravity returns a Gravity for the constant g with the default
// coincidence threshold.
func NewGravity(g float64) *Gravity {
	return &Gravity{G: g, Epsilon: DefaultEpsilon}
}

// Accelerations writes into out the acceleration of every body caused by all
// others. out must be as long as pos and mass; it is overwritten.
func (gr *Gravity) Accelerations(pos []dynamo.Vec3, mass []float64, out []dynamo.Vec3) {
	n := len(pos)
	for i := 0; i < n; i++ {
		out[i] = dynamo.Vec3{}
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}

			d := pos[j].Sub(pos[i])
			r2 := dynamo.LenSqr(d)
			if r2 <= gr.Epsilon {
				continue
			}

			out[i] = out[i].Add(d.Normalize().Mul(gr.G * mass[j] / r2))
		}
	}
}

// KineticEnergy returns sum(m v^2 / 2).
func KineticEnergy(vel []dynamo.Vec3, mass []float64) float64 {
	ke := 0.0
	for i := range vel {
		ke += 0.5 * mass[i] * dynamo.LenSqr(vel[i])
	}
	return ke
}

// PotentialEnergy returns the pairwise gravitational potential energy.
// Coincident pairs (squared separation at or below Epsilon) are skipped,
// matching Accelerations.
func (gr *Gravity) PotentialEnergy(pos []dynamo.Vec3, mass []float64) float64 {
	pe := 0.0
	for i := range pos {
		for j := i + 1; j < len(pos); j++ {
			r2 := dynamo.LenSqr(pos[j].Sub(pos[i]))
			if r2 <= gr.Epsilon {
				continue
			}
			pe -= gr.G * mass[i] * mass[j] / math.Sqrt(r2)
		}
	}
	return pe
}

// TotalEnergy returns kinetic plus potential energy.
func (gr *Gravity) TotalEnergy(pos, vel []dynamo.Vec3, mass []float64) float64 {
	return KineticEnergy(vel, mass) + gr.PotentialEnergy(pos, mass)
}

func Momentum(vel []dynamo.Vec3, mass []float64) dynamo.Vec3 {
	var p dynamo.Vec3
	for i := range vel {
		p = p.Add(vel[i].Mul(mass[i]))
	}
	return p
}

func AngularMomentum(pos, vel []dynamo.Vec3, mass []float64) dynamo.Vec3 {
	var l dynamo.Vec3
	for i := range pos {
		l = l.Add(pos[i].Cross(vel[i]).Mul(mass[i]))
	}
	return l
}
