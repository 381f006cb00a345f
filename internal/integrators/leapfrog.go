package integrators

import (
	"fmt"

	"github.com/san-kum/orbsim/internal/dynamo"
)

// Shadow is the integrator's private working copy of the system, index
// aligned with the registry it was built from.
type Shadow struct {
	Positions     []dynamo.Vec3
	Velocities    []dynamo.Vec3
	Accelerations []dynamo.Vec3
	Masses        []float64
}

// NewShadow copies pos, vel and mass into a fresh Shadow. Accelerations
// start at zero; call Leapfrog.Init before the first Step.
func NewShadow(pos, vel []dynamo.Vec3, mass []float64) (*Shadow, error) {
	n := len(mass)
	if len(pos) != n || len(vel) != n {
		return nil, fmt.Errorf("shadow(%d, %d, %d): %w", len(pos), len(vel), n, dynamo.ErrDimensionMismatch)
	}

	s := &Shadow{
		Positions:     make([]dynamo.Vec3, n),
		Velocities:    make([]dynamo.Vec3, n),
		Accelerations: make([]dynamo.Vec3, n),
		Masses:        make([]float64, n),
	}
	copy(s.Positions, pos)
	copy(s.Velocities, vel)
	copy(s.Masses, mass)
	return s, nil
}

func (s *Shadow) Len() int { return len(s.Masses) }

// Clone returns a deep copy.
func (s *Shadow) Clone() *Shadow {
	c, _ := NewShadow(s.Positions, s.Velocities, s.Masses)
	copy(c.Accelerations, s.Accelerations)
	return c
}

// Leapfrog is the kick-drift-kick velocity Verlet scheme. It is symplectic,
// so orbital energy oscillates within a bound instead of drifting.
type Leapfrog struct {
	field dynamo.ForceField
	next  []dynamo.Vec3
}

func NewLeapfrog(field dynamo.ForceField) *Leapfrog {
	return &Leapfrog{field: field}
}

// Init computes the acceleration set for the shadow's current positions.
func (l *Leapfrog) Init(s *Shadow) {
	l.field.Accelerations(s.Positions, s.Masses, s.Accelerations)
}

// Step advances s by exactly dt. s.Accelerations must hold the accelerations
// for s.Positions, as left by Init or the previous Step.
func (l *Leapfrog) Step(s *Shadow, dt float64) {
	n := s.Len()
	if len(l.next) != n {
		l.next = make([]dynamo.Vec3, n)
	}
	halfDt := dt * 0.5

	for i := 0; i < n; i++ {
		s.Velocities[i] = s.Velocities[i].Add(s.Accelerations[i].Mul(halfDt))
	}

	for i := 0; i < n; i++ {
		s.Positions[i] = s.Positions[i].Add(s.Velocities[i].Mul(dt))
	}

	l.field.Accelerations(s.Positions, s.Masses, l.next)

	for i := 0; i < n; i++ {
		s.Velocities[i] = s.Velocities[i].Add(l.next[i].Mul(halfDt))
	}

	s.Accelerations, l.next = l.next, s.Accelerations
}
