package dynamo

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is the double-precision 3-vector used for every position, velocity
// and acceleration in the engine.
type Vec3 = mgl64.Vec3

// BodyID identifies a body for the lifetime of the process.
type BodyID uint32

var nextID atomic.Uint32

// NextID hands out a fresh BodyID. IDs are never reused.
func NextID() BodyID {
	return BodyID(nextID.Add(1))
}

// BodySpec is the construction tuple for a body.
type BodySpec struct {
	Name     string
	Mass     float64
	Radius   float64
	Position Vec3
	Velocity Vec3
}

// Validate reports whether the spec describes a physically meaningful body.
func (s BodySpec) Validate() error {
	if math.IsNaN(s.Mass) || math.IsInf(s.Mass, 0) || s.Mass <= 0 {
		return fmt.Errorf("body %q: mass %g: %w", s.Name, s.Mass, ErrInvalidMass)
	}
	if math.IsNaN(s.Radius) || s.Radius < 0 {
		return fmt.Errorf("body %q: radius %g: %w", s.Name, s.Radius, ErrParameterBounds)
	}
	if !IsFinite(s.Position) || !IsFinite(s.Velocity) {
		return fmt.Errorf("body %q: %w", s.Name, ErrInvalidState)
	}
	return nil
}

// Body is a point mass. Mass and Radius never change after creation; Position
// and Velocity are written only by the simulation driver's publish step.
type Body struct {
	ID       BodyID
	Name     string
	Mass     float64
	Radius   float64
	Position Vec3
	Velocity Vec3
}

// SurfaceGravity derives the gravitational acceleration at the body's
// surface for the gravitational constant g. Zero when Radius is zero.
func (b Body) SurfaceGravity(g float64) float64 {
	if b.Radius == 0 {
		return 0
	}
	return g * b.Mass / (b.Radius * b.Radius)
}

func (b Body) String() string {
	return fmt.Sprintf("%s#%d m=%.4g p=[%.3f %.3f %.3f] v=[%.3f %.3f %.3f]",
		b.Name, b.ID, b.Mass,
		b.Position[0], b.Position[1], b.Position[2],
		b.Velocity[0], b.Velocity[1], b.Velocity[2])
}

// IsFinite reports whether no component of v is NaN or Inf.
func IsFinite(v Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// LenSqr returns the squared length of v.
func LenSqr(v Vec3) float64 {
	return v.Dot(v)
}

// ForceField maps positions and masses to one acceleration per body.
type ForceField interface {
	Accelerations(pos []Vec3, mass []float64, out []Vec3)
}
