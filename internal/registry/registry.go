package registry

import (
	"fmt"
	"sync"

	"github.com/san-kum/orbsim/internal/dynamo"
)

// Frame is a consistent view of every body at a single publish.
type Frame struct {
	Bodies  []dynamo.Body
	SimTime float64
	Steps   uint64
	Seq     uint64
}

// Relative returns the body positions expressed relative to body ref.
// An out-of-range ref leaves positions unchanged.
func (f Frame) Relative(ref int) []dynamo.Vec3 {
	out := make([]dynamo.Vec3, len(f.Bodies))
	var origin dynamo.Vec3
	if ref >= 0 && ref < len(f.Bodies) {
		origin = f.Bodies[ref].Position
	}
	for i, b := range f.Bodies {
		out[i] = b.Position.Sub(origin)
	}
	return out
}

// Registry is the fixed, ordered set of bodies in a simulation. The driver is
// the only writer; any number of readers may take snapshots concurrently.
// Publish and Snapshot hold one lock for a whole bulk copy, so a reader sees
// either the previous or the next frame, never a mix.
type Registry struct {
	mu      sync.RWMutex
	bodies  []dynamo.Body
	simTime float64
	steps   uint64
	seq     uint64
}

// New validates specs and builds a registry. It fails fast on the first
// invalid body.
func New(specs []dynamo.BodySpec) (*Registry, error) {
	if len(specs) == 0 {
		return nil, dynamo.ErrNoBodies
	}

	bodies := make([]dynamo.Body, len(specs))
	for i, s := range specs {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		bodies[i] = dynamo.Body{
			ID:       dynamo.NextID(),
			Name:     s.Name,
			Mass:     s.Mass,
			Radius:   s.Radius,
			Position: s.Position,
			Velocity: s.Velocity,
		}
	}

	return &Registry{bodies: bodies}, nil
}

// Len is fixed for the registry's lifetime.
func (r *Registry) Len() int { return len(r.bodies) }

// Masses returns a copy of the body masses in registry order.
func (r *Registry) Masses() []float64 {
	out := make([]float64, len(r.bodies))
	for i := range r.bodies {
		out[i] = r.bodies[i].Mass
	}
	return out
}

// State copies the current positions and velocities into pos and vel,
// which must have length Len().
func (r *Registry) State(pos, vel []dynamo.Vec3) error {
	if len(pos) != len(r.bodies) || len(vel) != len(r.bodies) {
		return fmt.Errorf("state(%d, %d) for %d bodies: %w", len(pos), len(vel), len(r.bodies), dynamo.ErrDimensionMismatch)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.bodies {
		pos[i] = r.bodies[i].Position
		vel[i] = r.bodies[i].Velocity
	}
	return nil
}

// Publish replaces every position and velocity in one bulk copy.
func (r *Registry) Publish(pos, vel []dynamo.Vec3, simTime float64, steps uint64) error {
	if len(pos) != len(r.bodies) || len(vel) != len(r.bodies) {
		return fmt.Errorf("publish(%d, %d) for %d bodies: %w", len(pos), len(vel), len(r.bodies), dynamo.ErrDimensionMismatch)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.bodies {
		r.bodies[i].Position = pos[i]
		r.bodies[i].Velocity = vel[i]
	}
	r.simTime = simTime
	r.steps = steps
	r.seq++
	return nil
}

// Snapshot copies the latest published frame. The body slice of dst is
// reused when it has enough capacity, so a reader polling every frame can
// avoid allocating.
func (r *Registry) Snapshot(dst *Frame) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cap(dst.Bodies) < len(r.bodies) {
		dst.Bodies = make([]dynamo.Body, len(r.bodies))
	}
	dst.Bodies = dst.Bodies[:len(r.bodies)]
	copy(dst.Bodies, r.bodies)
	dst.SimTime = r.simTime
	dst.Steps = r.steps
	dst.Seq = r.seq
}

// Frame returns a freshly allocated snapshot.
func (r *Registry) Frame() Frame {
	var f Frame
	r.Snapshot(&f)
	return f
}
