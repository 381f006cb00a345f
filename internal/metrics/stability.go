package metrics

import (
	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/registry"
)

// Boundedness is the fraction of observed frames in which every body stayed
// within radius of the system's centre of mass. Escapes and slingshots pull it
// below 1.
type Boundedness struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewBoundedness(radius float64) *Boundedness {
	return &Boundedness{
		name:   "bounded",
		radius: radius,
	}
}

func (b *Boundedness) Name() string {
	return b.name
}

func (b *Boundedness) Observe(f *registry.Frame) {
	b.samples++

	com := CenterOfMass(f)
	r2 := b.radius * b.radius
	for _, body := range f.Bodies {
		if dynamo.LenSqr(body.Position.Sub(com)) > r2 {
			b.violations++
			break
		}
	}
}

func (b *Boundedness) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Boundedness) Reset() {
	b.violations = 0
	b.samples = 0
}

// CenterOfMass returns the mass-weighted mean position of a frame.
func CenterOfMass(f *registry.Frame) dynamo.Vec3 {
	var sum dynamo.Vec3
	var total float64
	for _, b := range f.Bodies {
		sum = sum.Add(b.Position.Mul(b.Mass))
		total += b.Mass
	}
	if total == 0 {
		return dynamo.Vec3{}
	}
	return sum.Mul(1 / total)
}
