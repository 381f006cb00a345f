package analysis

import (
	"math"

	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/physics"
)

// Elements are the osculating two-body elements of an orbit.
type Elements struct {
	SemiMajorAxis float64
	Eccentricity  float64
	Period        float64
	Bound         bool
}

// OrbitalElements treats body and primary as an isolated pair and returns
// body's orbit about primary. Unbound orbits report +Inf for the semi-major
// axis and period.
func OrbitalElements(g float64, primary, body dynamo.Body) Elements {
	r := body.Position.Sub(primary.Position)
	v := body.Velocity.Sub(primary.Velocity)
	m := primary.Mass + body.Mass
	mu := g * m

	dist := r.Len()
	if dist == 0 || mu <= 0 {
		return Elements{SemiMajorAxis: math.Inf(1), Period: math.Inf(1), Eccentricity: math.NaN()}
	}

	// e = (v x h)/mu - r/|r|
	h := r.Cross(v)
	ecc := v.Cross(h).Mul(1 / mu).Sub(r.Mul(1 / dist))

	el := Elements{
		SemiMajorAxis: physics.SemiMajorAxis(g, m, dist, v.Len()),
		Eccentricity:  ecc.Len(),
	}
	el.Bound = !math.IsInf(el.SemiMajorAxis, 1)
	if el.Bound {
		el.Period = physics.OrbitalPeriod(g, m, el.SemiMajorAxis)
	} else {
		el.Period = math.Inf(1)
	}
	return el
}
