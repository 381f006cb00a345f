package physics

import "math"

// CircularVelocity is the speed of a test mass on a circular orbit of radius
// r around a primary of mass m.
func CircularVelocity(g, m, r float64) float64 {
	return math.Sqrt(g * m / r)
}

// OrbitalPeriod applies Kepler's third law for semi-major axis a around a
// total mass m.
func OrbitalPeriod(g, m, a float64) float64 {
	return 2 * math.Pi * math.Sqrt(a*a*a/(g*m))
}

// SemiMajorAxis solves the vis-viva equation for a body at distance r moving
// at speed v relative to a total mass m. Returns +Inf for unbound orbits.
func SemiMajorAxis(g, m, r, v float64) float64 {
	inv := 2/r - v*v/(g*m)
	if inv <= 0 {
		return math.Inf(1)
	}
	return 1 / inv
}
