// Package physics provides the gravitational force law and the quantities
// derived from it.
//
//   - [Gravity]: pairwise O(N^2) acceleration evaluation with a coincidence guard
//   - [Units]: the unit system that fixes the gravitational constant
//   - energy, momentum and Kepler helpers used for diagnostics
//
// # Units
//
// Distance, mass and time units must agree with G. The default "sim" system
// uses G = 1 with abstract units; "km" matches kilometres, kilograms and
// seconds (G = 6.67430e-20). See [LookupUnits].
//
// # Energy Conservation
//
// Use [Gravity.TotalEnergy] to monitor integrator drift:
//
//	g := physics.NewGravity(1.0)
//	e := g.TotalEnergy(pos, vel, mass)
package physics
