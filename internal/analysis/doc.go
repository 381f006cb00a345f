// Package analysis characterises orbits and their sensitivity.
//
//   - [OrbitalElements]: two-body semi-major axis, eccentricity and period
//     of one body about another, from a single frame
//   - [LyapunovExponent]: largest Lyapunov exponent estimated by
//     integrating a perturbed copy of the system alongside the original
//
// # Chaos Detection
//
// A clearly positive exponent means nearby initial conditions separate
// exponentially:
//
//	lambda, err := analysis.LyapunovExponent(grav, specs, analysis.LyapunovOptions{Body: 1})
//	if lambda > 0.1 {
//	    // chaotic on the sampled horizon
//	}
package analysis
