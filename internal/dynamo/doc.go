// Package dynamo provides the core types shared by the orbital simulation.
//
// The package defines the vocabulary every other package speaks:
//
//   - [Vec3]: double-precision 3-vector (mgl64)
//   - [Body]: a point mass with identity, mass, position and velocity
//   - [BodySpec]: the tuple a body is built from
//   - domain errors such as [ErrInvalidMass]
//
// # Example
//
//	spec := dynamo.BodySpec{Name: "sun", Mass: 1000}
//	if err := spec.Validate(); err != nil {
//		return err
//	}
//
// # Thread Safety
//
// Types in this package are plain values. Sharing between goroutines is
// handled by the registry package.
package dynamo
