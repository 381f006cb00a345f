package physics

import (
	"fmt"
	"sort"

	"github.com/san-kum/orbsim/internal/dynamo"
)

// Distance conversions. One simulation unit (SU) is 100 km.
const (
	SUInKm = 100.0
	KmInM  = 1000.0
	SUInM  = SUInKm * KmInM
)

// Units is a mutually consistent (distance, mass, time) system together with
// the gravitational constant expressed in it. A simulation picks its Units
// once at construction; G never changes afterwards.
type Units struct {
	Name     string
	Distance string
	Mass     string
	Time     string
	G        float64
}

var unitSystems = map[string]Units{
	// Scenario units: the scale the presets are tuned for.
	"sim": {Name: "sim", Distance: "SU", Mass: "MU", Time: "s", G: 1.0},
	"km":  {Name: "km", Distance: "km", Mass: "kg", Time: "s", G: 6.67430e-20},
	"si":  {Name: "si", Distance: "m", Mass: "kg", Time: "s", G: 6.67430e-11},
}

// DefaultUnits is used when a scenario does not name a unit system.
const DefaultUnits = "sim"

// LookupUnits resolves a unit system by name. An empty name selects
// DefaultUnits.
func LookupUnits(name string) (Units, error) {
	if name == "" {
		name = DefaultUnits
	}
	u, ok := unitSystems[name]
	if !ok {
		return Units{}, fmt.Errorf("%q (available: %v): %w", name, UnitNames(), dynamo.ErrUnknownUnits)
	}
	return u, nil
}

func UnitNames() []string {
	names := make([]string, 0, len(unitSystems))
	for name := range unitSystems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func KmToSU(d float64) float64 { return d / SUInKm }
func SUToKm(d float64) float64 { return d * SUInKm }
func MToKm(d float64) float64  { return d / KmInM }
func KmToM(d float64) float64  { return d * KmInM }
func MToSU(d float64) float64  { return d / SUInM }
func SUToM(d float64) float64  { return d * SUInM }
