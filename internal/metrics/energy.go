package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/orbsim/internal/physics"
	"github.com/san-kum/orbsim/internal/registry"
)

// Energy reports the total mechanical energy of the last observed frame.
type Energy struct {
	name    string
	gravity *physics.Gravity
	cols    columns
	current float64
	samples int
}

func NewEnergy(g *physics.Gravity) *Energy {
	return &Energy{name: "energy", gravity: g}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f *registry.Frame) {
	e.cols.load(f)
	e.current = e.gravity.TotalEnergy(e.cols.pos, e.cols.vel, e.cols.mass)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.current
}

func (e *Energy) Reset() {
	e.current = 0
	e.samples = 0
}

// DriftSummary describes relative energy drift |E-E0|/|E0| across samples.
type DriftSummary struct {
	Initial float64
	Final   float64
	Max     float64
	Mean    float64
	StdDev  float64
	Samples int
}

// EnergyDrift tracks relative drift of total energy from the first observed
// frame. Value is the maximum drift seen.
type EnergyDrift struct {
	name          string
	gravity       *physics.Gravity
	cols          columns
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	drifts        []float64
	samples       int
}

func NewEnergyDrift(g *physics.Gravity) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		gravity: g,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f *registry.Frame) {
	e.cols.load(f)
	energy := e.gravity.TotalEnergy(e.cols.pos, e.cols.vel, e.cols.mass)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
		e.drifts = append(e.drifts, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Series returns the recorded drift samples.
func (e *EnergyDrift) Series() []float64 {
	return e.drifts
}

func (e *EnergyDrift) Summary() DriftSummary {
	s := DriftSummary{
		Initial: e.initialEnergy,
		Final:   e.currentEnergy,
		Max:     e.maxDrift,
		Samples: e.samples,
	}
	switch len(e.drifts) {
	case 0:
	case 1:
		s.Mean = e.drifts[0]
	default:
		s.Mean, s.StdDev = stat.MeanStdDev(e.drifts, nil)
	}
	return s
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.drifts = e.drifts[:0]
	e.samples = 0
}
