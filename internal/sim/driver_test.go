package sim

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/physics"
	"github.com/san-kum/orbsim/internal/registry"
)

func kepler() []dynamo.BodySpec {
	return []dynamo.BodySpec{
		{Name: "primary", Mass: 1000},
		{Name: "satellite", Mass: 1, Position: dynamo.Vec3{100, 0, 0}, Velocity: dynamo.Vec3{0, 0, math.Sqrt(10)}},
	}
}

func newSim(t *testing.T, specs []dynamo.BodySpec) *Simulation {
	t.Helper()
	s, err := New(specs, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func sameFrame(t *testing.T, a, b *registry.Frame) {
	t.Helper()
	if len(a.Bodies) != len(b.Bodies) {
		t.Fatalf("body count %d != %d", len(a.Bodies), len(b.Bodies))
	}
	for i := range a.Bodies {
		if a.Bodies[i].Position != b.Bodies[i].Position || a.Bodies[i].Velocity != b.Bodies[i].Velocity {
			t.Errorf("body %d differs: %v/%v vs %v/%v", i,
				a.Bodies[i].Position, a.Bodies[i].Velocity, b.Bodies[i].Position, b.Bodies[i].Velocity)
		}
	}
}

func TestNewDriver_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  DriverConfig
	}{
		{"zero step", DriverConfig{Step: 0, MaxFrame: DefaultMaxFrame}},
		{"negative step", DriverConfig{Step: -0.01, MaxFrame: DefaultMaxFrame}},
		{"zero max frame", DriverConfig{Step: DefaultStep}},
		{"negative yield", DriverConfig{Step: DefaultStep, MaxFrame: DefaultMaxFrame, Yield: -time.Millisecond}},
		{"nan step", DriverConfig{Step: math.NaN(), MaxFrame: DefaultMaxFrame}},
		{"infinite step", DriverConfig{Step: math.Inf(1), MaxFrame: DefaultMaxFrame}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(kepler(), Options{Driver: tt.cfg})
			if err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNew_InvalidTimeScale(t *testing.T) {
	for _, v := range []float64{math.NaN(), -1} {
		scale := v
		if _, err := New(kepler(), Options{TimeScale: &scale}); !errors.Is(err, dynamo.ErrParameterBounds) {
			t.Errorf("scale %v: expected ErrParameterBounds, got %v", v, err)
		}
	}
}

func TestNew_InvalidBodies(t *testing.T) {
	if _, err := New(nil, Options{}); err == nil {
		t.Error("expected error for empty body list")
	}
	if _, err := New([]dynamo.BodySpec{{Name: "ghost", Mass: 0}}, Options{}); err == nil {
		t.Error("expected error for zero mass")
	}
	if _, err := New(kepler(), Options{Units: "furlongs"}); err == nil {
		t.Error("expected error for unknown units")
	}
}

func TestDriver_Deterministic(t *testing.T) {
	frames := []time.Duration{16 * time.Millisecond, 3 * time.Millisecond, 41 * time.Millisecond, 0, 17 * time.Millisecond}
	scales := []float64{1, 7.5, 0.5, 3, 120}

	run := func() registry.Frame {
		s := newSim(t, kepler())
		for round := 0; round < 40; round++ {
			for i, f := range frames {
				s.TimeScale.Set(scales[i])
				s.Driver.Advance(f)
			}
		}
		return s.Registry.Frame()
	}

	a, b := run(), run()
	sameFrame(t, &a, &b)
	if a.Steps != b.Steps || a.SimTime != b.SimTime {
		t.Errorf("clock differs: %d/%v vs %d/%v", a.Steps, a.SimTime, b.Steps, b.SimTime)
	}
}

func TestDriver_StepCountInvariance(t *testing.T) {
	one := newSim(t, kepler())
	two := newSim(t, kepler())

	if n := one.Driver.Advance(20 * time.Millisecond); n != 2 {
		t.Fatalf("expected 2 steps, got %d", n)
	}
	two.Driver.Advance(10 * time.Millisecond)
	two.Driver.Advance(10 * time.Millisecond)

	if two.Driver.Steps() != 2 {
		t.Fatalf("expected 2 steps, got %d", two.Driver.Steps())
	}

	a, b := one.Registry.Frame(), two.Registry.Frame()
	sameFrame(t, &a, &b)
}

func TestDriver_ClampsElapsed(t *testing.T) {
	s := newSim(t, kepler())
	before := s.Registry.Frame()

	if n := s.Driver.Advance(-5 * time.Second); n != 0 {
		t.Errorf("negative elapsed took %d steps", n)
	}
	if s.Driver.Accumulator() != 0 {
		t.Errorf("negative elapsed credited %v", s.Driver.Accumulator())
	}
	after := s.Registry.Frame()
	sameFrame(t, &before, &after)

	n := s.Driver.Advance(10 * time.Minute)
	if n < 4 || n > 5 {
		t.Errorf("huge elapsed should be capped at 50ms worth of steps, took %d", n)
	}
	if acc := s.Driver.Accumulator(); acc < 0 || acc >= s.Driver.Config().Step {
		t.Errorf("accumulator %v outside [0, step)", acc)
	}
}

func TestDriver_Accumulator(t *testing.T) {
	s := newSim(t, kepler())

	s.TimeScale.Set(0)
	if n := s.Driver.Advance(40 * time.Millisecond); n != 0 {
		t.Errorf("paused driver took %d steps", n)
	}

	s.TimeScale.Set(0.5)
	if n := s.Driver.Advance(10 * time.Millisecond); n != 0 {
		t.Errorf("half a step credited, took %d steps", n)
	}
	if math.Abs(s.Driver.Accumulator()-0.005) > 1e-15 {
		t.Errorf("accumulator = %v, want 0.005", s.Driver.Accumulator())
	}
	if n := s.Driver.Advance(10 * time.Millisecond); n != 1 {
		t.Errorf("expected carried remainder to complete a step, took %d", n)
	}

	s.TimeScale.Set(100)
	n := s.Driver.Advance(20 * time.Millisecond)
	if n < 199 || n > 200 {
		t.Errorf("scale 100 over 20ms should take ~200 steps, took %d", n)
	}
}

func TestDriver_PublishesOncePerAdvance(t *testing.T) {
	s := newSim(t, kepler())
	seq := s.Registry.Frame().Seq

	s.Driver.Advance(30 * time.Millisecond)
	f := s.Registry.Frame()
	if f.Seq != seq+1 {
		t.Errorf("seq = %d, want %d", f.Seq, seq+1)
	}
	if f.Steps != s.Driver.Steps() || f.SimTime != s.Driver.SimTime() {
		t.Errorf("frame clock %d/%v, driver %d/%v", f.Steps, f.SimTime, s.Driver.Steps(), s.Driver.SimTime())
	}
}

func TestDriver_ZeroGravity(t *testing.T) {
	vel := dynamo.Vec3{1.5, -2, 0.25}
	s := newSim(t, []dynamo.BodySpec{{Name: "drifter", Mass: 5, Position: dynamo.Vec3{1, 2, 3}, Velocity: vel}})

	for i := 0; i < 500; i++ {
		s.Driver.Advance(10 * time.Millisecond)
	}

	f := s.Registry.Frame()
	want := dynamo.Vec3{1, 2, 3}.Add(vel.Mul(f.SimTime))
	if !f.Bodies[0].Position.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("position = %v, want %v", f.Bodies[0].Position, want)
	}
	if f.Bodies[0].Velocity != vel {
		t.Errorf("velocity changed to %v", f.Bodies[0].Velocity)
	}
}

func TestDriver_DegenerateSeparation(t *testing.T) {
	p := dynamo.Vec3{10, 10, 10}
	s := newSim(t, []dynamo.BodySpec{
		{Name: "a", Mass: 1000, Position: p},
		{Name: "b", Mass: 1000, Position: p},
	})

	for i := 0; i < 10; i++ {
		s.Driver.Advance(50 * time.Millisecond)
	}

	f := s.Registry.Frame()
	for _, b := range f.Bodies {
		if !dynamo.IsFinite(b.Position) || !dynamo.IsFinite(b.Velocity) {
			t.Fatalf("non-finite state: %v", b)
		}
		if b.Position != p {
			t.Errorf("coincident body moved to %v", b.Position)
		}
	}
}

func TestDriver_KeplerOrbit(t *testing.T) {
	s := newSim(t, kepler())
	start := s.Registry.Frame()
	rel0 := start.Bodies[1].Position.Sub(start.Bodies[0].Position)

	s.TimeScale.Set(10)
	a := physics.SemiMajorAxis(1, 1001, 100, math.Sqrt(10))
	period := physics.OrbitalPeriod(1, 1001, a)
	for s.Driver.SimTime() < period {
		s.Driver.Advance(time.Millisecond)
	}

	f := s.Registry.Frame()
	rel := f.Bodies[1].Position.Sub(f.Bodies[0].Position)
	if d := rel.Sub(rel0).Len(); d > 0.5 {
		t.Errorf("satellite ended %v from its start after one period", d)
	}
}

func TestManualClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewManualClock(start)

	if !c.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", c.Now(), start)
	}
	c.Advance(1500 * time.Millisecond)
	if got := c.Now().Sub(start); got != 1500*time.Millisecond {
		t.Errorf("advanced %v, want 1.5s", got)
	}
}

func BenchmarkAdvance(b *testing.B) {
	s, err := New(kepler(), Options{})
	if err != nil {
		b.Fatal(err)
	}
	s.TimeScale.Set(MaxTimeScale)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Driver.Advance(16 * time.Millisecond)
	}
}
