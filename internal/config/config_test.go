package config

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/orbsim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Units != "sim" {
		t.Errorf("expected units sim, got %s", cfg.Units)
	}
	if cfg.Step <= 0 {
		t.Error("step should be positive")
	}
	if cfg.MaxFrame != 50*time.Millisecond {
		t.Errorf("expected 50ms max frame, got %v", cfg.MaxFrame)
	}
	if cfg.TimeScale != 1.0 {
		t.Errorf("expected real-time scale, got %f", cfg.TimeScale)
	}
}

func TestParse(t *testing.T) {
	doc := []byte(`
name: pair
units: km
step: 0.005
max_frame: 20ms
time_scale: 4
bodies:
  - name: planet
    mass: 5.97e24
    radius: 6371
  - name: probe
    mass: 500
    position: [7000, 0, 0]
    orbit: 0
`)

	cfg, err := Parse(doc)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if cfg.Name != "pair" || cfg.Units != "km" {
		t.Errorf("unexpected header: %+v", cfg)
	}
	if cfg.Step != 0.005 || cfg.MaxFrame != 20*time.Millisecond || cfg.TimeScale != 4 {
		t.Errorf("unexpected pacing: step %v frame %v scale %v", cfg.Step, cfg.MaxFrame, cfg.TimeScale)
	}
	if cfg.Frame != DefaultFrame {
		t.Errorf("unset fields should keep defaults, frame = %v", cfg.Frame)
	}
	if len(cfg.Bodies) != 2 || cfg.Bodies[1].Orbit == nil || *cfg.Bodies[1].Orbit != 0 {
		t.Fatalf("bodies not decoded: %+v", cfg.Bodies)
	}

	specs, err := cfg.Specs()
	if err != nil {
		t.Fatalf("specs failed: %v", err)
	}
	v := specs[1].Velocity
	want := math.Sqrt(6.67430e-20 * 5.97e24 / 7000)
	if math.Abs(v.Len()-want) > 1e-9 {
		t.Errorf("orbital speed = %v, want %v", v.Len(), want)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"no bodies", "name: empty\n", dynamo.ErrNoBodies},
		{"bad units", "units: parsecs\nbodies: [{name: a, mass: 1}]\n", dynamo.ErrUnknownUnits},
		{"zero step", "step: 0\nbodies: [{name: a, mass: 1}]\n", dynamo.ErrParameterBounds},
		{"negative scale", "time_scale: -1\nbodies: [{name: a, mass: 1}]\n", dynamo.ErrParameterBounds},
		{"forward orbit", "bodies: [{name: a, mass: 1, orbit: 1}, {name: b, mass: 1}]\n", dynamo.ErrParameterBounds},
		{"nan step", "step: .nan\nbodies: [{name: a, mass: 1}]\n", dynamo.ErrParameterBounds},
		{"infinite step", "step: .inf\nbodies: [{name: a, mass: 1}]\n", dynamo.ErrParameterBounds},
		{"nan scale", "time_scale: .nan\nbodies: [{name: a, mass: 1}]\n", dynamo.ErrParameterBounds},
		{"infinite scale", "time_scale: .inf\nbodies: [{name: a, mass: 1}]\n", dynamo.ErrParameterBounds},
		{"frame above max frame", "frame: 100ms\nmax_frame: 50ms\nbodies: [{name: a, mass: 1}]\n", dynamo.ErrParameterBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	cfg := GetPreset("solar")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Name != "solar" || len(loaded.Bodies) != len(cfg.Bodies) {
		t.Errorf("round trip lost data: %+v", loaded)
	}
	if loaded.MaxFrame != cfg.MaxFrame {
		t.Errorf("max frame = %v, want %v", loaded.MaxFrame, cfg.MaxFrame)
	}
	if *loaded.Bodies[3].Orbit != 2 {
		t.Errorf("moon orbit = %d, want 2", *loaded.Bodies[3].Orbit)
	}
}

func TestOrbitalVelocity_Perpendicular(t *testing.T) {
	cfg := GetPreset("kepler")
	specs, err := cfg.Specs()
	if err != nil {
		t.Fatal(err)
	}

	sep := specs[1].Position.Sub(specs[0].Position)
	vel := specs[1].Velocity
	if math.Abs(sep.Dot(vel)) > 1e-12 {
		t.Errorf("velocity %v not perpendicular to separation %v", vel, sep)
	}
	if math.Abs(vel.Len()-math.Sqrt(10)) > 1e-12 {
		t.Errorf("speed = %v, want sqrt(10)", vel.Len())
	}
	if vel[2] <= 0 {
		t.Errorf("expected prograde +z velocity, got %v", vel)
	}
}

func TestOrbitalVelocity_Chained(t *testing.T) {
	specs, err := GetPreset("solar").Specs()
	if err != nil {
		t.Fatal(err)
	}

	giant, moon := specs[2], specs[3]
	rel := moon.Velocity.Sub(giant.Velocity)
	want := math.Sqrt(giant.Mass / 15)
	if math.Abs(rel.Len()-want) > 1e-9 {
		t.Errorf("moon speed relative to giant = %v, want %v", rel.Len(), want)
	}
}

func TestOrbitalVelocity_VerticalSeparation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bodies = []BodyConfig{
		{Name: "a", Mass: 100},
		{Name: "b", Mass: 1, Position: [3]float64{0, 25, 0}, Orbit: orbit(0)},
	}
	specs, err := cfg.Specs()
	if err != nil {
		t.Fatal(err)
	}
	if !dynamo.IsFinite(specs[1].Velocity) || specs[1].Velocity.Len() == 0 {
		t.Errorf("vertical orbit velocity = %v", specs[1].Velocity)
	}
}

func TestOrbitalVelocity_ZeroDistance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bodies = []BodyConfig{
		{Name: "a", Mass: 100},
		{Name: "b", Mass: 1, Orbit: orbit(0)},
	}
	if _, err := cfg.Specs(); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("kepler")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Bodies[0].Mass != 1000 || cfg.Bodies[1].Mass != 1 {
		t.Errorf("unexpected kepler masses: %+v", cfg.Bodies)
	}

	cfg.Bodies[0].Mass = 1
	*cfg.Bodies[1].Orbit = 7
	again := GetPreset("kepler")
	if again.Bodies[0].Mass != 1000 || *again.Bodies[1].Orbit != 0 {
		t.Error("GetPreset returned shared state")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}
}

func TestPresetsValid(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			specs, err := GetPreset(name).Specs()
			if err != nil {
				t.Fatalf("specs: %v", err)
			}
			for _, s := range specs {
				if err := s.Validate(); err != nil {
					t.Errorf("invalid body: %v", err)
				}
			}
		})
	}
}
