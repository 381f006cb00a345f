package config

import "sort"

func orbit(i int) *int { return &i }

func preset(name, desc string, duration float64, bodies ...BodyConfig) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	cfg.Description = desc
	cfg.Duration = duration
	cfg.Bodies = bodies
	return cfg
}

var Presets = map[string]*Config{
	// Primary of mass 1000 with a light satellite on a circular orbit at
	// distance 100; period is about 199 s.
	"kepler": preset("kepler", "light satellite on a circular orbit", 200,
		BodyConfig{Name: "primary", Mass: 1000, Radius: 10},
		BodyConfig{Name: "satellite", Mass: 1, Radius: 2, Position: [3]float64{100, 0, 0}, Orbit: orbit(0)},
	),
	"sun-earth": preset("sun-earth", "star and planet at 600 SU", 600,
		BodyConfig{Name: "Sun", Mass: 1500, Radius: 200},
		BodyConfig{Name: "Earth", Mass: 10, Radius: 100, Position: [3]float64{600, 0, 0}, Orbit: orbit(0)},
	),
	"binary": preset("binary", "equal-mass circular binary", 300,
		BodyConfig{Name: "alpha", Mass: 500, Radius: 8, Position: [3]float64{-50, 0, 0}, Velocity: [3]float64{0, 0, -1.5811388300841898}},
		BodyConfig{Name: "beta", Mass: 500, Radius: 8, Position: [3]float64{50, 0, 0}, Velocity: [3]float64{0, 0, 1.5811388300841898}},
	),
	// Chenciner-Montgomery choreography, G = 1, unit masses.
	"figure-eight": preset("figure-eight", "three-body choreography", 60,
		BodyConfig{Name: "a", Mass: 1, Position: [3]float64{-0.97000436, 0, 0.24308753}, Velocity: [3]float64{0.46620368, 0, 0.43236573}},
		BodyConfig{Name: "b", Mass: 1, Position: [3]float64{0.97000436, 0, -0.24308753}, Velocity: [3]float64{0.46620368, 0, 0.43236573}},
		BodyConfig{Name: "c", Mass: 1, Velocity: [3]float64{-0.93240737, 0, -0.86473146}},
	),
	"solar": preset("solar", "star, two planets and a moon", 900,
		BodyConfig{Name: "star", Mass: 5000, Radius: 30},
		BodyConfig{Name: "inner", Mass: 2, Radius: 3, Position: [3]float64{150, 0, 0}, Orbit: orbit(0)},
		BodyConfig{Name: "giant", Mass: 40, Radius: 9, Position: [3]float64{0, 0, 400}, Orbit: orbit(0)},
		BodyConfig{Name: "moon", Mass: 0.1, Radius: 1, Position: [3]float64{0, 0, 415}, Orbit: orbit(2)},
	),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
