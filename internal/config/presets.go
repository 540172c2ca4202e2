package config

import "sort"

func vec(unit string, vs ...float64) VectorConfig { return VectorConfig{Values: vs, Unit: unit} }

func qty(v float64, unit string) QuantityConfig { return QuantityConfig{Value: v, Unit: unit} }

func integration(t1 QuantityConfig, saveN int) IntegrationConfig {
	return IntegrationConfig{T0: qty(0, "Myr"), T1: t1, Solver: DefaultSolver, SaveN: saveN}
}

var Presets = map[string]*Config{
	"kepler": {
		Units: DefaultUnits,
		Potential: []ComponentConfig{
			{Name: "point", Type: "kepler", Params: map[string]ParamConfig{"m_tot": Const(1e12, "solMass")}},
		},
		Initial:     InitialConfig{Q: vec("kpc", 10, 0, 0), P: vec("km / s", 0, 500, 0)},
		Integration: integration(qty(2, "Gyr"), 1000),
	},
	"milkyway": DefaultConfig(),
	"bar": {
		Units: DefaultUnits,
		Potential: []ComponentConfig{
			{Name: "halo", Type: "nfw", Params: map[string]ParamConfig{
				"m":   Const(5.4e11, "solMass"),
				"r_s": Const(15, "kpc"),
			}},
			{Name: "bar", Type: "longmuralibar", Params: map[string]ParamConfig{
				"m_tot": Const(1e10, "solMass"),
				"a":     Const(4, "kpc"),
				"b":     Const(1, "kpc"),
				"c":     Const(0.5, "kpc"),
				"Omega": Const(0.04, "1 / Myr"),
			}},
		},
		Initial:     InitialConfig{Q: vec("kpc", 6, 0, 0.2, 4, 1, 0), P: vec("km / s", 0, 140, 0, -30, 150, 5)},
		Integration: integration(qty(3, "Gyr"), 1500),
	},
	"triaxial": {
		Units: DefaultUnits,
		Potential: []ComponentConfig{
			{Name: "halo", Type: "triaxialhernquist", Params: map[string]ParamConfig{
				"m_tot": Const(1e12, "solMass"),
				"r_s":   Const(20, "kpc"),
				"q1":    Const(0.8, ""),
				"q2":    Const(0.6, ""),
			}},
		},
		Initial:     InitialConfig{Q: vec("kpc", 20, 5, 5), P: vec("km / s", 0, 80, 60)},
		Integration: integration(qty(5, "Gyr"), 2000),
	},
	"growing": {
		Units: DefaultUnits,
		Potential: []ComponentConfig{
			{Name: "cluster", Type: "plummer", Params: map[string]ParamConfig{
				"m_tot": Linear(qty(100, "solMass / Myr"), qty(0, "Myr"), qty(1e5, "solMass")),
				"r_s":   Const(0.01, "kpc"),
			}},
		},
		Initial:     InitialConfig{Q: vec("kpc", 0.05, 0, 0), P: vec("km / s", 0, 2, 0)},
		Integration: integration(qty(500, "Myr"), 500),
	},
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
