// Package config reads and writes orbit run files. A run names a unit
// system, the potential components, an optional frame, initial conditions
// and integration settings. Files are YAML or TOML, chosen by extension.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultUnits  = "galactic"
	DefaultSolver = "dopri5"
	DefaultSaveN  = 500
)

var (
	ErrUnknownFormat = errors.New("config: unknown file format")
	ErrInvalid       = errors.New("config: invalid")
)

type Config struct {
	Units       string            `yaml:"units" toml:"units"`
	Potential   []ComponentConfig `yaml:"potential" toml:"potential"`
	Frame       []OperatorConfig  `yaml:"frame,omitempty" toml:"frame,omitempty"`
	Initial     InitialConfig     `yaml:"initial" toml:"initial"`
	Integration IntegrationConfig `yaml:"integration" toml:"integration"`
}

// QuantityConfig is a scalar with a unit string such as "kpc" or "km / s".
type QuantityConfig struct {
	Value float64 `yaml:"value" toml:"value"`
	Unit  string  `yaml:"unit" toml:"unit"`
}

// VectorConfig is a flat list of components. More than three values make a
// batch of 3-vectors.
type VectorConfig struct {
	Values []float64 `yaml:"values" toml:"values"`
	Unit   string    `yaml:"unit" toml:"unit"`
}

// ParamConfig is either a constant (Value, Unit) or a linear function of
// time (Slope, PointTime, PointValue).
type ParamConfig struct {
	Value      *float64        `yaml:"value,omitempty" toml:"value,omitempty"`
	Unit       string          `yaml:"unit,omitempty" toml:"unit,omitempty"`
	Slope      *QuantityConfig `yaml:"slope,omitempty" toml:"slope,omitempty"`
	PointTime  *QuantityConfig `yaml:"point_time,omitempty" toml:"point_time,omitempty"`
	PointValue *QuantityConfig `yaml:"point_value,omitempty" toml:"point_value,omitempty"`
}

func (p ParamConfig) IsLinear() bool { return p.Slope != nil }

// Const is shorthand for a constant parameter.
func Const(v float64, unit string) ParamConfig {
	return ParamConfig{Value: &v, Unit: unit}
}

// Linear is shorthand for a parameter p(t) = pointValue + slope·(t − pointTime).
func Linear(slope, pointTime, pointValue QuantityConfig) ParamConfig {
	return ParamConfig{Slope: &slope, PointTime: &pointTime, PointValue: &pointValue}
}

type ComponentConfig struct {
	Name   string                 `yaml:"name" toml:"name"`
	Type   string                 `yaml:"type" toml:"type"`
	Params map[string]ParamConfig `yaml:"params" toml:"params"`
}

// OperatorConfig is one frame operator. Type is one of translation,
// galilean_translation, boost, rotation and constant_rotation_z; only the
// fields that type reads are set. A rotation is either Axis and Angle or a
// row-major Matrix.
type OperatorConfig struct {
	Type     string          `yaml:"type" toml:"type"`
	Delta    *VectorConfig   `yaml:"delta,omitempty" toml:"delta,omitempty"`
	Dt       *QuantityConfig `yaml:"dt,omitempty" toml:"dt,omitempty"`
	Velocity *VectorConfig   `yaml:"velocity,omitempty" toml:"velocity,omitempty"`
	Axis     string          `yaml:"axis,omitempty" toml:"axis,omitempty"`
	Angle    *QuantityConfig `yaml:"angle,omitempty" toml:"angle,omitempty"`
	Matrix   [][]float64     `yaml:"matrix,omitempty" toml:"matrix,omitempty"`
	Omega    *QuantityConfig `yaml:"omega,omitempty" toml:"omega,omitempty"`
}

type InitialConfig struct {
	Q VectorConfig `yaml:"q" toml:"q"`
	P VectorConfig `yaml:"p" toml:"p"`
}

// IntegrationConfig leaves solver defaults to the integrator: zero
// tolerances and nil MaxSteps or Throw mean "use the default".
type IntegrationConfig struct {
	T0       QuantityConfig  `yaml:"t0" toml:"t0"`
	T1       QuantityConfig  `yaml:"t1" toml:"t1"`
	Dt0      *QuantityConfig `yaml:"dt0,omitempty" toml:"dt0,omitempty"`
	Solver   string          `yaml:"solver" toml:"solver"`
	RTol     float64         `yaml:"rtol,omitempty" toml:"rtol,omitempty"`
	ATol     float64         `yaml:"atol,omitempty" toml:"atol,omitempty"`
	MaxSteps *int            `yaml:"max_steps,omitempty" toml:"max_steps,omitempty"`
	Throw    *bool           `yaml:"throw,omitempty" toml:"throw,omitempty"`
	SaveN    int             `yaml:"save_n" toml:"save_n"`
	Dense    bool            `yaml:"dense,omitempty" toml:"dense,omitempty"`
	Workers  int             `yaml:"workers,omitempty" toml:"workers,omitempty"`
}

// DefaultConfig is a near-circular orbit in a halo and bulge model.
func DefaultConfig() *Config {
	return &Config{
		Units: DefaultUnits,
		Potential: []ComponentConfig{
			{Name: "halo", Type: "nfw", Params: map[string]ParamConfig{
				"m":   Const(5.4e11, "solMass"),
				"r_s": Const(15, "kpc"),
			}},
			{Name: "bulge", Type: "hernquist", Params: map[string]ParamConfig{
				"m_tot": Const(5e9, "solMass"),
				"r_s":   Const(1, "kpc"),
			}},
		},
		Initial: InitialConfig{
			Q: VectorConfig{Values: []float64{8, 0, 0}, Unit: "kpc"},
			P: VectorConfig{Values: []float64{0, 160, 10}, Unit: "km / s"},
		},
		Integration: IntegrationConfig{
			T0:     QuantityConfig{Value: 0, Unit: "Myr"},
			T1:     QuantityConfig{Value: 1, Unit: "Gyr"},
			Solver: DefaultSolver,
			SaveN:  DefaultSaveN,
		},
	}
}

// Validate checks what can be checked without building the run.
func (c *Config) Validate() error {
	if len(c.Potential) == 0 {
		return fmt.Errorf("%w: no potential components", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.Potential))
	for i, comp := range c.Potential {
		if comp.Type == "" {
			return fmt.Errorf("%w: component %d has no type", ErrInvalid, i)
		}
		if seen[comp.Name] {
			return fmt.Errorf("%w: duplicate component name %q", ErrInvalid, comp.Name)
		}
		seen[comp.Name] = true
		for name, p := range comp.Params {
			if err := p.validate(); err != nil {
				return fmt.Errorf("%w: %s.%s: %v", ErrInvalid, comp.Name, name, err)
			}
		}
	}
	q, p := len(c.Initial.Q.Values), len(c.Initial.P.Values)
	if q == 0 || q%3 != 0 || q != p {
		return fmt.Errorf("%w: initial q and p need the same multiple of 3 values, got %d and %d", ErrInvalid, q, p)
	}
	if c.Integration.SaveN < 0 {
		return fmt.Errorf("%w: save_n %d", ErrInvalid, c.Integration.SaveN)
	}
	return nil
}

func (p ParamConfig) validate() error {
	switch {
	case p.Value != nil && p.Slope != nil:
		return errors.New("both a value and a slope")
	case p.Value != nil:
		return nil
	case p.Slope != nil && (p.PointTime == nil || p.PointValue == nil):
		return errors.New("a linear parameter needs point_time and point_value")
	case p.Slope != nil:
		return nil
	}
	return errors.New("neither a value nor a slope")
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Potential = make([]ComponentConfig, len(c.Potential))
	for i, comp := range c.Potential {
		out.Potential[i] = comp
		out.Potential[i].Params = make(map[string]ParamConfig, len(comp.Params))
		for k, v := range comp.Params {
			out.Potential[i].Params[k] = v
		}
	}
	out.Frame = append([]OperatorConfig(nil), c.Frame...)
	out.Initial.Q.Values = append([]float64(nil), c.Initial.Q.Values...)
	out.Initial.P.Values = append([]float64(nil), c.Initial.P.Values...)
	return &out
}

func format(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return "yaml", nil
	case ".toml":
		return "toml", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// Load reads a run file over DefaultConfig and validates it.
func Load(path string) (*Config, error) {
	f, err := format(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	// Lists are replaced, not merged.
	cfg.Potential = nil
	switch f {
	case "yaml":
		err = yaml.Unmarshal(data, cfg)
	case "toml":
		_, err = toml.Decode(string(data), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg in the format chosen by the extension of path.
func Save(path string, cfg *Config) error {
	f, err := format(path)
	if err != nil {
		return err
	}
	var data []byte
	switch f {
	case "yaml":
		data, err = yaml.Marshal(cfg)
	case "toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(cfg)
		data = buf.Bytes()
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
