package potential

import (
	"fmt"

	"github.com/san-kum/galdyn/internal/autodiff"
	"github.com/san-kum/galdyn/internal/units"
	"gonum.org/v1/gonum/num/hyperdual"
)

// Named pairs a potential with its key in a Composite.
type Named struct {
	Name      string
	Potential Potential
}

// Composite is the sum of named child potentials sharing one unit system.
type Composite struct {
	us       units.System
	consts   *Constants
	names    []string
	children map[string]Potential
}

// NewComposite checks that all children share us and that names are unique.
func NewComposite(us units.System, children ...Named) (*Composite, error) {
	c := &Composite{us: us, consts: defaultConstants, children: make(map[string]Potential, len(children))}
	for _, ch := range children {
		if ch.Potential == nil {
			return nil, fmt.Errorf("%w: component %q is nil", ErrBadParameter, ch.Name)
		}
		if _, dup := c.children[ch.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate component %q", ErrBadParameter, ch.Name)
		}
		if !ch.Potential.Units().Equal(us) {
			return nil, fmt.Errorf("%w: component %q uses %s, composite uses %s",
				ErrUnitSystemMismatch, ch.Name, ch.Potential.Units(), us)
		}
		c.names = append(c.names, ch.Name)
		c.children[ch.Name] = ch.Potential
	}
	return c, nil
}

func (c *Composite) Units() units.System   { return c.us }
func (c *Composite) Constants() *Constants { return c.consts }

// Names lists the components in insertion order.
func (c *Composite) Names() []string { return append([]string(nil), c.names...) }

// Get returns the named component.
func (c *Composite) Get(name string) (Potential, bool) {
	p, ok := c.children[name]
	return p, ok
}

// Len is the number of components.
func (c *Composite) Len() int { return len(c.names) }

func (c *Composite) PotentialAt(q autodiff.Vec, t float64) (hyperdual.Number, error) {
	var sum hyperdual.Number
	for _, name := range c.names {
		v, err := c.children[name].PotentialAt(q, t)
		if err != nil {
			return hyperdual.Number{}, fmt.Errorf("%s: %w", name, err)
		}
		sum = hyperdual.Add(sum, v)
	}
	return sum, nil
}

// DensityAt sums the children's densities, each closed form where
// available.
func (c *Composite) DensityAt(q [3]float64, t float64) (float64, error) {
	var sum float64
	for _, name := range c.names {
		v, err := densityOf(c.children[name], q, t)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		sum += v
	}
	return sum, nil
}
