// Package export draws orbit projections with gonum/plot. The output format
// follows the file extension given to Save (png, svg, pdf, eps, ...).
package export

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/san-kum/galdyn/internal/diffeq"
)

const (
	DefaultWidth  = 6 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

var (
	ErrBadAxis = errors.New("export: axis must be one of x, y, z, vx, vy, vz")
	ErrNoData  = errors.New("export: no finite samples to draw")
)

var axisNames = []string{"x", "y", "z", "vx", "vy", "vz"}

// Axis returns the state component index for a name like "x" or "vz".
func Axis(name string) (int, error) {
	for i, n := range axisNames {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBadAxis, name)
}

// Projection turns one orbit into plot points, skipping non-finite samples
// left behind by a failed solve.
func Projection(states []diffeq.State, xAxis, yAxis int) plotter.XYs {
	out := make(plotter.XYs, 0, len(states))
	for _, y := range states {
		if len(y) <= xAxis || len(y) <= yAxis {
			continue
		}
		x, v := y[xAxis], y[yAxis]
		if math.IsNaN(x) || math.IsNaN(v) || math.IsInf(x, 0) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, plotter.XY{X: x, Y: v})
	}
	return out
}

// Options label a figure. Units is appended to the axis labels when set.
type Options struct {
	Title string
	Units string
}

// OrbitFigure draws every orbit as a line in the (xAxis, yAxis) plane and
// marks each starting point.
func OrbitFigure(orbits [][]diffeq.State, xName, yName string, opts Options) (*plot.Plot, error) {
	xa, err := Axis(xName)
	if err != nil {
		return nil, err
	}
	ya, err := Axis(yName)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = label(xName, opts.Units)
	p.Y.Label.Text = label(yName, opts.Units)
	p.Add(plotter.NewGrid())

	drawn := 0
	for i, states := range orbits {
		xys := Projection(states, xa, ya)
		if len(xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(0.75)

		start, err := plotter.NewScatter(xys[:1])
		if err != nil {
			return nil, err
		}
		start.GlyphStyle = draw.GlyphStyle{
			Color:  plotutil.Color(i),
			Radius: vg.Points(2.5),
			Shape:  draw.CircleGlyph{},
		}

		p.Add(line, start)
		if len(orbits) > 1 {
			p.Legend.Add(fmt.Sprintf("orbit %d", i), line)
		}
		drawn++
	}
	if drawn == 0 {
		return nil, ErrNoData
	}
	return p, nil
}

// Save writes p to path at the default size.
func Save(p *plot.Plot, path string) error {
	return p.Save(DefaultWidth, DefaultHeight, path)
}

func label(name, unit string) string {
	if unit == "" {
		return name
	}
	return fmt.Sprintf("%s [%s]", name, unit)
}
