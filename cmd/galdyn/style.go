package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/galdyn/internal/units"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

func header(s string) {
	fmt.Println(headerStyle.Render(s))
}

func row(label string, format string, a ...any) {
	fmt.Println(labelStyle.Render(label) + valueStyle.Render(fmt.Sprintf(format, a...)))
}

func formatQuantity(q units.Quantity) string {
	var vals string
	if len(q.Value) == 1 {
		vals = fmt.Sprintf("%.8g", q.Value[0])
	} else {
		parts := make([]string, len(q.Value))
		for i, v := range q.Value {
			parts[i] = fmt.Sprintf("%.6g", v)
		}
		vals = "[" + strings.Join(parts, " ") + "]"
	}
	if u := q.Unit.String(); u != "" {
		return vals + " " + u
	}
	return vals
}

// finite drops the NaN tail of an orbit that stopped early.
func finite(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func graph(caption string, width int, series ...[]float64) {
	var data [][]float64
	for _, s := range series {
		if s = finite(s); len(s) > 1 {
			data = append(data, s)
		}
	}
	if len(data) == 0 {
		fmt.Println(warnStyle.Render(caption + ": nothing to plot"))
		return
	}
	g := asciigraph.PlotMany(data,
		asciigraph.Height(10),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
	fmt.Println(graphStyle.Render(g))
}
