package main

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/san-kum/galdyn/internal/diffeq"
	"github.com/san-kum/galdyn/internal/experiment"
	"github.com/san-kum/galdyn/internal/units"
)

func TestParseGrid(t *testing.T) {
	targets, ranges, err := parseGrid([]string{"initial.p.1=100:300:3", "potential.halo.m=5e11:5e11:1"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"initial.p.1", "potential.halo.m"}, targets); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}
	want := [][]float64{{100, 200, 300}, {5e11}}
	if diff := cmp.Diff(want, ranges, cmpopts.EquateApprox(1e-12, 0)); diff != "" {
		t.Errorf("ranges mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"initial.p.1", "a=1:2", "a=x:2:3", "a=1:y:3", "a=1:2:0"} {
		if _, _, err := parseGrid([]string{bad}); err == nil {
			t.Errorf("parseGrid(%q): expected an error", bad)
		}
	}
}

func TestFormatQuantity(t *testing.T) {
	tests := []struct {
		q    units.Quantity
		want string
	}{
		{units.Scalar(1.5, units.Kpc), "1.5 kpc"},
		{units.Scalar(2, units.Dimensionless), "2"},
		{units.Vector(units.KmPerS, 1, 2, 3), "[1 2 3] km / s"},
	}
	for _, tt := range tests {
		if got := formatQuantity(tt.q); got != tt.want {
			t.Errorf("formatQuantity = %q, want %q", got, tt.want)
		}
	}
}

func TestFinite(t *testing.T) {
	got := finite([]float64{1, math.NaN(), 2, math.Inf(1)})
	if diff := cmp.Diff([]float64{1, 2}, got); diff != "" {
		t.Errorf("finite mismatch (-want +got):\n%s", diff)
	}
}

func TestRadialVelocity(t *testing.T) {
	if v := radialVelocity(diffeq.State{3, 4, 0, 3, 4, 1}); math.Abs(v-5) > 1e-15 {
		t.Errorf("expected 5, got %g", v)
	}
	if v := radialVelocity(diffeq.State{0, 0, 1, 1, 1, 1}); v != 0 {
		t.Errorf("expected 0 on the axis, got %g", v)
	}
}

func TestAxisUnit(t *testing.T) {
	res := &experiment.Result{Units: units.Galactic}
	if got := axisUnit(res, "x", "z"); got != "kpc" {
		t.Errorf("expected kpc, got %q", got)
	}
	if got := axisUnit(res, "vx", "vy"); got != "kpc / Myr" {
		t.Errorf("expected kpc / Myr, got %q", got)
	}
	if got := axisUnit(res, "x", "vx"); got != "" {
		t.Errorf("expected no unit for mixed axes, got %q", got)
	}
}
