package units

import (
	"errors"
	"math"
	"testing"
)

func approxEqual(a, b, rtol float64) bool {
	return math.Abs(a-b) <= rtol*math.Max(math.Abs(a), math.Abs(b))
}

func TestParseString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"kpc", "kpc"},
		{"km/s", "km / s"},
		{"kpc2 / Myr2", "kpc2 / Myr2"},
		{"kpc^2/Myr^2", "kpc2 / Myr2"},
		{"1 / Myr2", "1 / Myr2"},
		{"Msun", "solMass"},
		{"solMass kpc-3", "solMass / kpc3"},
		{"m3 / (kg s2)", "m3 / kg s2"},
		{"kpc / kpc", ""},
		{"kpc**2 / Myr**2", "kpc2 / Myr2"},
		{"solMass*kpc**-3", "solMass / kpc3"},
	}
	for _, tt := range tests {
		u, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.in, err)
			continue
		}
		if got := u.String(); got != tt.want {
			t.Errorf("Parse(%q).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseUnknown(t *testing.T) {
	if _, err := Parse("furlong"); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("Parse(furlong) error = %v, want ErrUnknownUnit", err)
	}
}

func TestNoCrossUnitSimplification(t *testing.T) {
	u := MustParse("solMass / yr").Mul(Gyr)
	if got, want := u.String(), "Gyr solMass / yr"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	f, err := u.Conversion(Msun)
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(f, 1e9, 1e-12) {
		t.Errorf("Gyr solMass / yr -> solMass factor = %v, want 1e9", f)
	}
}

func TestConversion(t *testing.T) {
	tests := []struct {
		from, to string
		want     float64
	}{
		{"Gyr", "Myr", 1000},
		{"kpc", "pc", 1000},
		{"deg", "rad", math.Pi / 180},
		{"km / s", "kpc / Myr", 1.0227121650537077e-3},
	}
	for _, tt := range tests {
		got, err := MustParse(tt.from).Conversion(MustParse(tt.to))
		if err != nil {
			t.Errorf("%s -> %s: %v", tt.from, tt.to, err)
			continue
		}
		if !approxEqual(got, tt.want, 1e-10) {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestConversionMismatch(t *testing.T) {
	_, err := Kpc.Conversion(Myr)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("kpc -> Myr error = %v, want ErrDimensionMismatch", err)
	}
}

func TestSystemGet(t *testing.T) {
	tests := []struct {
		dim  string
		want string
	}{
		{"length", "kpc"},
		{"specific energy", "kpc2 / Myr2"},
		{"acceleration", "kpc / Myr2"},
		{"mass density", "solMass / kpc3"},
		{"frequency squared", "1 / Myr2"},
		{"dimensionless", ""},
	}
	for _, tt := range tests {
		u, err := Galactic.Get(tt.dim)
		if err != nil {
			t.Errorf("Get(%q): %v", tt.dim, err)
			continue
		}
		if got := u.String(); got != tt.want {
			t.Errorf("Get(%q) = %q, want %q", tt.dim, got, tt.want)
		}
	}
	if _, err := Galactic.Get("charm"); !errors.Is(err, ErrUnknownDimension) {
		t.Errorf("Get(charm) error = %v, want ErrUnknownDimension", err)
	}
}

func TestCheck(t *testing.T) {
	if err := MustParse("kpc2 / Myr2").Check("specific energy"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Msun.Check("length"); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("solMass as length: error = %v, want ErrDimensionMismatch", err)
	}
	for _, u := range []string{"1 / Myr", "rad / Myr", "deg / Gyr"} {
		if err := MustParse(u).Check(RotationRate); err != nil {
			t.Errorf("%s as %s: %v", u, RotationRate, err)
		}
	}
	if err := KmPerS.Check(RotationRate); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("km / s as %s: error = %v, want ErrDimensionMismatch", RotationRate, err)
	}
}

func TestRate(t *testing.T) {
	plain, err := Scalar(0.04, MustParse("1 / Myr")).Rate(Myr)
	if err != nil {
		t.Fatal(err)
	}
	angular, err := Scalar(40, MustParse("rad / Gyr")).Rate(Myr)
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(plain, 0.04, 1e-12) || !approxEqual(angular, 0.04, 1e-12) {
		t.Errorf("Rate = %v and %v, want 0.04", plain, angular)
	}
	if _, err := Scalar(1, Kpc).Rate(Myr); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("kpc rate error = %v, want ErrDimensionMismatch", err)
	}
}

func TestGalacticG(t *testing.T) {
	g, err := GIn(Galactic)
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(g, 4.498502151469554e-12, 1e-6) {
		t.Errorf("G = %v kpc3 / solMass Myr2, want 4.4985e-12", g)
	}
}

func TestQuantityArithmetic(t *testing.T) {
	a := Vector(Kpc, 1, 2, 3)
	b := Scalar(1000, Pc)
	sum, err := a.Add(b)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{2, 3, 4}
	for i := range want {
		if !approxEqual(sum.Value[i], want[i], 1e-12) {
			t.Errorf("sum[%d] = %v, want %v", i, sum.Value[i], want[i])
		}
	}
	if !sum.Unit.Equal(Kpc) {
		t.Errorf("sum unit = %q, want kpc", sum.Unit)
	}

	prod, err := a.Mul(Scalar(2, Myr))
	if err != nil {
		t.Fatal(err)
	}
	if got := prod.Unit.String(); got != "Myr kpc" {
		t.Errorf("product unit = %q, want %q", got, "Myr kpc")
	}

	if _, err := a.Add(Scalar(1, Myr)); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("kpc + Myr error = %v, want ErrDimensionMismatch", err)
	}
}

func TestQuantityBroadcast(t *testing.T) {
	a := MustNew([]float64{1, 2, 3, 4, 5, 6}, []int{2, 3}, Kpc)
	b := MustNew([]float64{10, 20}, []int{2, 1}, Kpc)
	got, err := a.Add(b)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{11, 12, 13, 24, 25, 26}
	for i := range want {
		if got.Value[i] != want[i] {
			t.Errorf("value[%d] = %v, want %v", i, got.Value[i], want[i])
		}
	}
	if _, err := New([]float64{1, 2}, []int{3}, Kpc); !errors.Is(err, ErrShape) {
		t.Errorf("New with bad shape error = %v, want ErrShape", err)
	}
}

func BenchmarkConversion(b *testing.B) {
	q := Vector(KmPerS, 200, 10, 5)
	to := MustParse("kpc / Myr")
	for i := 0; i < b.N; i++ {
		_, _ = q.To(to)
	}
}
