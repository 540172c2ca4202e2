package units

// G is Newton's gravitational constant (CODATA 2018).
var G = Scalar(6.67430e-11, MustParse("m3 / kg s2"))

// GIn returns G expressed in the base units of s.
func GIn(s System) (float64, error) {
	return G.Float(s.Length().Pow(3).Div(s.Mass()).Div(s.Time().Pow(2)))
}

// C is the speed of light in vacuum.
var C = Scalar(299792458, MustParse("m / s"))
