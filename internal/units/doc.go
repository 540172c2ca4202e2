// Package units provides unit-tagged values for galdyn.
//
// A [Unit] is a product of named base units raised to integer powers, such as
// "kpc2 / Myr2" or "Gyr solMass / yr". Unit algebra never simplifies across
// different named units: multiplying "solMass / yr" by "Gyr" yields
// "Gyr solMass / yr", not "solMass". Dimensional analysis and scale factors
// are tracked with github.com/ctessum/unit, so conversions between
// compatible units are exact up to the SI scale factors.
//
// A [Quantity] is a row-major batch of float64 values with a shape and a
// unit. A [System] is an ordered set of base units (length, mass, time,
// angle) from which derived units are resolved by dimension name:
//
//	us := units.Galactic
//	e := us.MustGet("specific energy") // kpc2 / Myr2
//	q := units.Scalar(1, units.Gyr)
//	v, _ := q.ValueIn(us.Time())       // [1000]
package units
