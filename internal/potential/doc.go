// Package potential evaluates gravitational potentials and their derivatives.
//
// Every potential implements [Potential]: a unit system, a set of physical
// constants, and PotentialAt, the specific energy Φ(q, t) at a raw position
// in the potential's own units. PotentialAt is written against hyperdual
// numbers, so the package-level functions derive everything else exactly:
//
//	Gradient      ∇Φ
//	Hessian       ∇∇Φ
//	Laplacian     ∇²Φ
//	Acceleration  −∇Φ
//	TidalTensor   ∇∇Φ − (∇²Φ/3) I
//	Density       closed form if the potential implements [Densitier],
//	              otherwise ∇²Φ / (4πG)
//
// The Poisson fallback assumes a Euclidean metric and uses the G found in
// the potential's constants, converted to its unit system.
//
// Positions are passed as a [coords.Position] and times as a [coords.Time].
// Both are normalized once to raw arrays in the potential's unit system and
// broadcast against each other; results are [units.Quantity] values whose
// shape is the broadcast batch shape followed by the per-point shape.
//
// [Frame] evaluates a potential as seen through a coordinate operator, and
// [Composite] sums named children.
package potential
