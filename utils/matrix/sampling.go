// Package matrix holds sampling helpers for randomized rotation tests and tools.
package matrix

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// SampleUnitQuaternions samples n quaternions (w, x, y, z) uniformly from the unit 3-sphere, which
// makes the rotations they represent uniformly distributed. Each is the normalization of four
// independent standard normal draws.
func SampleUnitQuaternions(n int) [][4]float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1}
	out := make([][4]float64, n)
	for i := range out {
		var q [4]float64
		var norm float64
		// a draw this close to the origin has no usable direction
		for norm < 1e-6 {
			for j := range q {
				q[j] = dist.Rand()
			}
			norm = floats.Norm(q[:], 2)
		}
		floats.Scale(1/norm, q[:])
		out[i] = q
	}
	return out
}

// SampleAngles samples n angles uniformly in [min, max].
func SampleAngles(n int, min, max float64) []float64 {
	dist := distuv.Uniform{Min: min, Max: max}
	out := make([]float64, n)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}
