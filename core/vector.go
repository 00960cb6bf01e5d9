package core

import "math"

// NormalizeVector scales the vector to unit length in place.
// Normalized vectors let similarity search treat the dot product as the
// cosine of the angle between them. Zero vectors are left untouched.
func NormalizeVector(vector []float32) {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return
	}
	norm := float32(1.0 / math.Sqrt(sumSquares))
	for i := range vector {
		vector[i] *= norm
	}
}
