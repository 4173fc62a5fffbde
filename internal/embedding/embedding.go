// Package embedding provides the text embedding engine: field normalization,
// fingerprinting, a bounded embedding cache, cache-aware batch embedding, and
// the Vectorizer providers that produce the raw vectors.
package embedding

import "math"

// DefaultDimensions is the vector width of all-MiniLM-L6-v2 class models.
const DefaultDimensions = 384

// Epsilon is the L2-norm threshold below which a vector carries no usable
// direction and is treated as the zero sentinel.
const Epsilon = 1e-10

// Zero returns the all-zero sentinel vector of the given width. It stands in
// for empty or unembeddable input; it is never a valid model output.
func Zero(dims int) []float32 {
	return make([]float32, dims)
}

// IsZero reports whether vec is the zero sentinel (norm below Epsilon).
func IsZero(vec []float32) bool {
	return Norm(vec) < Epsilon
}

// Norm returns the L2 norm of vec, accumulated in float64.
func Norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// NormalizeL2 scales vec in place to unit L2 norm. Zero vectors are left
// unchanged.
func NormalizeL2(vec []float32) {
	var sum float32
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range vec {
		vec[i] *= norm
	}
}

func copyVector(vec []float32) []float32 {
	cp := make([]float32, len(vec))
	copy(cp, vec)
	return cp
}
