package scoring

import "math"

// CosineSimilarity returns dot(a,b)/(|a||b|) in [-1,1].
// Empty vectors, mismatched lengths and zero vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// VectorScore remaps cosine similarity into [0,1].
func VectorScore(a, b []float32) float64 {
	return clamp01((CosineSimilarity(a, b) + 1) / 2)
}
