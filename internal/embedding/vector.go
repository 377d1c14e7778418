package embedding

import "math"

// Vector is a fixed-dimension embedding vector. Dimension is provider-defined
// and constant within one ranking call; two vectors are only comparable when
// their dimensions match.
type Vector []float64

// Cosine computes the cosine similarity between two vectors.
//
// Returns a value in [-1, 1]. Degenerate inputs are mapped to 0.0 rather than
// an error: a zero-norm vector has no direction, and vectors of mismatched
// dimension are not comparable. Callers that care about the mismatch case
// should validate dimensions up front.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
