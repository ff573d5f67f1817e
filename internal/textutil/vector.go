package textutil

import "math"

// TermVector is a term-frequency vector over content tokens.
type TermVector map[string]float64

// NewTermVector builds a term-frequency vector from text, stop words
// excluded. Returns an empty vector for text with no content tokens.
func NewTermVector(text string) TermVector {
	vec := make(TermVector)
	for _, tok := range ContentTokens(text) {
		vec[tok]++
	}
	return vec
}

// Add accumulates another vector into this one.
func (v TermVector) Add(other TermVector) {
	for term, weight := range other {
		v[term] += weight
	}
}

// Norm returns the Euclidean norm of the vector.
func (v TermVector) Norm() float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of two vectors. Empty vectors
// yield 0, never NaN.
func Cosine(a, b TermVector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	// Iterate the smaller vector
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for term, wa := range a {
		if wb, ok := b[term]; ok {
			dot += wa * wb
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.Norm() * b.Norm())
}

// Similarity is a convenience wrapper comparing two raw texts.
func Similarity(a, b string) float64 {
	return Cosine(NewTermVector(a), NewTermVector(b))
}
