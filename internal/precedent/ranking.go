package precedent

import (
	"math"
	"sort"
)

// similarityTolerance is the band within which two scores are considered equal
// for ordering; ties keep the store's insertion order.
const similarityTolerance = 1e-6

// cosineSimilarity computes the cosine of the angle between two vectors,
// clamped to [0,1] so callers can treat it as a match score. Mismatched or
// zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// rankBySimilarity scores candidates against the query embedding and returns
// the top k, ordered by similarity descending. Candidates must arrive in the
// store's insertion order; the stable sort preserves that order for scores
// equal within similarityTolerance.
func rankBySimilarity(query []float32, candidates []Precedent, k int) []Precedent {
	ranked := make([]Precedent, len(candidates))
	copy(ranked, candidates)

	for i := range ranked {
		ranked[i].Similarity = cosineSimilarity(query, ranked[i].Embedding)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity-ranked[j].Similarity > similarityTolerance
	})

	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
