package precedent

import (
	"context"
	"log"

	"github.com/agri-intel/farm-risk-analysis/internal/environment"
)

// Retriever embeds the current conditions and runs a nearest-neighbour search
// against the precedent store. Every failure on this path is non-fatal: the
// caller gets an empty sequence and the report is flagged degraded instead.
type Retriever struct {
	embedder      Embedder
	store         Store
	topK          int
	minSimilarity float64
}

func NewRetriever(embedder Embedder, store Store, topK int, minSimilarity float64) *Retriever {
	return &Retriever{
		embedder:      embedder,
		store:         store,
		topK:          topK,
		minSimilarity: minSimilarity,
	}
}

// Retrieve returns the top precedents for the crop under the current
// conditions, similarity descending. An empty snapshot falls back to a
// crop-type-only query; embedder or store failure returns an empty slice.
func (r *Retriever) Retrieve(ctx context.Context, cropType string, snap environment.Snapshot) []Precedent {
	text := EmbeddingText(cropType, snap)

	embedding, err := r.embedder.Embed(ctx, text)
	if err != nil {
		log.Printf("precedent embedding failed for crop %q: %v", cropType, err)
		return nil
	}

	results, err := r.store.Search(ctx, embedding, cropType, r.topK)
	if err != nil {
		log.Printf("precedent store search failed for crop %q: %v", cropType, err)
		return nil
	}

	// Drop matches below the similarity floor; results are sorted descending
	// so the first miss ends the scan.
	for i, p := range results {
		if p.Similarity < r.minSimilarity {
			results = results[:i]
			break
		}
	}

	return results
}
