package precedent

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is a concurrency-safe in-memory implementation of Store, used
// for local development and tests where no Postgres instance is available.
// Insertion order is preserved so tie-breaks behave like the real store.
type MemoryStore struct {
	mu         sync.RWMutex
	precedents []Precedent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add appends a precedent, keeping insertion order.
func (s *MemoryStore) Add(p Precedent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.precedents = append(s.precedents, p)
}

func (s *MemoryStore) Search(ctx context.Context, embedding []float32, cropType string, k int) ([]Precedent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var candidates []Precedent
	for _, p := range s.precedents {
		if strings.EqualFold(p.CropType, cropType) {
			candidates = append(candidates, p)
		}
	}
	s.mu.RUnlock()

	return rankBySimilarity(embedding, candidates, k), nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
