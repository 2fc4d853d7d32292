package precedent

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the contract the Postgres-backed precedent store (and any test
// double) must satisfy. Search returns the k nearest stored precedents to the
// query embedding, similarity descending, ties in insertion order.
type Store interface {
	Search(ctx context.Context, embedding []float32, cropType string, k int) ([]Precedent, error)
	Ping(ctx context.Context) error
}

// PostgresStore reads precedents from the externally populated `precedents`
// table. Embeddings are stored as real[] alongside the narrative; similarity
// is computed here since the candidate set per crop is small.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Search(ctx context.Context, embedding []float32, cropType string, k int) ([]Precedent, error) {
	// ORDER BY id keeps insertion order, which the ranking helper relies on
	// for deterministic tie-breaks.
	const q = `
		SELECT crop_type, embedding, outcome_narrative
		FROM precedents
		WHERE lower(crop_type) = lower($1)
		ORDER BY id`

	rows, err := s.pool.Query(ctx, q, cropType)
	if err != nil {
		return nil, fmt.Errorf("query precedents: %w", err)
	}
	defer rows.Close()

	var candidates []Precedent
	for rows.Next() {
		var p Precedent
		if err := rows.Scan(&p.CropType, &p.Embedding, &p.OutcomeNarrative); err != nil {
			return nil, fmt.Errorf("scan precedent: %w", err)
		}
		candidates = append(candidates, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate precedents: %w", err)
	}

	return rankBySimilarity(embedding, candidates, k), nil
}

// Ping reports store connectivity for the readiness probe.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
