// Package search provides an optional vector-persistence collaborator
// for the trust engine: trust embeddings can be persisted as pgvector
// columns for external nearest-trust-neighbor lookups.
package search

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// TrustVectorIndex persists each agent's trust embedding (the EQBSL
// view's per-node embedding, spec §4.5) as a pgvector column, enabling
// nearest-trust-neighbor lookups external to the core engine. The core
// itself never imports this package; it is a SPEC_FULL-only
// enrichment the engine's caller may wire in optionally.
type TrustVectorIndex struct {
	pool *pgxpool.Pool
}

// NewTrustVectorIndex wraps an existing pool. Callers are responsible
// for registering pgvector types on the pool's connections (see
// newTrustIndex in cmd/cathexisd for the pgx AfterConnect pattern).
func NewTrustVectorIndex(pool *pgxpool.Pool) *TrustVectorIndex {
	return &TrustVectorIndex{pool: pool}
}

// EnsureSchema creates the backing table if absent.
func (idx *TrustVectorIndex) EnsureSchema(ctx context.Context, dims int) error {
	_, err := idx.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS cathexis_trust_embeddings (
			agent_id  TEXT PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, dims))
	if err != nil {
		return fmt.Errorf("search: ensure trust embedding schema: %w", err)
	}
	return nil
}

// Upsert stores (or replaces) agentID's trust embedding.
func (idx *TrustVectorIndex) Upsert(ctx context.Context, agentID string, embedding []float32) error {
	_, err := idx.pool.Exec(ctx, `
		INSERT INTO cathexis_trust_embeddings (agent_id, embedding, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (agent_id) DO UPDATE SET embedding = excluded.embedding, updated_at = excluded.updated_at
	`, agentID, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("search: upsert trust embedding for %q: %w", agentID, err)
	}
	return nil
}

// NearestNeighbors returns the limit agent ids whose trust embeddings
// are closest (cosine distance) to agentID's stored embedding,
// excluding agentID itself.
func (idx *TrustVectorIndex) NearestNeighbors(ctx context.Context, agentID string, limit int) ([]string, error) {
	rows, err := idx.pool.Query(ctx, `
		SELECT b.agent_id
		FROM cathexis_trust_embeddings AS a, cathexis_trust_embeddings AS b
		WHERE a.agent_id = $1 AND b.agent_id != $1
		ORDER BY a.embedding <=> b.embedding
		LIMIT $2
	`, agentID, limit)
	if err != nil {
		return nil, fmt.Errorf("search: nearest trust neighbors for %q: %w", agentID, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("search: scan nearest neighbor: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
