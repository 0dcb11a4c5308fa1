// Package session persists bounded per-session turn history.
// Persistence is best-effort; the in-process window in the
// orchestrator is authoritative for the current process.
package session

import (
	"context"

	"github.com/lib/pq"

	"github.com/cidade-aberta/urbanq/internal/db"
	"github.com/cidade-aberta/urbanq/internal/db/postgres"
	"github.com/cidade-aberta/urbanq/internal/domain"
)

// Repository is the Postgres-backed turn store.
type Repository struct {
	pool *postgres.Pool
}

// New creates a session repository.
func New(pool *postgres.Pool) *Repository {
	return &Repository{pool: pool}
}

// Append stores one turn summary.
func (r *Repository) Append(ctx context.Context, sessionID string, t domain.Turn) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO session_memory (session_id, query, intent, response_excerpt, agent_types, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sessionID, t.Query, t.Intent, t.Response, pq.Array(t.AgentTypes), t.CreatedAt)
	if err != nil {
		return db.WrapOp("session: append turn", err)
	}
	return nil
}

// Recent returns the last n turns of a session in chronological order.
func (r *Repository) Recent(ctx context.Context, sessionID string, n int) ([]domain.Turn, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT query, intent, response_excerpt, agent_types, created_at
		FROM session_memory
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		sessionID, n)
	if err != nil {
		return nil, db.WrapOp("session: read turns", err)
	}
	defer rows.Close()

	var turns []domain.Turn
	for rows.Next() {
		var t domain.Turn
		if err := rows.Scan(&t.Query, &t.Intent, &t.Response, pq.Array(&t.AgentTypes), &t.CreatedAt); err != nil {
			return nil, db.WrapOp("session: scan turn", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapOp("session: read turns", err)
	}

	// newest-first from the query; flip to chronological
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}
