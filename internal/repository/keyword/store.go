// Package keyword is the denormalized keyword-indexed fallback store:
// Redis sets keyed by composite entity keys (BAIRRO_<NAME>,
// ZONA_<NN>) holding JSON-encoded records.
package keyword

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

const keyPrefix = "urbanq:kw:"

// Sets is the Redis surface the store needs.
type Sets interface {
	SAdd(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Store reads and writes the keyword index.
type Store struct {
	sets Sets
}

// New creates a keyword store.
func New(sets Sets) *Store {
	return &Store{sets: sets}
}

// Index adds a record under every given composite key.
func (s *Store) Index(ctx context.Context, keys []string, rec domain.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	for _, key := range keys {
		if err := s.sets.SAdd(ctx, keyPrefix+key, string(payload)); err != nil {
			return fmt.Errorf("index %s: %w", key, err)
		}
	}
	return nil
}

// FindByKeywords returns the records indexed under any of the keys,
// deduplicated by record ID and capped to limit. Unparseable members
// are skipped.
func (s *Store) FindByKeywords(ctx context.Context, keys []string, limit int) ([]domain.Record, error) {
	seen := make(map[string]struct{})
	var recs []domain.Record

	for _, key := range keys {
		members, err := s.sets.SMembers(ctx, keyPrefix+key)
		if err != nil {
			return nil, fmt.Errorf("read index %s: %w", key, err)
		}
		for _, m := range members {
			var rec domain.Record
			if err := json.Unmarshal([]byte(m), &rec); err != nil {
				continue
			}
			if _, dup := seen[rec.ID]; dup {
				continue
			}
			seen[rec.ID] = struct{}{}
			recs = append(recs, rec)
			if limit > 0 && len(recs) >= limit {
				return recs, nil
			}
		}
	}
	return recs, nil
}
