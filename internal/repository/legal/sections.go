package legal

import (
	"context"
	"strconv"
	"strings"

	"github.com/cidade-aberta/urbanq/internal/db"
	"github.com/cidade-aberta/urbanq/internal/domain"
)

// MatchSections runs a threshold-filtered cosine-similarity top-k
// query over document_sections.
func (r *Repository) MatchSections(ctx context.Context, embedding []float32, threshold float64, limit int) ([]domain.Record, error) {
	vec := vectorLiteral(embedding)

	rows, err := r.pool.Query(ctx, `
		SELECT id, content, 1 - (embedding <=> $1::vector) AS similarity
		FROM document_sections
		WHERE 1 - (embedding <=> $1::vector) >= $2
		ORDER BY embedding <=> $1::vector
		LIMIT $3`,
		vec, threshold, limit)
	if err != nil {
		return nil, db.WrapOp("legal: section similarity lookup", err)
	}
	defer rows.Close()

	var recs []domain.Record
	for rows.Next() {
		var rec domain.Record
		var similarity float64
		if err := rows.Scan(&rec.ID, &rec.Content, &similarity); err != nil {
			return nil, db.WrapOp("legal: section scan", err)
		}
		rec.Source = "document_sections"
		rec.Score = similarity
		rec.Metadata = map[string]string{"similarity": strconv.FormatFloat(similarity, 'f', 4, 64)}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// vectorLiteral renders an embedding as a pgvector text literal.
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
