// Package legal queries the legal corpus: the legal_articles and
// legal_hierarchy tables plus pgvector similarity over
// document_sections.
package legal

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/cidade-aberta/urbanq/internal/db"
	"github.com/cidade-aberta/urbanq/internal/db/postgres"
	"github.com/cidade-aberta/urbanq/internal/domain"
)

// Repository is the Postgres-backed legal store.
type Repository struct {
	pool *postgres.Pool
}

// New creates a legal repository.
func New(pool *postgres.Pool) *Repository {
	return &Repository{pool: pool}
}

const articleColumns = `id, document_type, article_number, COALESCE(title, ''), COALESCE(full_content, article_text, '')`

// FindArticleExact matches article_number against every variant, with
// an optional law-type filter.
func (r *Repository) FindArticleExact(ctx context.Context, variants []string, lawType string, limit int) ([]domain.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+articleColumns+`
		FROM legal_articles
		WHERE article_number = ANY($1)
		  AND ($2 = '' OR document_type = $2)
		ORDER BY article_number
		LIMIT $3`,
		pq.Array(variants), lawType, limit)
	if err != nil {
		return nil, db.WrapOp("legal: exact article lookup", err)
	}
	return scanArticles(rows)
}

// FindArticleFuzzy substring-matches the full text against locale
// abbreviation patterns.
func (r *Repository) FindArticleFuzzy(ctx context.Context, patterns []string, lawType string, limit int) ([]domain.Record, error) {
	wrapped := make([]string, 0, len(patterns))
	for _, p := range patterns {
		wrapped = append(wrapped, "%"+p+"%")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+articleColumns+`
		FROM legal_articles
		WHERE (full_content ILIKE ANY($1) OR article_text ILIKE ANY($1))
		  AND ($2 = '' OR document_type = $2)
		LIMIT $3`,
		pq.Array(wrapped), lawType, limit)
	if err != nil {
		return nil, db.WrapOp("legal: fuzzy article lookup", err)
	}
	return scanArticles(rows)
}

// FindArticleWildcard prefix-matches article numbers across variants.
func (r *Repository) FindArticleWildcard(ctx context.Context, variants []string, lawType string, limit int) ([]domain.Record, error) {
	wrapped := make([]string, 0, len(variants))
	for _, v := range variants {
		wrapped = append(wrapped, v+"%")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+articleColumns+`
		FROM legal_articles
		WHERE article_number LIKE ANY($1)
		  AND ($2 = '' OR document_type = $2)
		ORDER BY article_number
		LIMIT $3`,
		pq.Array(wrapped), lawType, limit)
	if err != nil {
		return nil, db.WrapOp("legal: wildcard article lookup", err)
	}
	return scanArticles(rows)
}

// FindByTitle substring-matches article titles.
func (r *Repository) FindByTitle(ctx context.Context, variant, docType string, limit int) ([]domain.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+articleColumns+`
		FROM legal_articles
		WHERE title ILIKE '%' || $1 || '%'
		  AND ($2 = '' OR document_type = $2)
		LIMIT $3`,
		variant, docType, limit)
	if err != nil {
		return nil, db.WrapOp("legal: title lookup", err)
	}
	return scanArticles(rows)
}

// FindByContent substring-matches full article text.
func (r *Repository) FindByContent(ctx context.Context, variant, docType string, limit int) ([]domain.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+articleColumns+`
		FROM legal_articles
		WHERE full_content ILIKE '%' || $1 || '%'
		  AND ($2 = '' OR document_type = $2)
		LIMIT $3`,
		variant, docType, limit)
	if err != nil {
		return nil, db.WrapOp("legal: content lookup", err)
	}
	return scanArticles(rows)
}

// FindHierarchy searches the dedicated hierarchy table by unit name or
// type.
func (r *Repository) FindHierarchy(ctx context.Context, variant, docType string, limit int) ([]domain.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, document_type, hierarchy_type, hierarchy_name, COALESCE(full_content, '')
		FROM legal_hierarchy
		WHERE (hierarchy_name ILIKE '%' || $1 || '%' OR hierarchy_type ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR document_type = $2)
		LIMIT $3`,
		variant, docType, limit)
	if err != nil {
		return nil, db.WrapOp("legal: hierarchy lookup", err)
	}
	defer rows.Close()

	var recs []domain.Record
	for rows.Next() {
		var rec domain.Record
		var dt, hierType, hierName string
		if err := rows.Scan(&rec.ID, &dt, &hierType, &hierName, &rec.Content); err != nil {
			return nil, db.WrapOp("legal: hierarchy scan", err)
		}
		rec.Source = "legal_hierarchy"
		rec.Title = hierType + " " + hierName
		rec.Metadata = map[string]string{
			"document_type":  dt,
			"hierarchy_type": hierType,
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// FindArticleRange returns articles numbered within [from, to],
// ordered by article number.
func (r *Repository) FindArticleRange(ctx context.Context, docType string, from, to int) ([]domain.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+articleColumns+`
		FROM legal_articles
		WHERE ($1 = '' OR document_type = $1)
		  AND article_number ~ '^[0-9]+$'
		  AND article_number::int BETWEEN $2 AND $3
		ORDER BY article_number::int`,
		docType, from, to)
	if err != nil {
		return nil, db.WrapOp("legal: article range lookup", err)
	}
	return scanArticles(rows)
}

func scanArticles(rows *sql.Rows) ([]domain.Record, error) {
	defer rows.Close()

	var recs []domain.Record
	for rows.Next() {
		var rec domain.Record
		var docType, number string
		if err := rows.Scan(&rec.ID, &docType, &number, &rec.Title, &rec.Content); err != nil {
			return nil, db.WrapOp("legal: article scan", err)
		}
		rec.Source = "legal_articles"
		rec.Metadata = map[string]string{
			"document_type":  docType,
			"article_number": number,
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
