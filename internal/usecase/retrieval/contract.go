package retrieval

import (
	"context"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

// LegalStore queries the legal corpus tables.
type LegalStore interface {
	// FindArticleExact matches article_number against every variant,
	// optionally filtered by law type.
	FindArticleExact(ctx context.Context, variants []string, lawType string, limit int) ([]domain.Record, error)
	// FindArticleFuzzy substring-matches full text against locale
	// abbreviation patterns ("Art. N", "Artigo N").
	FindArticleFuzzy(ctx context.Context, patterns []string, lawType string, limit int) ([]domain.Record, error)
	// FindArticleWildcard pattern-matches article numbers across variants.
	FindArticleWildcard(ctx context.Context, variants []string, lawType string, limit int) ([]domain.Record, error)
	// FindByTitle substring-matches article titles.
	FindByTitle(ctx context.Context, variant, docType string, limit int) ([]domain.Record, error)
	// FindByContent substring-matches full article text.
	FindByContent(ctx context.Context, variant, docType string, limit int) ([]domain.Record, error)
	// FindHierarchy searches the dedicated hierarchy table.
	FindHierarchy(ctx context.Context, variant, docType string, limit int) ([]domain.Record, error)
	// FindArticleRange returns articles numbered within [from, to].
	FindArticleRange(ctx context.Context, docType string, from, to int) ([]domain.Record, error)
}

// RegimeStore queries the structured zoning tables.
type RegimeStore interface {
	FindByNeighborhood(ctx context.Context, name string, limit int) ([]domain.Record, error)
	FindByZone(ctx context.Context, code string, limit int) ([]domain.Record, error)
}

// KeywordStore is the denormalized keyword-indexed fallback store.
type KeywordStore interface {
	FindByKeywords(ctx context.Context, keys []string, limit int) ([]domain.Record, error)
}

// SemanticStore runs vector-similarity queries over document sections.
type SemanticStore interface {
	MatchSections(ctx context.Context, embedding []float32, threshold float64, limit int) ([]domain.Record, error)
}

// Embedder vectorizes query text for semantic search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
