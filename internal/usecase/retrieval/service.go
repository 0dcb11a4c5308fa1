package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cidade-aberta/urbanq/internal/domain"
	"github.com/cidade-aberta/urbanq/internal/domain/normalize"
	"github.com/cidade-aberta/urbanq/internal/logger"
	"github.com/cidade-aberta/urbanq/internal/metrics"
)

// Config holds retrieval tuning parameters.
type Config struct {
	ResultLimit       int
	MatchThreshold    float64
	FallbackThreshold float64
}

// Service runs multi-strategy retrieval over the legal corpus, the
// structured zoning tables, the keyword fallback index, and the vector
// store. Strategies are tried in fixed order; an erroring sub-search is
// treated as empty and never aborts the merge.
type Service struct {
	legal    LegalStore
	regime   RegimeStore
	keywords KeywordStore
	semantic SemanticStore
	embed    Embedder
	cfg      Config
}

// New creates a retrieval service.
func New(legal LegalStore, regime RegimeStore, keywords KeywordStore, semantic SemanticStore, embed Embedder, cfg Config) *Service {
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = 10
	}
	if cfg.MatchThreshold <= 0 {
		cfg.MatchThreshold = 0.7
	}
	if cfg.FallbackThreshold <= 0 {
		cfg.FallbackThreshold = 0.5
	}
	return &Service{
		legal:    legal,
		regime:   regime,
		keywords: keywords,
		semantic: semantic,
		embed:    embed,
		cfg:      cfg,
	}
}

// Retrieve runs every strategy family the classification calls for and
// merges their output. Returns domain.ErrNoDataFound when all
// strategies come back empty, distinct from an empty successful merge.
func (s *Service) Retrieve(ctx context.Context, norm domain.NormalizedQuery, c domain.Classification) (domain.RetrievalResult, error) {
	ents := c.Entities

	var results []domain.StrategyResult

	if len(ents.Articles) > 0 {
		results = append(results, s.searchLegal(ctx, ents.Articles))
	}
	if ents.Hierarchy != nil {
		results = append(results, s.searchHierarchy(ctx, ents.Hierarchy))
	}
	if c.Strategy != domain.StrategyModeUnstructuredOnly {
		results = append(results, s.searchStructured(ctx, norm, ents)...)
	}
	if c.Strategy != domain.StrategyModeStructuredOnly {
		results = append(results, s.searchSemantic(ctx, norm.Raw))
	}

	var attempted []string
	for _, sr := range results {
		attempted = append(attempted, sr.Strategy)
	}

	merged := mergeResults(norm.Raw, ents, results, s.cfg.ResultLimit)
	if len(merged) == 0 {
		return domain.RetrievalResult{Strategies: attempted}, domain.ErrNoDataFound
	}

	return domain.RetrievalResult{
		Records:    merged,
		Strategies: attempted,
		Confidence: resultConfidence(results),
	}, nil
}

// searchLegal tries exact, fuzzy, then wildcard article lookup,
// stopping at the first strategy that produces records.
func (s *Service) searchLegal(ctx context.Context, refs []domain.ArticleRef) domain.StrategyResult {
	var variants []string
	var lawType string
	for _, ref := range refs {
		variants = append(variants, normalize.ArticleNumberVariants(ref.Number)...)
		if lawType == "" {
			lawType = ref.LawType
		}
	}

	if recs := s.try(ctx, domain.StrategyArticleExact, func() ([]domain.Record, error) {
		return s.legal.FindArticleExact(ctx, variants, lawType, s.cfg.ResultLimit)
	}); len(recs) > 0 {
		return domain.StrategyResult{Strategy: domain.StrategyArticleExact, Records: recs}
	}

	var patterns []string
	for _, ref := range refs {
		patterns = append(patterns,
			fmt.Sprintf("Art. %s", ref.Number),
			fmt.Sprintf("Artigo %s", ref.Number),
		)
	}
	if recs := s.try(ctx, domain.StrategyArticleFuzzy, func() ([]domain.Record, error) {
		return s.legal.FindArticleFuzzy(ctx, patterns, lawType, s.cfg.ResultLimit)
	}); len(recs) > 0 {
		return domain.StrategyResult{Strategy: domain.StrategyArticleFuzzy, Records: recs}
	}

	recs := s.try(ctx, domain.StrategyArticleWildcard, func() ([]domain.Record, error) {
		return s.legal.FindArticleWildcard(ctx, variants, lawType, s.cfg.ResultLimit)
	})
	return domain.StrategyResult{Strategy: domain.StrategyArticleWildcard, Records: recs}
}

// searchHierarchy fans out title, full-text, and hierarchy-table
// lookups over every reference variant, then falls back to the static
// article-range approximation when everything comes back empty.
func (s *Service) searchHierarchy(ctx context.Context, ref *domain.HierarchyRef) domain.StrategyResult {
	var byTitle, byContent, byTable []domain.Record

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		byTitle = s.overVariants(gctx, ref, s.legal.FindByTitle)
		return nil
	})
	g.Go(func() error {
		byContent = s.overVariants(gctx, ref, s.legal.FindByContent)
		return nil
	})
	g.Go(func() error {
		byTable = s.overVariants(gctx, ref, s.legal.FindHierarchy)
		return nil
	})
	_ = g.Wait()

	recs := append(append(byTitle, byContent...), byTable...)
	if len(recs) > 0 {
		metrics.RetrievalStrategiesTotal.WithLabelValues(domain.StrategyHierarchy, "hit").Inc()
		return domain.StrategyResult{Strategy: domain.StrategyHierarchy, Records: recs}
	}
	metrics.RetrievalStrategiesTotal.WithLabelValues(domain.StrategyHierarchy, "empty").Inc()

	from, to, ok := hierarchyRange(ref)
	if !ok {
		return domain.StrategyResult{Strategy: domain.StrategyHierarchy}
	}
	ranged := s.try(ctx, domain.StrategyHierarchyRange, func() ([]domain.Record, error) {
		return s.legal.FindArticleRange(ctx, ref.DocType, from, to)
	})
	return domain.StrategyResult{Strategy: domain.StrategyHierarchyRange, Records: ranged}
}

func (s *Service) overVariants(ctx context.Context, ref *domain.HierarchyRef, find func(context.Context, string, string, int) ([]domain.Record, error)) []domain.Record {
	var recs []domain.Record
	for _, v := range ref.Variants {
		found, err := find(ctx, v, ref.DocType, s.cfg.ResultLimit)
		if err != nil {
			logger.FromContext(ctx).Warn("hierarchy sub-search failed",
				zap.String("variant", v), zap.Error(err))
			continue
		}
		recs = append(recs, found...)
	}
	return recs
}

// searchStructured builds filter conditions strictly from extracted
// entities. With no entity it scans remaining tokens against the
// neighborhood registry; an empty entity lookup falls back to the
// keyword index.
func (s *Service) searchStructured(ctx context.Context, norm domain.NormalizedQuery, ents domain.Entities) []domain.StrategyResult {
	if ents.HasStructured() {
		recs := s.structuredByEntities(ctx, ents)
		if len(recs) > 0 {
			metrics.RetrievalStrategiesTotal.WithLabelValues(domain.StrategyStructured, "hit").Inc()
			return []domain.StrategyResult{{Strategy: domain.StrategyStructured, Records: recs}}
		}
		metrics.RetrievalStrategiesTotal.WithLabelValues(domain.StrategyStructured, "empty").Inc()

		fallback := s.try(ctx, domain.StrategyKeywordFallback, func() ([]domain.Record, error) {
			return s.keywords.FindByKeywords(ctx, keywordKeys(ents), s.cfg.ResultLimit)
		})
		return []domain.StrategyResult{
			{Strategy: domain.StrategyStructured},
			{Strategy: domain.StrategyKeywordFallback, Records: fallback},
		}
	}

	name := normalize.ScanTokensForNeighborhood(norm.Raw)
	if name == "" {
		return nil
	}
	recs := s.try(ctx, domain.StrategyRegistryScan, func() ([]domain.Record, error) {
		return s.regime.FindByNeighborhood(ctx, name, s.cfg.ResultLimit)
	})
	return []domain.StrategyResult{{Strategy: domain.StrategyRegistryScan, Records: recs}}
}

func (s *Service) structuredByEntities(ctx context.Context, ents domain.Entities) []domain.Record {
	var byNeighborhood, byZone []domain.Record

	g, gctx := errgroup.WithContext(ctx)
	if ents.Neighborhood != "" {
		g.Go(func() error {
			var err error
			byNeighborhood, err = s.regime.FindByNeighborhood(gctx, ents.Neighborhood, s.cfg.ResultLimit)
			if err != nil {
				logger.FromContext(ctx).Warn("neighborhood lookup failed", zap.Error(err))
				byNeighborhood = nil
			}
			return nil
		})
	}
	if ents.ZoneCode != "" {
		g.Go(func() error {
			var err error
			byZone, err = s.regime.FindByZone(gctx, ents.ZoneCode, s.cfg.ResultLimit)
			if err != nil {
				logger.FromContext(ctx).Warn("zone lookup failed", zap.Error(err))
				byZone = nil
			}
			return nil
		})
	}
	_ = g.Wait()

	return append(byNeighborhood, byZone...)
}

// searchSemantic embeds the query and runs a threshold-filtered top-k
// similarity search, relaxing the threshold once when empty.
func (s *Service) searchSemantic(ctx context.Context, query string) domain.StrategyResult {
	vector, err := s.embed.Embed(ctx, query)
	if err != nil {
		logger.FromContext(ctx).Warn("query embedding failed", zap.Error(err))
		metrics.RetrievalStrategiesTotal.WithLabelValues(domain.StrategySemantic, "error").Inc()
		return domain.StrategyResult{Strategy: domain.StrategySemantic}
	}

	recs := s.try(ctx, domain.StrategySemantic, func() ([]domain.Record, error) {
		return s.semantic.MatchSections(ctx, vector, s.cfg.MatchThreshold, s.cfg.ResultLimit)
	})
	if len(recs) == 0 {
		recs = s.try(ctx, domain.StrategySemantic, func() ([]domain.Record, error) {
			return s.semantic.MatchSections(ctx, vector, s.cfg.FallbackThreshold, s.cfg.ResultLimit)
		})
	}
	return domain.StrategyResult{Strategy: domain.StrategySemantic, Records: recs}
}

// try runs one sub-search, converting an error into an empty result.
func (s *Service) try(ctx context.Context, strategy string, find func() ([]domain.Record, error)) []domain.Record {
	recs, err := find()
	switch {
	case err != nil:
		logger.FromContext(ctx).Warn("sub-search failed",
			zap.String("strategy", strategy), zap.Error(err))
		metrics.RetrievalStrategiesTotal.WithLabelValues(strategy, "error").Inc()
		return nil
	case len(recs) == 0:
		metrics.RetrievalStrategiesTotal.WithLabelValues(strategy, "empty").Inc()
		return nil
	default:
		metrics.RetrievalStrategiesTotal.WithLabelValues(strategy, "hit").Inc()
		return recs
	}
}

// keywordKeys builds the composite keys of the denormalized fallback
// index for the extracted entities.
func keywordKeys(ents domain.Entities) []string {
	var keys []string
	if ents.Neighborhood != "" {
		keys = append(keys, "BAIRRO_"+strings.ReplaceAll(ents.Neighborhood, " ", "_"))
	}
	if ents.ZoneCode != "" {
		digits := strings.TrimPrefix(ents.ZoneCode, "ZOT ")
		keys = append(keys,
			"ZONA_"+digits,
			"ZOT_"+strings.TrimLeft(digits, "0"),
		)
	}
	return keys
}

// resultConfidence maps the best non-empty strategy family to a
// confidence tier: structured/exact primary, fallback-as-primary, or
// semantic-only.
func resultConfidence(results []domain.StrategyResult) float64 {
	primary := map[string]bool{
		domain.StrategyArticleExact: true,
		domain.StrategyStructured:   true,
		domain.StrategyHierarchy:    true,
	}
	fallback := map[string]bool{
		domain.StrategyArticleFuzzy:    true,
		domain.StrategyArticleWildcard: true,
		domain.StrategyRegistryScan:    true,
		domain.StrategyKeywordFallback: true,
		domain.StrategyHierarchyRange:  true,
	}

	conf := 0.0
	for _, sr := range results {
		if sr.Empty() {
			continue
		}
		switch {
		case primary[sr.Strategy]:
			return 0.9
		case fallback[sr.Strategy]:
			if conf < 0.7 {
				conf = 0.7
			}
		case sr.Strategy == domain.StrategySemantic:
			if conf < 0.5 {
				conf = 0.5
			}
		}
	}
	return conf
}
