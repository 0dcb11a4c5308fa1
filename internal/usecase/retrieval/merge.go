package retrieval

import (
	"sort"
	"strings"

	"github.com/cidade-aberta/urbanq/internal/domain"
	"github.com/cidade-aberta/urbanq/internal/domain/normalize"
)

// Merge scoring weights.
const (
	phraseWeight   = 10
	keywordWeight  = 2
	numericWeight  = 5
	categoryWeight = 3
)

// scoringContext holds the query-side inputs to record scoring,
// precomputed once per merge.
type scoringContext struct {
	phrase   string
	keywords []string
	numbers  []string
	category string
}

func newScoringContext(query string, ents domain.Entities) scoringContext {
	folded := strings.ToLower(normalize.NeighborhoodName(query))

	var keywords []string
	for _, tok := range strings.Fields(folded) {
		if len(tok) > 3 {
			keywords = append(keywords, tok)
		}
	}

	var numbers []string
	for _, a := range ents.Articles {
		numbers = append(numbers, a.Number)
	}
	if ents.ZoneCode != "" {
		numbers = append(numbers, strings.TrimLeft(strings.TrimPrefix(ents.ZoneCode, "ZOT "), "0"))
	}

	var category string
	for _, a := range ents.Articles {
		if a.LawType != "" {
			category = a.LawType
			break
		}
	}
	if category == "" && ents.Hierarchy != nil {
		category = ents.Hierarchy.DocType
	}

	return scoringContext{
		phrase:   folded,
		keywords: keywords,
		numbers:  numbers,
		category: category,
	}
}

// scoreRecord computes the weighted relevance of one record: exact
// phrase containment, per-keyword matches, numeric-identifier match,
// and category match.
func scoreRecord(rec domain.Record, sc scoringContext) float64 {
	content := strings.ToLower(normalize.RemoveAccents(rec.Title + " " + rec.Content))

	var score float64
	if sc.phrase != "" && strings.Contains(content, sc.phrase) {
		score += phraseWeight
	}
	for _, kw := range sc.keywords {
		if strings.Contains(content, kw) {
			score += keywordWeight
		}
	}
	for _, num := range sc.numbers {
		if num != "" && strings.Contains(content, num) {
			score += numericWeight
			break
		}
	}
	if sc.category != "" && strings.EqualFold(rec.Metadata["document_type"], sc.category) {
		score += categoryWeight
	}
	return score
}

// mergeResults deduplicates strategy outputs by record ID (first
// strategy wins), rescores, sorts by score descending with ties broken
// by original strategy order, and caps to limit.
func mergeResults(query string, ents domain.Entities, strategies []domain.StrategyResult, limit int) []domain.Record {
	sc := newScoringContext(query, ents)

	seen := make(map[string]struct{})
	var merged []domain.Record
	for _, sr := range strategies {
		for _, rec := range sr.Records {
			if _, dup := seen[rec.ID]; dup {
				continue
			}
			seen[rec.ID] = struct{}{}
			rec.Score = scoreRecord(rec, sc)
			merged = append(merged, rec)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
