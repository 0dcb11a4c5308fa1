package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

// Legal retrieves legal articles for queries with article references
// or legal intent.
type Legal struct {
	retriever Retriever
}

// NewLegal creates the legal agent.
func NewLegal(retriever Retriever) *Legal {
	return &Legal{retriever: retriever}
}

func (a *Legal) Type() string { return domain.AgentLegal }

// Execute retrieves the referenced articles. A fully empty retrieval
// is a low-confidence outcome, not a failure.
func (a *Legal) Execute(ctx context.Context, query string, actx Context) (domain.AgentResult, error) {
	c := actx.Classification
	c.Strategy = domain.StrategyModeHybrid

	res, err := a.retriever.Retrieve(ctx, actx.Normalized, c)
	if errors.Is(err, domain.ErrNoDataFound) {
		return domain.AgentResult{
			Type:       domain.AgentLegal,
			Confidence: 0.3,
			Summary:    "Nenhum artigo correspondente foi localizado na base legal.",
		}, nil
	}
	if err != nil {
		return domain.AgentResult{}, fmt.Errorf("legal retrieval: %w", err)
	}

	result := domain.AgentResult{
		Type:       domain.AgentLegal,
		Confidence: res.Confidence,
		Data:       res.Records,
		Summary:    summarizeArticles(res.Records),
		Metadata:   map[string]string{"strategies": strings.Join(res.Strategies, ",")},
	}
	if c.ArticleHint != "" {
		result.Metadata["article_hint"] = c.ArticleHint
	}
	return result, nil
}

func summarizeArticles(recs []domain.Record) string {
	var parts []string
	for _, r := range recs {
		if len(parts) == 3 {
			break
		}
		num := r.Metadata["article_number"]
		law := r.Metadata["document_type"]
		switch {
		case num != "" && law != "":
			parts = append(parts, fmt.Sprintf("Art. %s (%s)", num, law))
		case num != "":
			parts = append(parts, "Art. "+num)
		case r.Title != "":
			parts = append(parts, r.Title)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d trechos legais encontrados.", len(recs))
	}
	return "Referências encontradas: " + strings.Join(parts, ", ")
}
