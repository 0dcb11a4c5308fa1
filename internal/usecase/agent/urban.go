package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

// Urban answers tabular regime/zoning questions from the structured
// stores.
type Urban struct {
	retriever Retriever
}

// NewUrban creates the urban agent.
func NewUrban(retriever Retriever) *Urban {
	return &Urban{retriever: retriever}
}

func (a *Urban) Type() string { return domain.AgentUrban }

// Execute looks up building parameters for the extracted entities.
// Confidence tiers: both entities 0.85, single entity 0.7, fallback
// data 0.6.
func (a *Urban) Execute(ctx context.Context, query string, actx Context) (domain.AgentResult, error) {
	c := actx.Classification
	c.Strategy = domain.StrategyModeStructuredOnly

	res, err := a.retriever.Retrieve(ctx, actx.Normalized, c)
	if errors.Is(err, domain.ErrNoDataFound) {
		return domain.AgentResult{
			Type:       domain.AgentUrban,
			Confidence: 0.3,
			Summary:    "Nenhum dado de regime urbanístico foi encontrado para a consulta.",
		}, nil
	}
	if err != nil {
		return domain.AgentResult{}, fmt.Errorf("urban retrieval: %w", err)
	}

	return domain.AgentResult{
		Type:       domain.AgentUrban,
		Confidence: a.confidence(c.Entities, res),
		Data:       res.Records,
		Summary:    summarizeRegime(c.Entities, res.Records),
		Metadata:   map[string]string{"strategies": strings.Join(res.Strategies, ",")},
	}, nil
}

func (a *Urban) confidence(ents domain.Entities, res domain.RetrievalResult) float64 {
	fromStructured := false
	for _, rec := range res.Records {
		if rec.Source == "regime_urbanistico" || rec.Source == "zots_bairros" {
			fromStructured = true
			break
		}
	}
	switch {
	case fromStructured && ents.Neighborhood != "" && ents.ZoneCode != "":
		return 0.85
	case fromStructured && ents.HasStructured():
		return 0.7
	default:
		return 0.6
	}
}

func summarizeRegime(ents domain.Entities, recs []domain.Record) string {
	var zones []string
	seen := make(map[string]struct{})
	for _, r := range recs {
		z := r.Metadata["zona"]
		if z == "" {
			continue
		}
		if _, dup := seen[z]; dup {
			continue
		}
		seen[z] = struct{}{}
		zones = append(zones, z)
	}

	subject := ents.Neighborhood
	if subject == "" {
		subject = ents.ZoneCode
	}
	if subject == "" {
		return fmt.Sprintf("%d registros de regime urbanístico encontrados.", len(recs))
	}
	if len(zones) == 0 {
		return fmt.Sprintf("Dados urbanísticos encontrados para %s.", subject)
	}
	return fmt.Sprintf("%s: zonas %s.", subject, strings.Join(zones, ", "))
}
