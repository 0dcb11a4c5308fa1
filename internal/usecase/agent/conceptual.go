package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

// Conceptual answers open-ended questions from the unstructured corpus.
type Conceptual struct {
	retriever Retriever
}

// NewConceptual creates the conceptual agent.
func NewConceptual(retriever Retriever) *Conceptual {
	return &Conceptual{retriever: retriever}
}

func (a *Conceptual) Type() string { return domain.AgentConceptual }

func (a *Conceptual) Execute(ctx context.Context, query string, actx Context) (domain.AgentResult, error) {
	c := actx.Classification
	c.Strategy = domain.StrategyModeUnstructuredOnly

	res, err := a.retriever.Retrieve(ctx, actx.Normalized, c)
	if errors.Is(err, domain.ErrNoDataFound) {
		return domain.AgentResult{
			Type:       domain.AgentConceptual,
			Confidence: 0.3,
			Summary:    "Nenhum trecho relevante foi localizado nos documentos do plano diretor.",
		}, nil
	}
	if err != nil {
		return domain.AgentResult{}, fmt.Errorf("conceptual retrieval: %w", err)
	}

	return domain.AgentResult{
		Type:       domain.AgentConceptual,
		Confidence: res.Confidence,
		Data:       res.Records,
		Summary:    summarizeSections(res.Records),
		Metadata:   map[string]string{"strategies": strings.Join(res.Strategies, ",")},
	}, nil
}

func summarizeSections(recs []domain.Record) string {
	if len(recs) == 0 {
		return "Nenhum trecho relevante encontrado."
	}
	return fmt.Sprintf("%d trechos relevantes localizados nos documentos do plano diretor.", len(recs))
}
