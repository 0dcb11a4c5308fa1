package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

// Validator scores the query itself: it flags questions that are out
// of the urban-planning scope and penalizes overly generic ones.
type Validator struct{}

// NewValidator creates the validator agent.
func NewValidator() *Validator { return &Validator{} }

func (a *Validator) Type() string { return domain.AgentValidator }

// offTopicPatterns are substrings of questions the corpus cannot
// answer. Matching one drops confidence to 0.3.
var offTopicPatterns = []string{
	"quantos habitantes",
	"gramado",
	"temperatura hoje",
	"preço bitcoin",
	"preco bitcoin",
	"resultados futebol",
}

var scopeMarkers = []string{
	"artigo", "art.", "art ", "lei", "luos", "pdus", "plano diretor",
	"bairro", "zona", "zot", "construir", "altura", "coeficiente",
	"regime", "urbanístico", "urbanistico", "outorga", "eiv", "zeis",
	"risco", "inundação", "inundacao",
}

func (a *Validator) Execute(ctx context.Context, query string, actx Context) (domain.AgentResult, error) {
	folded := strings.ToLower(query)

	confidence := 0.8
	var issues []string

	for _, p := range offTopicPatterns {
		if strings.Contains(folded, p) {
			confidence = 0.3
			issues = append(issues, "Query fora do escopo urbano/legal")
			break
		}
	}

	if len(issues) == 0 && !a.hasScopeReference(folded, actx.Classification.Entities) {
		confidence *= 0.8
		issues = append(issues, "Query muito genérica")
	}

	meta := map[string]string{"issues": strings.Join(issues, "; ")}
	return domain.AgentResult{
		Type:       domain.AgentValidator,
		Confidence: confidence,
		Summary:    fmt.Sprintf("Validação da consulta: confiança %.2f.", confidence),
		Metadata:   meta,
	}, nil
}

func (a *Validator) hasScopeReference(folded string, ents domain.Entities) bool {
	if ents.HasStructured() || len(ents.Articles) > 0 || ents.Hierarchy != nil {
		return true
	}
	for _, m := range scopeMarkers {
		if strings.Contains(folded, m) {
			return true
		}
	}
	return false
}
