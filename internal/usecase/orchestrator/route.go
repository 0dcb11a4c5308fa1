package orchestrator

import (
	"github.com/cidade-aberta/urbanq/internal/domain"
)

// route selects agent types for a classification. The validator is
// always included so every answer carries a scope check.
func route(c domain.Classification) []string {
	types := []string{domain.AgentValidator}

	if len(c.Entities.Articles) > 0 || c.Intent == domain.IntentLegalArticle {
		types = append(types, domain.AgentLegal)
	}
	if c.QueryType == domain.QueryTypeCounting {
		types = append(types, domain.AgentCounting)
	}
	if c.Entities.HasStructured() || c.IsConstructionQuery || c.QueryType == domain.QueryTypeRegime {
		types = append(types, domain.AgentUrban)
	}
	if c.Intent == domain.IntentConceptual || c.Intent == domain.IntentPredefined ||
		c.Intent == domain.IntentHybrid || c.Entities.Hierarchy != nil {
		types = append(types, domain.AgentConceptual)
	}

	// never leave a query with only the validator
	if len(types) == 1 {
		types = append(types, domain.AgentConceptual)
	}
	return types
}

// criticalAgents are re-executed on refinement regardless of routing.
var criticalAgents = []string{domain.AgentLegal}

// withCritical extends a routed set with the critical agents.
func withCritical(types []string) []string {
	out := append([]string(nil), types...)
	for _, c := range criticalAgents {
		if !containsType(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func containsType(types []string, t string) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}
