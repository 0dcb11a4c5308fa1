package orchestrator

import (
	"testing"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

func TestRoute_AlwaysIncludesValidator(t *testing.T) {
	cases := []domain.Classification{
		{Intent: domain.IntentLegalArticle},
		{Intent: domain.IntentConceptual},
		{Intent: domain.IntentTabular, Entities: domain.Entities{Neighborhood: "CENTRO HISTORICO"}},
		{},
	}
	for _, c := range cases {
		if !containsType(route(c), domain.AgentValidator) {
			t.Fatalf("routing for %+v dropped the validator", c)
		}
	}
}

func TestRoute_LegalIntent(t *testing.T) {
	types := route(domain.Classification{Intent: domain.IntentLegalArticle})
	if !containsType(types, domain.AgentLegal) {
		t.Fatalf("types = %v, want legal agent", types)
	}
}

func TestRoute_CountingQueryType(t *testing.T) {
	types := route(domain.Classification{
		Intent:    domain.IntentTabular,
		QueryType: domain.QueryTypeCounting,
	})
	if !containsType(types, domain.AgentCounting) {
		t.Fatalf("types = %v, want counting agent", types)
	}
}

func TestRoute_StructuredEntitiesGetUrban(t *testing.T) {
	types := route(domain.Classification{
		Intent:   domain.IntentTabular,
		Entities: domain.Entities{ZoneCode: "ZOT 07"},
	})
	if !containsType(types, domain.AgentUrban) {
		t.Fatalf("types = %v, want urban agent", types)
	}
}

func TestRoute_NeverValidatorOnly(t *testing.T) {
	types := route(domain.Classification{})
	if len(types) < 2 {
		t.Fatalf("types = %v, want a retrieval agent alongside the validator", types)
	}
	if !containsType(types, domain.AgentConceptual) {
		t.Fatalf("types = %v, want conceptual default", types)
	}
}

func TestWithCritical_AddsLegalOnce(t *testing.T) {
	types := withCritical([]string{domain.AgentValidator, domain.AgentConceptual})
	if !containsType(types, domain.AgentLegal) {
		t.Fatalf("types = %v, want legal added", types)
	}

	again := withCritical([]string{domain.AgentValidator, domain.AgentLegal})
	count := 0
	for _, v := range again {
		if v == domain.AgentLegal {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("legal present %d times, want 1", count)
	}
}
