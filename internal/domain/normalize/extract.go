package normalize

import (
	"strings"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

// Construction parameter vocabulary, grouped by the canonical
// parameter each synonym maps to.
var constructionParams = []struct {
	canonical string
	synonyms  []string
}{
	{"altura", []string{
		"altura", "altura maxima", "gabarito", "elevacao", "limite de altura",
		"altura permitida", "metros de altura",
	}},
	{"coeficiente_aproveitamento", []string{
		"coeficiente de aproveitamento", "coeficiente", "ca maximo", "ca basico",
		"indice de aproveitamento", "indice construtivo", "potencial construtivo",
	}},
	{"taxa_ocupacao", []string{
		"taxa de ocupacao", "taxa ocupacao", "to maxima", "ocupacao do terreno",
	}},
	{"regime_urbanistico", []string{
		"regime urbanistico", "o que pode ser construido", "parametros construtivos",
		"parametros urbanisticos",
	}},
}

// ExtractConstructionParams returns canonical parameter names mentioned
// in the query.
func ExtractConstructionParams(query string) []string {
	q := " " + NeighborhoodName(query) + " "
	var params []string
	for _, p := range constructionParams {
		for _, syn := range p.synonyms {
			if strings.Contains(q, " "+NeighborhoodName(syn)+" ") {
				params = append(params, p.canonical)
				break
			}
		}
	}
	return params
}

// HasConstructionKeywords reports whether the query mentions any
// building parameter.
func HasConstructionKeywords(query string) bool {
	return len(ExtractConstructionParams(query)) > 0
}

// Extract builds the full normalized view of a query: the variant set
// (always including the original string) and all extracted entities.
func Extract(query string) domain.NormalizedQuery {
	variants := dedupe([]string{
		query,
		CollapseWhitespace(query),
		NeighborhoodName(query),
		strings.ToLower(CollapseWhitespace(query)),
	})

	return domain.NormalizedQuery{
		Raw:      query,
		Variants: variants,
		Entities: domain.Entities{
			Neighborhood: ExtractNeighborhood(query),
			ZoneCode:     ExtractZoneCode(query),
			Articles:     ExtractArticleReferences(query),
			Hierarchy:    ExtractHierarchyReference(query),
			Parameters:   ExtractConstructionParams(query),
		},
	}
}

// TokenCount returns the number of whitespace-separated tokens.
func TokenCount(query string) int {
	return len(strings.Fields(query))
}
