package analyzer

import (
	"regexp"
	"strings"

	"github.com/cidade-aberta/urbanq/internal/domain"
	"github.com/cidade-aberta/urbanq/internal/domain/normalize"
)

// ruleInput is the precomputed view of a query shared by all rules.
// folded is lowercase with diacritics stripped and whitespace collapsed.
type ruleInput struct {
	raw    string
	folded string
	tokens int
	norm   domain.NormalizedQuery
}

func newRuleInput(query string, norm domain.NormalizedQuery) ruleInput {
	return ruleInput{
		raw:    query,
		folded: strings.ToLower(normalize.NeighborhoodName(query)),
		tokens: normalize.TokenCount(query),
		norm:   norm,
	}
}

// rule pairs a predicate with the classification it produces. Rules
// are evaluated in order and the first match wins; the fallback branch
// in service.go runs only when none matches.
type rule struct {
	name  string
	match func(in ruleInput) (domain.Classification, bool)
}

var rules = []rule{
	{"legal_article", matchLegalArticle},
	{"predefined", matchPredefined},
	{"risk", matchRisk},
	{"counting", matchCounting},
	{"construction", matchConstruction},
}

var generalLegalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\binciso\s+[ivx]+`),
	regexp.MustCompile(`\bparagrafo\s*\d+`),
	regexp.MustCompile(`§\s*\d+`),
	regexp.MustCompile(`\bluos\b`),
	regexp.MustCompile(`\bpdus\b`),
	regexp.MustCompile(`\blei\s+(complementar\s+)?n[º°]?\s*\d+`),
	regexp.MustCompile(`\bqual\s+artigo\b`),
	regexp.MustCompile(`\bque\s+artigo\b`),
	regexp.MustCompile(`\blei\s+que\s+trata\b`),
}

// legalTopicHints maps well-known legal topics to the article that
// answers them. Matched against the folded query.
var legalTopicHints = []struct {
	pattern *regexp.Regexp
	article string
	law     string
}{
	{regexp.MustCompile(`certificacao.*sustentabilidade|sustentabilidade.*ambiental`), "Art. 81, Inciso III", "LUOS"},
	{regexp.MustCompile(`4[º°]?\s*distrito|quarto\s+distrito`), "Art. 74", "LUOS"},
	{regexp.MustCompile(`altura\s+maxima.*artigo|artigo.*altura\s+maxima`), "Art. 81", "LUOS"},
	{regexp.MustCompile(`coeficiente.*aproveitamento.*artigo|artigo.*coeficiente`), "Art. 82", "LUOS"},
	{regexp.MustCompile(`\bzeis\b`), "Art. 92", "PDUS"},
	{regexp.MustCompile(`outorga\s+onerosa`), "Art. 86", "LUOS"},
	{regexp.MustCompile(`estudo.*impacto.*vizinhanca|\beiv\b`), "Art. 89", "LUOS"},
	{regexp.MustCompile(`recuos?\s+obrigatorios?`), "Art. 83", "LUOS"},
	{regexp.MustCompile(`areas?\s+de\s+preservacao\s+permanente`), "Art. 95", "PDUS"},
	{regexp.MustCompile(`instrumentos.*politica.*urbana`), "Art. 78", "LUOS"},
}

func matchLegalArticle(in ruleInput) (domain.Classification, bool) {
	hint, hintLaw := legalTopicHint(in.folded)

	legal := len(in.norm.Entities.Articles) > 0 || hint != ""
	if !legal {
		for _, p := range generalLegalPatterns {
			if p.MatchString(in.folded) {
				legal = true
				break
			}
		}
	}
	if !legal {
		return domain.Classification{}, false
	}

	ents := in.norm.Entities
	if hint != "" && len(ents.Articles) == 0 {
		if n := hintArticleNumber(hint); n != "" {
			ents.Articles = []domain.ArticleRef{{Number: n, LawType: hintLaw}}
		}
	}

	return domain.Classification{
		Intent:      domain.IntentLegalArticle,
		QueryType:   domain.QueryTypeGeneral,
		Strategy:    domain.StrategyModeHybrid,
		Confidence:  0.95,
		Datasets:    []string{domain.DatasetLegal},
		Entities:    ents,
		ArticleHint: hint,
	}, true
}

func legalTopicHint(folded string) (article, law string) {
	for _, h := range legalTopicHints {
		if h.pattern.MatchString(folded) {
			return h.article, h.law
		}
	}
	return "", ""
}

var hintNumberPattern = regexp.MustCompile(`\d+`)

func hintArticleNumber(hint string) string {
	return hintNumberPattern.FindString(hint)
}

var predefinedKeywords = []string{
	"objetivos", "objetivo", "cinco principais",
}

func matchPredefined(in ruleInput) (domain.Classification, bool) {
	for _, kw := range predefinedKeywords {
		if strings.Contains(in.folded, kw) {
			return domain.Classification{
				Intent:     domain.IntentPredefined,
				QueryType:  domain.QueryTypeGeneral,
				Strategy:   domain.StrategyModeUnstructuredOnly,
				Confidence: 1.0,
				Entities:   in.norm.Entities,
			}, true
		}
	}
	return domain.Classification{}, false
}

var riskKeywords = []string{
	"risco", "inundacao", "alagamento", "enchente", "cheia",
	"deslizamento", "vendaval", "granizo", "desastre",
	"cota de inundacao", "area de risco", "zona de risco", "acima da cota",
}

func matchRisk(in ruleInput) (domain.Classification, bool) {
	for _, kw := range riskKeywords {
		if strings.Contains(in.folded, kw) {
			return domain.Classification{
				Intent:     domain.IntentTabular,
				QueryType:  domain.QueryTypeRisk,
				Strategy:   domain.StrategyModeStructuredOnly,
				Confidence: 0.9,
				Datasets:   []string{domain.DatasetZones},
				Entities:   in.norm.Entities,
			}, true
		}
	}
	return domain.Classification{}, false
}

var countingKeywords = []string{
	"quantos", "quantas", "quantidade", "total de", "numero de",
	"listar", "liste", "media de", "indice medio",
}

func matchCounting(in ruleInput) (domain.Classification, bool) {
	subject := strings.Contains(in.folded, "bairro") ||
		strings.Contains(in.folded, "zona") ||
		strings.Contains(in.folded, "zot")
	if !subject {
		return domain.Classification{}, false
	}
	for _, kw := range countingKeywords {
		if strings.Contains(in.folded, kw) {
			return domain.Classification{
				Intent:     domain.IntentTabular,
				QueryType:  domain.QueryTypeCounting,
				Strategy:   domain.StrategyModeStructuredOnly,
				Confidence: 0.9,
				Datasets:   []string{domain.DatasetZones},
				Entities:   in.norm.Entities,
			}, true
		}
	}
	return domain.Classification{}, false
}

func matchConstruction(in ruleInput) (domain.Classification, bool) {
	ents := in.norm.Entities

	hasParams := len(ents.Parameters) > 0
	shortBareName := in.tokens <= 3 && ents.HasStructured()
	zoneOnly := ents.ZoneCode != ""

	if !(hasParams && ents.HasStructured()) && !shortBareName && !zoneOnly {
		return domain.Classification{}, false
	}

	return domain.Classification{
		Intent:              domain.IntentTabular,
		QueryType:           domain.QueryTypeRegime,
		Strategy:            domain.StrategyModeStructuredOnly,
		IsConstructionQuery: true,
		Confidence:          0.9,
		Datasets:            []string{domain.DatasetRegime, domain.DatasetZones},
		Entities:            ents,
	}, true
}
