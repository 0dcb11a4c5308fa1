package analyzer

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/cidade-aberta/urbanq/internal/domain"
	"github.com/cidade-aberta/urbanq/internal/domain/normalize"
	"github.com/cidade-aberta/urbanq/internal/logger"
)

// Service classifies queries: an ordered rule list first, then a
// completion-backed fallback. Upstream failures never propagate; the
// fallback always produces a usable classification.
type Service struct {
	completer Completer
}

// New creates an analyzer service.
func New(completer Completer) *Service {
	return &Service{completer: completer}
}

// Analyze classifies a query and extracts its entities. The only
// error returned is domain.ErrEmptyQuery.
func (s *Service) Analyze(ctx context.Context, query string) (domain.Classification, error) {
	if strings.TrimSpace(query) == "" {
		return domain.Classification{}, domain.ErrEmptyQuery
	}

	norm := normalize.Extract(query)
	in := newRuleInput(query, norm)

	for _, r := range rules {
		if c, ok := r.match(in); ok {
			logger.FromContext(ctx).Debug("query classified by rule",
				zap.String("rule", r.name),
				zap.String("intent", c.Intent))
			return s.postProcess(c, norm), nil
		}
	}

	c := s.classifyWithCompleter(ctx, in)
	return s.postProcess(c, norm), nil
}

const classifySystemPrompt = `Você é um analisador de consultas sobre o plano diretor (PDUS) e a lei de uso do solo (LUOS) de Porto Alegre.

Classifique a consulta do usuário e responda APENAS com JSON válido nesta estrutura:
{
  "intent": "conceptual|tabular|hybrid",
  "queryType": "regime|risk|counting|general",
  "strategy": "structured_only|unstructured_only|hybrid",
  "isConstructionQuery": true|false,
  "confidence": 0.0,
  "entities": {
    "bairros": ["nomes de bairros em maiúsculas"],
    "zots": ["zonas no formato ZOT XX"],
    "parametros": ["parâmetros urbanísticos mencionados"]
  }
}

Regras:
- "Porto Alegre" é o nome da cidade, nunca um bairro; não o inclua em entities.bairros.
- Nomes isolados de 1-3 palavras são consultas tabulares de bairro (isConstructionQuery: true).
- Consultas de contagem ("quantos", "total de") nunca são de construção.
- Diferencie bairros similares ("BOA VISTA" e "BOA VISTA DO SUL" são distintos).`

// llmClassification is the constrained JSON shape the completer is
// asked to produce.
type llmClassification struct {
	Intent              string  `json:"intent"`
	QueryType           string  `json:"queryType"`
	Strategy            string  `json:"strategy"`
	IsConstructionQuery bool    `json:"isConstructionQuery"`
	Confidence          float64 `json:"confidence"`
	Entities            struct {
		Bairros    []string `json:"bairros"`
		Zots       []string `json:"zots"`
		Parametros []string `json:"parametros"`
	} `json:"entities"`
}

func (s *Service) classifyWithCompleter(ctx context.Context, in ruleInput) domain.Classification {
	log := logger.FromContext(ctx)

	raw, err := s.completer.Complete(ctx, "classify", classifySystemPrompt,
		`Classifique esta consulta: "`+in.raw+`"`)
	if err != nil {
		log.Warn("classification completion failed, using heuristic", zap.Error(err))
		return s.heuristic(in, 0.5)
	}

	var parsed llmClassification
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		log.Warn("classification parse failed, using heuristic",
			zap.Error(err), zap.String("content", raw))
		return s.heuristic(in, 0.7)
	}

	return s.fromLLM(parsed, in)
}

// heuristic is the deterministic fallback when the completer fails or
// returns unparseable output.
func (s *Service) heuristic(in ruleInput, confidence float64) domain.Classification {
	return domain.Classification{
		Intent:     domain.IntentHybrid,
		QueryType:  domain.QueryTypeGeneral,
		Strategy:   domain.StrategyModeHybrid,
		Confidence: confidence,
		Datasets:   []string{domain.DatasetRegime, domain.DatasetZones},
		Entities:   in.norm.Entities,
	}
}

// fromLLM converts a parsed completion into a classification, merging
// in regex-extracted entities the model may have missed.
func (s *Service) fromLLM(parsed llmClassification, in ruleInput) domain.Classification {
	c := domain.Classification{
		Intent:              validIntent(parsed.Intent),
		QueryType:           validQueryType(parsed.QueryType),
		Strategy:            validStrategy(parsed.Strategy),
		IsConstructionQuery: parsed.IsConstructionQuery,
		Confidence:          clamp01(parsed.Confidence),
		Entities:            in.norm.Entities,
	}

	if c.Entities.Neighborhood == "" {
		for _, b := range parsed.Entities.Bairros {
			name := normalize.NeighborhoodName(b)
			if name != "" && !strings.Contains(name, normalize.CityName) {
				c.Entities.Neighborhood = name
				break
			}
		}
	}
	if c.Entities.ZoneCode == "" {
		for _, z := range parsed.Entities.Zots {
			if code := normalize.ExtractZoneCode(z); code != "" {
				c.Entities.ZoneCode = code
				break
			}
		}
	}
	for _, p := range parsed.Entities.Parametros {
		folded := strings.ToLower(normalize.NeighborhoodName(p))
		if folded != "" && !containsString(c.Entities.Parameters, folded) {
			c.Entities.Parameters = append(c.Entities.Parameters, folded)
		}
	}

	return c
}

// postProcess enforces the entity invariants shared by all branches:
// the city name is never a neighborhood, and a construction
// classification without a structured entity demotes to conceptual.
func (s *Service) postProcess(c domain.Classification, norm domain.NormalizedQuery) domain.Classification {
	if strings.Contains(c.Entities.Neighborhood, normalize.CityName) {
		c.Entities.Neighborhood = ""
	}

	if c.IsConstructionQuery && !c.Entities.HasStructured() {
		c.Intent = domain.IntentConceptual
		c.Strategy = domain.StrategyModeUnstructuredOnly
		c.IsConstructionQuery = false
		c.Datasets = nil
	}

	if len(c.Datasets) == 0 && c.Strategy != domain.StrategyModeUnstructuredOnly {
		c.Datasets = defaultDatasets(c)
	}
	if c.QueryType == "" {
		c.QueryType = domain.QueryTypeGeneral
	}
	c.Confidence = clamp01(c.Confidence)

	return c
}

func defaultDatasets(c domain.Classification) []string {
	switch {
	case c.Intent == domain.IntentLegalArticle:
		return []string{domain.DatasetLegal}
	case c.Strategy == domain.StrategyModeStructuredOnly:
		return []string{domain.DatasetRegime, domain.DatasetZones}
	default:
		return []string{domain.DatasetRegime, domain.DatasetZones, domain.DatasetLegal}
	}
}

var jsonFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// extractJSON unwraps a JSON object from a markdown code fence if the
// completion wrapped it in one.
func extractJSON(content string) string {
	if m := jsonFencePattern.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return strings.TrimSpace(content)
}

func validIntent(s string) string {
	switch s {
	case domain.IntentConceptual, domain.IntentTabular, domain.IntentHybrid:
		return s
	default:
		return domain.IntentHybrid
	}
}

func validQueryType(s string) string {
	switch s {
	case domain.QueryTypeRegime, domain.QueryTypeRisk, domain.QueryTypeCounting, domain.QueryTypeGeneral:
		return s
	default:
		return domain.QueryTypeGeneral
	}
}

func validStrategy(s string) string {
	switch s {
	case domain.StrategyModeStructuredOnly, domain.StrategyModeUnstructuredOnly, domain.StrategyModeHybrid:
		return s
	default:
		return domain.StrategyModeHybrid
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
