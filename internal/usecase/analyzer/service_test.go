package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

func TestAnalyze_EmptyQuery(t *testing.T) {
	svc := New(&mockCompleter{})

	_, err := svc.Analyze(context.Background(), "   ")
	if !errors.Is(err, domain.ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestAnalyze_LegalArticleReference(t *testing.T) {
	mock := &mockCompleter{}
	svc := New(mock)

	c, err := svc.Analyze(context.Background(), "O que diz o Art. 81, Inciso III da LUOS?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Intent != domain.IntentLegalArticle {
		t.Errorf("intent = %q, want legal_article", c.Intent)
	}
	if c.Strategy != domain.StrategyModeHybrid {
		t.Errorf("strategy = %q, want hybrid", c.Strategy)
	}
	if c.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", c.Confidence)
	}
	if len(c.Entities.Articles) != 1 || c.Entities.Articles[0].Number != "81" {
		t.Errorf("articles = %+v, want single ref to 81", c.Entities.Articles)
	}
	if mock.calls != 0 {
		t.Errorf("completer called %d times for a rule match", mock.calls)
	}
}

func TestAnalyze_LegalTopicHint(t *testing.T) {
	svc := New(&mockCompleter{})

	c, err := svc.Analyze(context.Background(), "Como funciona a outorga onerosa?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Intent != domain.IntentLegalArticle {
		t.Fatalf("intent = %q, want legal_article", c.Intent)
	}
	if c.ArticleHint != "Art. 86" {
		t.Errorf("article hint = %q, want %q", c.ArticleHint, "Art. 86")
	}
	if len(c.Entities.Articles) != 1 || c.Entities.Articles[0].Number != "86" {
		t.Errorf("articles = %+v, want hint-derived ref to 86", c.Entities.Articles)
	}
}

func TestAnalyze_PredefinedObjectives(t *testing.T) {
	svc := New(&mockCompleter{})

	c, err := svc.Analyze(context.Background(), "Quais são os principais objetivos do plano diretor?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Intent != domain.IntentPredefined {
		t.Errorf("intent = %q, want predefined", c.Intent)
	}
	if c.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", c.Confidence)
	}
}

func TestAnalyze_RiskQuery(t *testing.T) {
	svc := New(&mockCompleter{})

	c, err := svc.Analyze(context.Background(), "Quais bairros têm risco de inundação?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.QueryType != domain.QueryTypeRisk {
		t.Errorf("query type = %q, want risk", c.QueryType)
	}
	if c.Strategy != domain.StrategyModeStructuredOnly {
		t.Errorf("strategy = %q, want structured_only", c.Strategy)
	}
	if c.IsConstructionQuery {
		t.Error("risk query marked as construction")
	}
}

func TestAnalyze_CountingQuery(t *testing.T) {
	svc := New(&mockCompleter{})

	c, err := svc.Analyze(context.Background(), "Quantos bairros tem Porto Alegre?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.QueryType != domain.QueryTypeCounting {
		t.Errorf("query type = %q, want counting", c.QueryType)
	}
	if c.Strategy != domain.StrategyModeStructuredOnly {
		t.Errorf("strategy = %q, want structured_only", c.Strategy)
	}
	if c.IsConstructionQuery {
		t.Error("counting query marked as construction")
	}
	if c.Entities.Neighborhood != "" {
		t.Errorf("city name extracted as neighborhood: %q", c.Entities.Neighborhood)
	}
}

func TestAnalyze_ShortNeighborhoodQuery(t *testing.T) {
	mock := &mockCompleter{}
	svc := New(mock)

	c, err := svc.Analyze(context.Background(), "três figueiras")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Intent != domain.IntentTabular {
		t.Errorf("intent = %q, want tabular", c.Intent)
	}
	if !c.IsConstructionQuery {
		t.Error("short neighborhood query not marked as construction")
	}
	if c.Entities.Neighborhood != "TRÊS FIGUEIRAS" {
		t.Errorf("neighborhood = %q, want TRÊS FIGUEIRAS", c.Entities.Neighborhood)
	}
	wantRegime := false
	for _, d := range c.Datasets {
		if d == domain.DatasetRegime {
			wantRegime = true
		}
	}
	if !wantRegime {
		t.Errorf("datasets = %v, want regime dataset requested", c.Datasets)
	}
	if mock.calls != 0 {
		t.Errorf("completer called %d times for a rule match", mock.calls)
	}
}

func TestAnalyze_ShortNeighborhoodQueryWithQuestionMark(t *testing.T) {
	mock := &mockCompleter{}
	svc := New(mock)

	c, err := svc.Analyze(context.Background(), "três figueiras?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Intent != domain.IntentTabular {
		t.Errorf("intent = %q, want tabular", c.Intent)
	}
	if !c.IsConstructionQuery {
		t.Error("punctuated short neighborhood query not marked as construction")
	}
	if mock.calls != 0 {
		t.Errorf("completer called %d times for a rule match", mock.calls)
	}
}

func TestAnalyze_ConstructionWithZone(t *testing.T) {
	svc := New(&mockCompleter{})

	c, err := svc.Analyze(context.Background(), "Qual a altura máxima na ZOT 7?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsConstructionQuery {
		t.Error("parameter+zone query not marked as construction")
	}
	if c.Entities.ZoneCode != "ZOT 07" {
		t.Errorf("zone = %q, want ZOT 07", c.Entities.ZoneCode)
	}
	if c.Strategy != domain.StrategyModeStructuredOnly {
		t.Errorf("strategy = %q, want structured_only", c.Strategy)
	}
}

func TestAnalyze_FallbackParsesFencedJSON(t *testing.T) {
	mock := &mockCompleter{response: "```json\n" +
		`{"intent":"conceptual","queryType":"general","strategy":"unstructured_only","isConstructionQuery":false,"confidence":0.8,"entities":{"bairros":[],"zots":[],"parametros":[]}}` +
		"\n```"}
	svc := New(mock)

	c, err := svc.Analyze(context.Background(), "Como funciona a participação popular no planejamento?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("completer calls = %d, want 1", mock.calls)
	}
	if c.Intent != domain.IntentConceptual {
		t.Errorf("intent = %q, want conceptual", c.Intent)
	}
	if c.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", c.Confidence)
	}
	if c.Strategy != domain.StrategyModeUnstructuredOnly {
		t.Errorf("strategy = %q, want unstructured_only", c.Strategy)
	}
}

func TestAnalyze_FallbackParseFailure(t *testing.T) {
	mock := &mockCompleter{response: "não consegui classificar essa consulta"}
	svc := New(mock)

	c, err := svc.Analyze(context.Background(), "Como funciona a participação popular no planejamento?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Intent != domain.IntentHybrid {
		t.Errorf("intent = %q, want hybrid heuristic", c.Intent)
	}
	if c.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", c.Confidence)
	}
	if len(c.Datasets) == 0 {
		t.Error("heuristic classification requested no datasets")
	}
}

func TestAnalyze_FallbackCompleterError(t *testing.T) {
	mock := &mockCompleter{err: errors.New("upstream down")}
	svc := New(mock)

	c, err := svc.Analyze(context.Background(), "Como funciona a participação popular no planejamento?")
	if err != nil {
		t.Fatalf("completer failure propagated: %v", err)
	}
	if c.Intent != domain.IntentHybrid {
		t.Errorf("intent = %q, want hybrid heuristic", c.Intent)
	}
	if c.Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", c.Confidence)
	}
}

func TestAnalyze_CityNameDemotesConstruction(t *testing.T) {
	mock := &mockCompleter{response: `{"intent":"tabular","queryType":"regime","strategy":"structured_only","isConstructionQuery":true,"confidence":0.9,"entities":{"bairros":["Porto Alegre"],"zots":[],"parametros":["altura"]}}`}
	svc := New(mock)

	c, err := svc.Analyze(context.Background(), "O que posso construir em Porto Alegre?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Entities.Neighborhood != "" {
		t.Errorf("city name kept as neighborhood: %q", c.Entities.Neighborhood)
	}
	if c.IsConstructionQuery {
		t.Error("construction flag kept after city-name removal")
	}
	if c.Intent != domain.IntentConceptual {
		t.Errorf("intent = %q, want conceptual demotion", c.Intent)
	}
	if c.Strategy != domain.StrategyModeUnstructuredOnly {
		t.Errorf("strategy = %q, want unstructured_only", c.Strategy)
	}
}
