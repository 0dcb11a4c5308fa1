package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/cidade-aberta/urbanq/internal/domain"
	"github.com/cidade-aberta/urbanq/internal/usecase/agent"
)

func TestResolve_EmptyQueryFails(t *testing.T) {
	s := New(&mockAnalyzer{}, nil, nil, nil, nil)

	res, err := s.Resolve(context.Background(), "   ", "sess-1", Options{})
	if !errors.Is(err, domain.ErrEmptyQuery) {
		t.Fatalf("err = %v, want ErrEmptyQuery", err)
	}
	if res.Diagnostics.State != StateFailed {
		t.Fatalf("state = %q, want FAILED", res.Diagnostics.State)
	}
}

func TestResolve_CacheHitShortCircuits(t *testing.T) {
	analyzer := &mockAnalyzer{}
	cache := &mockCache{entry: &domain.CacheEntry{
		Response:   "resposta em cache",
		Confidence: 0.85,
		Category:   domain.CategoryLegal,
	}}
	s := New(analyzer, nil, nil, cache, nil)

	res, err := s.Resolve(context.Background(), "O que diz o Art. 81?", "sess-1", Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Diagnostics.FromCache {
		t.Fatal("expected cache hit")
	}
	if res.ResponseText != "resposta em cache" {
		t.Fatalf("response = %q", res.ResponseText)
	}
	if analyzer.calls != 0 {
		t.Fatalf("analyzer called %d times on cache hit", analyzer.calls)
	}
}

func TestResolve_BypassCacheSkipsLookup(t *testing.T) {
	cache := &mockCache{entry: &domain.CacheEntry{Response: "stale"}}
	validator := &stubAgent{agentType: domain.AgentValidator, result: okResult(domain.AgentValidator, 0.8, "ok")}
	conceptual := &stubAgent{agentType: domain.AgentConceptual, result: okResult(domain.AgentConceptual, 0.8, "trechos localizados")}
	s := New(
		&mockAnalyzer{classification: domain.Classification{Intent: domain.IntentConceptual}},
		[]agent.Agent{validator, conceptual},
		&mockCompleter{response: "resposta nova"},
		cache, nil,
	)

	res, err := s.Resolve(context.Background(), "O que é outorga onerosa?", "", Options{BypassCache: true})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cache.getCalls != 0 {
		t.Fatalf("cache consulted %d times despite bypass", cache.getCalls)
	}
	if cache.setCalls != 1 {
		t.Fatalf("cache fill calls = %d, want 1", cache.setCalls)
	}
	if res.ResponseText != "resposta nova" {
		t.Fatalf("response = %q", res.ResponseText)
	}
}

func TestResolve_SynthesizesAndFillsCache(t *testing.T) {
	validator := &stubAgent{agentType: domain.AgentValidator, result: okResult(domain.AgentValidator, 0.8, "ok")}
	conceptual := &stubAgent{agentType: domain.AgentConceptual, result: okResult(domain.AgentConceptual, 0.8, "2 trechos relevantes localizados")}
	completer := &mockCompleter{response: "A outorga onerosa permite construir acima do coeficiente básico."}
	cache := &mockCache{}
	sessions := &mockSessionStore{}
	s := New(
		&mockAnalyzer{classification: domain.Classification{Intent: domain.IntentConceptual}},
		[]agent.Agent{validator, conceptual},
		completer, cache, sessions,
	)

	res, err := s.Resolve(context.Background(), "O que é outorga onerosa?", "sess-1", Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Diagnostics.State != StateDone {
		t.Fatalf("state = %q", res.Diagnostics.State)
	}
	if res.ResponseText != completer.response {
		t.Fatalf("response = %q", res.ResponseText)
	}
	if res.Confidence != 0.8 {
		t.Fatalf("confidence = %v, want mean 0.8", res.Confidence)
	}
	if len(res.UsedAgents) != 2 {
		t.Fatalf("used agents = %v", res.UsedAgents)
	}
	if cache.setCalls != 1 || cache.lastSetCategory != domain.CategoryGeneral {
		t.Fatalf("cache fill calls = %d category = %q", cache.setCalls, cache.lastSetCategory)
	}
	if len(sessions.stored) != 1 || sessions.stored[0].Intent != domain.IntentConceptual {
		t.Fatalf("stored turns = %+v", sessions.stored)
	}
}

func TestResolve_PanickingAgentDegradesGracefully(t *testing.T) {
	validator := &stubAgent{agentType: domain.AgentValidator, result: okResult(domain.AgentValidator, 0.8, "ok")}
	conceptual := &stubAgent{agentType: domain.AgentConceptual, panics: true}
	s := New(
		&mockAnalyzer{classification: domain.Classification{Intent: domain.IntentConceptual}},
		[]agent.Agent{validator, conceptual},
		&mockCompleter{response: "irrelevante"},
		nil, nil,
	)

	res, err := s.Resolve(context.Background(), "O que é solo criado?", "", Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Diagnostics.State != StateDone {
		t.Fatalf("state = %q, want DONE despite panic", res.Diagnostics.State)
	}
	if res.Diagnostics.DroppedResults != 1 {
		t.Fatalf("dropped = %d, want 1", res.Diagnostics.DroppedResults)
	}
	if res.ResponseText != noInfoMessage {
		t.Fatalf("response = %q, want the no-information fallback", res.ResponseText)
	}
}

func TestResolve_FailingAgentBecomesStub(t *testing.T) {
	validator := &stubAgent{agentType: domain.AgentValidator, result: okResult(domain.AgentValidator, 0.8, "ok")}
	legal := &stubAgent{agentType: domain.AgentLegal, err: errors.New("pool closed")}
	s := New(
		&mockAnalyzer{classification: domain.Classification{Intent: domain.IntentLegalArticle}},
		[]agent.Agent{validator, legal},
		&mockCompleter{err: errors.New("unavailable")},
		nil, nil,
	)

	res, err := s.Resolve(context.Background(), "Art. 81 da LUOS", "", Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Diagnostics.State != StateDone {
		t.Fatalf("state = %q", res.Diagnostics.State)
	}
	if res.Diagnostics.DroppedResults != 1 {
		t.Fatalf("dropped = %d, want degraded legal stub dropped", res.Diagnostics.DroppedResults)
	}
}

func TestResolve_LowConfidenceTriggersOneRefinementRound(t *testing.T) {
	validator := &stubAgent{agentType: domain.AgentValidator, result: okResult(domain.AgentValidator, 0.8, "ok")}
	legal := &stubAgent{agentType: domain.AgentLegal, result: okResult(domain.AgentLegal, 0.5, "nenhum artigo exato")}
	s := New(
		&mockAnalyzer{classification: domain.Classification{Intent: domain.IntentLegalArticle}},
		[]agent.Agent{validator, legal},
		&mockCompleter{response: "resposta"},
		nil, nil,
	)

	res, err := s.Resolve(context.Background(), "Art. 999 da LUOS", "", Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Diagnostics.Refined {
		t.Fatal("expected a refinement round")
	}
	if legal.calls != 2 {
		t.Fatalf("legal agent calls = %d, want 2", legal.calls)
	}
	if !legal.lastCtx.Refinement {
		t.Fatal("second round should carry the refinement flag")
	}
}

func TestResolve_SynthesisFallsBackToBestSummary(t *testing.T) {
	validator := &stubAgent{agentType: domain.AgentValidator, result: okResult(domain.AgentValidator, 0.8, "ok")}
	legal := &stubAgent{agentType: domain.AgentLegal, result: okResult(domain.AgentLegal, 0.9, "Referências encontradas: Art. 81 (LUOS)")}
	s := New(
		&mockAnalyzer{classification: domain.Classification{Intent: domain.IntentLegalArticle}},
		[]agent.Agent{validator, legal},
		&mockCompleter{err: errors.New("timeout")},
		nil, nil,
	)

	res, err := s.Resolve(context.Background(), "Art. 81 da LUOS", "", Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.ResponseText != "Referências encontradas: Art. 81 (LUOS)" {
		t.Fatalf("response = %q, want the legal summary", res.ResponseText)
	}
}

func TestResolve_SeedsTopicsFromStore(t *testing.T) {
	validator := &stubAgent{agentType: domain.AgentValidator, result: okResult(domain.AgentValidator, 0.8, "ok")}
	conceptual := &stubAgent{agentType: domain.AgentConceptual, result: okResult(domain.AgentConceptual, 0.8, "trechos")}
	sessions := &mockSessionStore{recent: []domain.Turn{
		turn("pergunta 1", domain.IntentLegalArticle),
		turn("pergunta 2", domain.IntentTabular),
	}}
	s := New(
		&mockAnalyzer{classification: domain.Classification{Intent: domain.IntentConceptual}},
		[]agent.Agent{validator, conceptual},
		&mockCompleter{response: "resposta"},
		nil, sessions,
	)

	if _, err := s.Resolve(context.Background(), "E sobre o plano diretor?", "sess-7", Options{}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	got := conceptual.lastCtx.RecentTopics
	if len(got) != 2 || got[0] != domain.IntentLegalArticle || got[1] != domain.IntentTabular {
		t.Fatalf("recent topics = %v", got)
	}
}

func TestResolve_SessionPersistFailureDoesNotFailResponse(t *testing.T) {
	validator := &stubAgent{agentType: domain.AgentValidator, result: okResult(domain.AgentValidator, 0.8, "ok")}
	conceptual := &stubAgent{agentType: domain.AgentConceptual, result: okResult(domain.AgentConceptual, 0.8, "trechos")}
	sessions := &mockSessionStore{err: errors.New("connection refused")}
	s := New(
		&mockAnalyzer{classification: domain.Classification{Intent: domain.IntentConceptual}},
		[]agent.Agent{validator, conceptual},
		&mockCompleter{response: "resposta"},
		nil, sessions,
	)

	res, err := s.Resolve(context.Background(), "O que é ZEIS?", "sess-9", Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Diagnostics.State != StateDone {
		t.Fatalf("state = %q", res.Diagnostics.State)
	}
}

func TestValidate_EmptyResultsRequireRefinement(t *testing.T) {
	v := validate(nil)
	if !v.RequiresRefinement {
		t.Fatal("empty result set must require refinement")
	}
	if v.IsValid {
		t.Fatal("empty result set is not valid")
	}
}

func TestValidate_IssuesForceRefinement(t *testing.T) {
	results := []domain.AgentResult{
		{Type: domain.AgentValidator, Confidence: 0.8, Metadata: map[string]string{"issues": "Query muito genérica"}},
		{Type: domain.AgentConceptual, Confidence: 0.9},
	}
	v := validate(results)
	if !v.RequiresRefinement {
		t.Fatal("validator issues must force refinement")
	}
	if len(v.Issues) != 1 || v.Issues[0] != "Query muito genérica" {
		t.Fatalf("issues = %v", v.Issues)
	}
}
