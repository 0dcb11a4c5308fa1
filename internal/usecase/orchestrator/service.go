// Package orchestrator drives a query through analysis, agent fan-out,
// validation, one optional refinement round and synthesis.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cidade-aberta/urbanq/internal/domain"
	"github.com/cidade-aberta/urbanq/internal/domain/normalize"
	"github.com/cidade-aberta/urbanq/internal/logger"
	"github.com/cidade-aberta/urbanq/internal/metrics"
	"github.com/cidade-aberta/urbanq/internal/usecase/agent"
)

// confidenceFloor drops agent results below it before validation.
const confidenceFloor = 0.3

// refinementThreshold triggers one refinement round when the mean
// agent confidence falls below it.
const refinementThreshold = 0.7

// noInfoMessage is the fixed answer when nothing usable was produced.
const noInfoMessage = "Não foi possível encontrar informações sobre essa consulta " +
	"na base do plano diretor de Porto Alegre. Reformule a pergunta ou " +
	"indique o bairro, a zona ou o artigo de interesse."

// Service is the pipeline orchestrator. Safe for concurrent use.
type Service struct {
	analyzer  Analyzer
	agents    map[string]agent.Agent
	completer Completer
	cache     Cache
	sessions  SessionStore

	mu     sync.Mutex
	memory map[string]*domain.SessionMemory
}

// New creates an orchestrator. cache and sessions may be nil.
func New(analyzer Analyzer, agents []agent.Agent, completer Completer, cache Cache, sessions SessionStore) *Service {
	byType := make(map[string]agent.Agent, len(agents))
	for _, a := range agents {
		byType[a.Type()] = a
	}
	return &Service{
		analyzer:  analyzer,
		agents:    byType,
		completer: completer,
		cache:     cache,
		sessions:  sessions,
		memory:    make(map[string]*domain.SessionMemory),
	}
}

// Resolve runs the full pipeline for one query.
func (s *Service) Resolve(ctx context.Context, query, sessionID string, opts Options) (Resolution, error) {
	log := logger.FromContext(ctx)

	query = strings.TrimSpace(query)
	if query == "" {
		metrics.QueriesTotal.WithLabelValues("unknown", "failed").Inc()
		return Resolution{Diagnostics: Diagnostics{State: StateFailed}}, domain.ErrEmptyQuery
	}

	if s.cache != nil && !opts.BypassCache {
		if entry, ok := s.cache.Get(ctx, query, nil); ok {
			metrics.QueriesTotal.WithLabelValues(entry.Category, "cached").Inc()
			return Resolution{
				ResponseText: entry.Response,
				Confidence:   entry.Confidence,
				Diagnostics:  Diagnostics{State: StateDone, FromCache: true},
			}, nil
		}
	}

	// ANALYZING
	classification, err := s.analyzer.Analyze(ctx, query)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("unknown", "failed").Inc()
		return Resolution{Diagnostics: Diagnostics{State: StateFailed}}, fmt.Errorf("analyze: %w", err)
	}
	norm := normalize.Extract(query)
	actx := agent.Context{
		Classification: classification,
		Normalized:     norm,
		RecentTopics:   s.recentTopics(ctx, sessionID),
	}

	// ROUTING
	types := route(classification)
	log.Debug("agents routed",
		zap.String("intent", classification.Intent),
		zap.Strings("agents", types))

	// EXECUTING_AGENTS
	results := s.execute(ctx, query, actx, types)
	kept, dropped := applyFloor(results)

	// VALIDATING
	validation := validate(kept)
	refined := false
	if validation.RequiresRefinement {
		refined = true
		actx.Refinement = true
		refinedResults := s.execute(ctx, query, actx, withCritical(types))
		kept, dropped = applyFloor(refinedResults)
		validation = validate(kept)
	}

	ranked := rerank(query, kept)

	// SYNTHESIZING
	response := s.synthesize(ctx, query, ranked)

	res := Resolution{
		ResponseText: response,
		Confidence:   validation.Confidence,
		SourceCounts: sourceCounts(ranked),
		UsedAgents:   agentTypes(ranked),
		Diagnostics: Diagnostics{
			State:          StateDone,
			Intent:         classification.Intent,
			Refined:        refined,
			AgentResults:   len(ranked),
			DroppedResults: dropped,
			Issues:         validation.Issues,
		},
	}

	if s.cache != nil && response != noInfoMessage {
		if err := s.cache.Set(ctx, query, response, validation.Confidence, cacheCategory(classification), nil); err != nil && !errors.Is(err, domain.ErrCacheRejected) {
			log.Warn("cache fill failed", zap.Error(err))
		}
	}
	s.appendTurn(ctx, sessionID, query, classification.Intent, response, res.UsedAgents)

	metrics.QueriesTotal.WithLabelValues(classification.Intent, "ok").Inc()
	return res, nil
}

// execute fans agents out concurrently. A panicking or failing agent
// becomes a confidence-zero stub and never blocks the others.
func (s *Service) execute(ctx context.Context, query string, actx agent.Context, types []string) []domain.AgentResult {
	log := logger.FromContext(ctx)

	results := make([]domain.AgentResult, len(types))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range types {
		i, t := i, t
		a, ok := s.agents[t]
		if !ok {
			results[i] = domain.DegradedResult(t, "agent not registered")
			continue
		}
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Error("agent panicked", zap.String("agent", t), zap.Any("panic", r))
					results[i] = domain.DegradedResult(t, fmt.Sprintf("panic: %v", r))
					metrics.AgentInvocationsTotal.WithLabelValues(t, "degraded").Inc()
				}
			}()
			res, err := a.Execute(gctx, query, actx)
			if err != nil {
				log.Warn("agent failed", zap.String("agent", t), zap.Error(err))
				results[i] = domain.DegradedResult(t, err.Error())
				metrics.AgentInvocationsTotal.WithLabelValues(t, "degraded").Inc()
				return nil
			}
			results[i] = res
			metrics.AgentInvocationsTotal.WithLabelValues(t, "ok").Inc()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// applyFloor removes degraded stubs and sub-floor results.
func applyFloor(results []domain.AgentResult) (kept []domain.AgentResult, dropped int) {
	for _, r := range results {
		if r.Confidence < confidenceFloor {
			dropped++
			continue
		}
		kept = append(kept, r)
	}
	return kept, dropped
}

// validate scores the surviving results: mean confidence, issues
// collected from the validator agent.
func validate(results []domain.AgentResult) domain.ValidationResult {
	if len(results) == 0 {
		return domain.ValidationResult{RequiresRefinement: true}
	}

	sum := 0.0
	var issues []string
	for _, r := range results {
		sum += r.Confidence
		if r.Type == domain.AgentValidator && r.Metadata["issues"] != "" {
			issues = append(issues, strings.Split(r.Metadata["issues"], "; ")...)
		}
	}
	confidence := sum / float64(len(results))

	return domain.ValidationResult{
		IsValid:            confidence >= 0.5,
		Confidence:         confidence,
		Issues:             issues,
		RequiresRefinement: confidence < refinementThreshold || len(issues) > 0,
	}
}

// synthesize produces the answer text: completion over the grounding
// context, falling back to the best agent summary, then to the fixed
// no-information message.
func (s *Service) synthesize(ctx context.Context, query string, ranked []domain.AgentResult) string {
	log := logger.FromContext(ctx)

	grounding := groundingContext(ranked)
	if grounding == "" {
		return noInfoMessage
	}

	if s.completer != nil {
		answer, err := s.completer.Complete(ctx, "synthesize", synthesisSystemPrompt,
			fmt.Sprintf("Pergunta: %s\n\nContexto:\n%s", query, grounding))
		if err == nil && strings.TrimSpace(answer) != "" {
			return strings.TrimSpace(answer)
		}
		if err != nil {
			log.Warn("synthesis completion failed", zap.Error(err))
		}
	}

	for _, r := range ranked {
		if r.Summary != "" {
			return r.Summary
		}
	}
	return noInfoMessage
}

const synthesisSystemPrompt = "Você é um assistente especializado no plano diretor " +
	"de Porto Alegre (PDUS e LUOS). Responda em português, de forma objetiva, " +
	"usando apenas o contexto fornecido. Cite artigos e zonas quando presentes " +
	"no contexto. Se o contexto não contém a resposta, diga isso claramente."

// groundingContext flattens the ranked results into prompt context.
// Record payloads are bounded to keep the prompt small.
func groundingContext(ranked []domain.AgentResult) string {
	var b strings.Builder
	for _, r := range ranked {
		if r.Type == domain.AgentValidator {
			continue
		}
		if r.Summary != "" {
			fmt.Fprintf(&b, "[%s] %s\n", r.Type, r.Summary)
		}
		for i, rec := range r.Data {
			if i == 3 {
				break
			}
			content := rec.Content
			if runes := []rune(content); len(runes) > 800 {
				content = string(runes[:800])
			}
			fmt.Fprintf(&b, "- %s\n", content)
		}
	}
	return strings.TrimSpace(b.String())
}

func sourceCounts(results []domain.AgentResult) map[string]int {
	counts := make(map[string]int)
	for _, r := range results {
		for _, rec := range r.Data {
			counts[rec.Source]++
		}
	}
	return counts
}

func agentTypes(results []domain.AgentResult) []string {
	types := make([]string, 0, len(results))
	for _, r := range results {
		types = append(types, r.Type)
	}
	return types
}

// cacheCategory maps a classification to a cache TTL category.
func cacheCategory(c domain.Classification) string {
	switch {
	case c.Intent == domain.IntentLegalArticle:
		return domain.CategoryLegal
	case c.IsConstructionQuery:
		return domain.CategoryConstruction
	case c.QueryType == domain.QueryTypeCounting:
		return domain.CategoryCalculation
	case c.Intent == domain.IntentTabular:
		return domain.CategoryZoning
	default:
		return domain.CategoryGeneral
	}
}
