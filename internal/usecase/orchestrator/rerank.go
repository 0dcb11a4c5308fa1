package orchestrator

import (
	"sort"
	"strings"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

// Rerank weights. Must sum to 1.
const (
	weightConfidence   = 0.25
	weightPriority     = 0.20
	weightRelevance    = 0.25
	weightCompleteness = 0.15
	weightAuthority    = 0.15
)

// agentPriority ranks agents by how decisive their answer kind is.
var agentPriority = map[string]float64{
	domain.AgentLegal:      0.9,
	domain.AgentUrban:      0.85,
	domain.AgentCounting:   0.8,
	domain.AgentConceptual: 0.7,
	domain.AgentValidator:  0.5,
}

// rerank orders agent results by weighted score, best first. The
// input slice is not modified.
func rerank(query string, results []domain.AgentResult) []domain.AgentResult {
	type scoredResult struct {
		result domain.AgentResult
		score  float64
	}
	scored := make([]scoredResult, 0, len(results))
	for _, r := range results {
		scored = append(scored, scoredResult{result: r, score: rerankScore(query, r)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	out := make([]domain.AgentResult, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.result)
	}
	return out
}

func rerankScore(query string, r domain.AgentResult) float64 {
	return r.Confidence*weightConfidence +
		priorityOf(r.Type)*weightPriority +
		relevance(query, r)*weightRelevance +
		completeness(r)*weightCompleteness +
		authority(r.Type)*weightAuthority
}

func priorityOf(agentType string) float64 {
	if p, ok := agentPriority[agentType]; ok {
		return p
	}
	return 0.5
}

func authority(agentType string) float64 {
	if agentType == domain.AgentLegal {
		return 0.9
	}
	return 0.7
}

// relevance is the share of query tokens found in the result text.
func relevance(query string, r domain.AgentResult) float64 {
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return 0
	}
	text := strings.ToLower(r.Summary)
	for _, rec := range r.Data {
		text += " " + strings.ToLower(rec.Content)
	}
	hits := 0
	for _, tok := range tokens {
		if strings.Contains(text, tok) {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}

// completeness rewards results that carry records, saturating at 5.
func completeness(r domain.AgentResult) float64 {
	n := len(r.Data)
	if n >= 5 {
		return 1
	}
	if n == 0 && r.Summary != "" {
		return 0.2
	}
	return float64(n) / 5
}

func queryTokens(query string) []string {
	var out []string
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		tok = strings.Trim(tok, "?!.,;:")
		if len(tok) > 3 {
			out = append(out, tok)
		}
	}
	return out
}
