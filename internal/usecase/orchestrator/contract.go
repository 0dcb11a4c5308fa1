package orchestrator

import (
	"context"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

// Analyzer classifies a raw query.
type Analyzer interface {
	Analyze(ctx context.Context, query string) (domain.Classification, error)
}

// Completer produces the synthesized answer text.
type Completer interface {
	Complete(ctx context.Context, purpose, system, user string) (string, error)
}

// Cache is the adaptive response cache consulted before analysis.
type Cache interface {
	Get(ctx context.Context, query string, reqCtx map[string]string) (*domain.CacheEntry, bool)
	Set(ctx context.Context, query, response string, confidence float64, category string, reqCtx map[string]string) error
}

// SessionStore persists turn summaries. Persistence is best-effort;
// the in-process window is authoritative for the current process.
type SessionStore interface {
	Append(ctx context.Context, sessionID string, t domain.Turn) error
	Recent(ctx context.Context, sessionID string, n int) ([]domain.Turn, error)
}

// Pipeline states, reported in diagnostics.
const (
	StateAnalyzing       = "ANALYZING"
	StateRouting         = "ROUTING"
	StateExecutingAgents = "EXECUTING_AGENTS"
	StateValidating      = "VALIDATING"
	StateSynthesizing    = "SYNTHESIZING"
	StateDone            = "DONE"
	StateFailed          = "FAILED"
)

// Options tunes one Resolve call.
type Options struct {
	// BypassCache skips the cache lookup, not the cache fill.
	BypassCache bool
}

// Resolution is the final pipeline output for one query.
type Resolution struct {
	ResponseText string
	Confidence   float64
	SourceCounts map[string]int
	UsedAgents   []string
	Diagnostics  Diagnostics
}

// Diagnostics reports per-request pipeline telemetry.
type Diagnostics struct {
	State          string
	Intent         string
	FromCache      bool
	Refined        bool
	AgentResults   int
	DroppedResults int
	Issues         []string
}
