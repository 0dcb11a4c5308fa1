package agent

import (
	"context"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

// Context carries the per-request analysis shared by every routed
// agent. Agents are independent and must not assume invocation order.
type Context struct {
	Classification domain.Classification
	Normalized     domain.NormalizedQuery
	RecentTopics   []string
	Refinement     bool
}

// Agent is one independently invokable retrieval/reasoning unit.
type Agent interface {
	Type() string
	Execute(ctx context.Context, query string, actx Context) (domain.AgentResult, error)
}

// Retriever runs multi-strategy retrieval.
type Retriever interface {
	Retrieve(ctx context.Context, norm domain.NormalizedQuery, c domain.Classification) (domain.RetrievalResult, error)
}

// Counter reads structured aggregates from the zoning tables.
type Counter interface {
	CountNeighborhoods(ctx context.Context) (int, error)
	CountZones(ctx context.Context) (int, error)
	ZonesForNeighborhood(ctx context.Context, name string, limit int) ([]domain.Record, error)
}
