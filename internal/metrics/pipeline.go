package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics.
var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "urbanq",
			Name:      "queries_total",
			Help:      "Total number of resolved queries",
		},
		[]string{"intent", "status"},
	)

	RetrievalStrategiesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "urbanq",
			Name:      "retrieval_strategies_total",
			Help:      "Retrieval strategy attempts by outcome",
		},
		[]string{"strategy", "outcome"}, // "hit" / "empty" / "error"
	)

	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "urbanq",
			Name:      "cache_total",
			Help:      "Response cache hits and misses by tier",
		},
		[]string{"tier", "result"}, // tier "memory"/"persistent", result "hit"/"miss"
	)

	CacheEvictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "urbanq",
			Name:      "cache_evictions_total",
			Help:      "Response cache entries evicted under capacity pressure",
		},
	)

	AgentInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "urbanq",
			Name:      "agent_invocations_total",
			Help:      "Agent invocations by type and outcome",
		},
		[]string{"agent", "outcome"}, // "ok" / "degraded"
	)

	CompletionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "urbanq",
			Name:      "completion_requests_total",
			Help:      "Completion provider requests",
		},
		[]string{"model", "purpose", "status"},
	)

	CompletionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "urbanq",
			Name:      "completion_request_duration_seconds",
			Help:      "Completion request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model", "purpose"},
	)

	CompletionTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "urbanq",
			Name:      "completion_tokens_total",
			Help:      "Completion tokens consumed",
		},
		[]string{"model", "type"}, // "prompt" / "completion" / "total"
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "urbanq",
			Name:      "embedding_requests_total",
			Help:      "Embedding provider requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "urbanq",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "urbanq",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(RetrievalStrategiesTotal)
	prometheus.MustRegister(CacheTotal)
	prometheus.MustRegister(CacheEvictionsTotal)
	prometheus.MustRegister(AgentInvocationsTotal)
	prometheus.MustRegister(CompletionRequestsTotal)
	prometheus.MustRegister(CompletionRequestDuration)
	prometheus.MustRegister(CompletionTokensTotal)
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	pipelineMetricsRegistered = true
}
