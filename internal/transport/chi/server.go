// Package chi exposes the resolution pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cidade-aberta/urbanq/internal/domain"
	"github.com/cidade-aberta/urbanq/internal/logger"
	healthuc "github.com/cidade-aberta/urbanq/internal/usecase/health"
	"github.com/cidade-aberta/urbanq/internal/usecase/orchestrator"
)

// Error codes surfaced to clients.
const (
	codeBadRequest   = "bad_request"
	codeUnauthorized = "unauthorized"
)

// maxQueryLen bounds accepted query text.
const maxQueryLen = 2000

// degradedMessage is returned instead of an error body when the
// pipeline fails past analysis. Internal detail never surfaces.
const degradedMessage = "Não foi possível processar a consulta no momento. " +
	"Tente novamente em instantes."

// Resolver runs the resolution pipeline.
type Resolver interface {
	Resolve(ctx context.Context, query, sessionID string, opts orchestrator.Options) (orchestrator.Resolution, error)
}

// Server handles the HTTP API.
type Server struct {
	resolver Resolver
	health   *healthuc.Service
	logger   *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(resolver Resolver, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{resolver: resolver, health: health, logger: logger}
}

// Register mounts the API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/v1/resolve", s.ResolveQuery)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type resolveRequest struct {
	Query       string `json:"query"`
	SessionID   string `json:"session_id,omitempty"`
	BypassCache bool   `json:"bypass_cache,omitempty"`
}

type resolveResponse struct {
	Response     string         `json:"response"`
	Confidence   float64        `json:"confidence"`
	SessionID    string         `json:"session_id"`
	SourceCounts map[string]int `json:"source_counts,omitempty"`
	UsedAgents   []string       `json:"used_agents,omitempty"`
	FromCache    bool           `json:"from_cache"`
	Issues       []string       `json:"issues,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResolveQuery handles POST /v1/resolve.
func (s *Server) ResolveQuery(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	if len(req.Query) > maxQueryLen {
		writeError(w, http.StatusBadRequest, codeBadRequest, "query too long")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	res, err := s.resolver.Resolve(r.Context(), req.Query, sessionID,
		orchestrator.Options{BypassCache: req.BypassCache})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, codeBadRequest, "query is required")
			return
		}
		logger.FromContext(r.Context()).Error("resolve failed", zap.Error(err))
		writeJSON(w, http.StatusOK, resolveResponse{
			Response:  degradedMessage,
			SessionID: sessionID,
		})
		return
	}

	writeJSON(w, http.StatusOK, resolveResponse{
		Response:     res.ResponseText,
		Confidence:   res.Confidence,
		SessionID:    sessionID,
		SourceCounts: res.SourceCounts,
		UsedAgents:   res.UsedAgents,
		FromCache:    res.Diagnostics.FromCache,
		Issues:       res.Diagnostics.Issues,
	})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
