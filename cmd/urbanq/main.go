package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cidade-aberta/urbanq/internal/config"
	dbPostgres "github.com/cidade-aberta/urbanq/internal/db/postgres"
	dbRedis "github.com/cidade-aberta/urbanq/internal/db/redis"
	logpkg "github.com/cidade-aberta/urbanq/internal/logger"
	"github.com/cidade-aberta/urbanq/internal/metrics"
	"github.com/cidade-aberta/urbanq/internal/repository/embcache"
	keywordrepo "github.com/cidade-aberta/urbanq/internal/repository/keyword"
	legalrepo "github.com/cidade-aberta/urbanq/internal/repository/legal"
	regimerepo "github.com/cidade-aberta/urbanq/internal/repository/regime"
	"github.com/cidade-aberta/urbanq/internal/repository/respcache"
	sessionrepo "github.com/cidade-aberta/urbanq/internal/repository/session"
	chiTransport "github.com/cidade-aberta/urbanq/internal/transport/chi"
	"github.com/cidade-aberta/urbanq/internal/transport/openai"
	"github.com/cidade-aberta/urbanq/internal/usecase/agent"
	"github.com/cidade-aberta/urbanq/internal/usecase/analyzer"
	healthuc "github.com/cidade-aberta/urbanq/internal/usecase/health"
	"github.com/cidade-aberta/urbanq/internal/usecase/orchestrator"
	"github.com/cidade-aberta/urbanq/internal/usecase/retrieval"
	"github.com/cidade-aberta/urbanq/internal/version"
)

func main() {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting urbanq API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("redis_addrs", cfg.Redis.Addrs),
	)

	ctx := context.Background()

	pool, err := dbPostgres.NewPool(dbPostgres.Config{
		DSN:          cfg.Postgres.DSN,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Postgres.MaxIdleConns,
	})
	if err != nil {
		logger.Fatal("Failed to open postgres pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.WaitForReady(ctx, time.Duration(cfg.Postgres.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Postgres not ready", zap.Error(err))
	}
	logger.Info("Connected to postgres")

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create redis store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Redis not ready", zap.Error(err))
	}
	logger.Info("Connected to redis")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	completer := openai.NewCompleter(&openai.CompleterConfig{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.CompletionModel,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Timeout:     time.Duration(cfg.OpenAI.TimeoutSec) * time.Second,
		MaxRetries:  cfg.OpenAI.MaxRetries,
		Logger:      logger,
	})
	baseEmbedder := openai.NewEmbedder(&openai.EmbedderConfig{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.EmbeddingModel,
		Dimensions: cfg.OpenAI.Dimensions,
		Timeout:    time.Duration(cfg.OpenAI.TimeoutSec) * time.Second,
		MaxRetries: cfg.OpenAI.MaxRetries,
		Logger:     logger,
	})
	embedder := embcache.New(baseEmbedder, store, metrics.EmbeddingCacheTotal, logger)
	logger.Info("OpenAI clients created",
		zap.String("completion_model", cfg.OpenAI.CompletionModel),
		zap.String("embedding_model", cfg.OpenAI.EmbeddingModel),
	)

	// Repositories
	legalRepo := legalrepo.New(pool)
	regimeRepo := regimerepo.New(pool)
	keywordStore := keywordrepo.New(store)
	sessionRepo := sessionrepo.New(pool)

	cache := respcache.New(store, respcache.Config{
		MaxMemoryEntries: cfg.Cache.MaxMemoryEntries,
		BaseTTL:          time.Duration(cfg.Cache.BaseTTLMin) * time.Minute,
		MinConfidence:    cfg.Cache.MinConfidence,
		PromoteThreshold: cfg.Cache.PromoteThreshold,
		MinResponseLen:   cfg.Cache.MinResponseLen,
		SweepInterval:    time.Duration(cfg.Cache.SweepIntervalMin) * time.Minute,
	}, logger)
	cache.StartSweeper()
	defer cache.Stop()

	// Use case services
	retrievalSvc := retrieval.New(legalRepo, regimeRepo, keywordStore, legalRepo, embedder, retrieval.Config{
		ResultLimit:       cfg.Retrieval.ResultLimit,
		MatchThreshold:    cfg.Retrieval.MatchThreshold,
		FallbackThreshold: cfg.Retrieval.FallbackThreshold,
	})
	analyzerSvc := analyzer.New(completer)

	agents := []agent.Agent{
		agent.NewValidator(),
		agent.NewLegal(retrievalSvc),
		agent.NewUrban(retrievalSvc),
		agent.NewConceptual(retrievalSvc),
		agent.NewCounting(regimeRepo),
	}

	orchestratorSvc := orchestrator.New(analyzerSvc, agents, completer, cache, sessionRepo)
	healthSvc := healthuc.New(pool, store)

	server := chiTransport.NewServer(orchestratorSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
