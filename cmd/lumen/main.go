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
	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/chunker"
	"github.com/lumenlearn/lumen/internal/config"
	dbRedis "github.com/lumenlearn/lumen/internal/db/redis"
	"github.com/lumenlearn/lumen/internal/domain"
	logpkg "github.com/lumenlearn/lumen/internal/logger"
	"github.com/lumenlearn/lumen/internal/metrics"
	documentrepo "github.com/lumenlearn/lumen/internal/repository/document"
	"github.com/lumenlearn/lumen/internal/repository/embcache"
	engagementrepo "github.com/lumenlearn/lumen/internal/repository/engagement"
	indexrepo "github.com/lumenlearn/lumen/internal/repository/index"
	"github.com/lumenlearn/lumen/internal/repository/ratelimit"
	"github.com/lumenlearn/lumen/internal/repository/respcache"
	sessionrepo "github.com/lumenlearn/lumen/internal/repository/session"
	"github.com/lumenlearn/lumen/internal/retry"
	chiTransport "github.com/lumenlearn/lumen/internal/transport/chi"
	openaiTransport "github.com/lumenlearn/lumen/internal/transport/openai"
	"github.com/lumenlearn/lumen/internal/usecase/agent"
	"github.com/lumenlearn/lumen/internal/usecase/generate"
	healthuc "github.com/lumenlearn/lumen/internal/usecase/health"
	ingestuc "github.com/lumenlearn/lumen/internal/usecase/ingest"
	"github.com/lumenlearn/lumen/internal/usecase/memory"
	"github.com/lumenlearn/lumen/internal/usecase/retrieval"
	safetyuc "github.com/lumenlearn/lumen/internal/usecase/safety"
	"github.com/lumenlearn/lumen/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting lumen orchestration engine",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("retrieval_strategy", cfg.Retrieval.Strategy),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Store not ready", zap.Error(err))
	}
	logger.Info("Connected to store")

	// Register metrics explicitly (no init())
	metrics.Register()

	// LLM provider client: completion, embedding and moderation
	llm := openaiTransport.NewClient(&openaiTransport.Config{
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		CompletionModel: cfg.LLM.CompletionModel,
		EmbeddingModel:  cfg.LLM.EmbeddingModel,
		Dimensions:      cfg.LLM.EmbeddingDimensions,
		RequestTimeout:  time.Duration(cfg.LLM.RequestTimeoutSec) * time.Second,
		Logger:          logger,
	})

	// Embedder chain: OpenAI -> Cached -> RetryOnce
	var embedder domain.Embedder = llm
	embedder = embcache.New(embedder, store, metrics.EmbeddingCacheTotal, logger)
	embedder = embcache.NewRetryOnce(embedder)

	// Repositories
	indexRepo := indexrepo.New(store, cfg.LLM.EmbeddingDimensions)
	if err := indexRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure chunk index", zap.Error(err))
	}
	docRepo := documentrepo.New(store)
	sessionRepo := sessionrepo.New(store, time.Duration(cfg.Memory.SessionTTLSec)*time.Second)
	respCache := respcache.New(store, metrics.ResponseCacheTotal, logger)
	limiter := ratelimit.New(store, ratelimit.Limits{
		UserPerWindow:   cfg.RateLimit.UserPerHour,
		OriginPerWindow: cfg.RateLimit.OriginPerHour,
		GlobalPerWindow: cfg.RateLimit.GlobalPerHour,
	}, metrics.RateLimitRejectionsTotal)
	engagementRepo := engagementrepo.New(store, logger)

	// Retrieval strategy
	strategy, err := retrieval.Select(cfg.Retrieval.Strategy, retrieval.Deps{
		Embedder:  embedder,
		Index:     indexRepo,
		Completer: llm,
		Documents: docRepo,
		Variants:  cfg.Retrieval.MultiQueryCount,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("Failed to build retrieval strategy", zap.Error(err))
	}

	// Use case services
	backoff := retry.Policy{
		MaxRetries: cfg.LLM.MaxRetries,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   5 * time.Second,
	}
	safetySvc := safetyuc.New(llm, llm, safetyuc.Config{
		ReviewRetries: cfg.Safety.MaxRetries,
		ReviewBackoff: retry.Policy{
			MaxRetries: cfg.Safety.MaxRetries,
			BaseDelay:  200 * time.Millisecond,
			MaxDelay:   5 * time.Second,
		},
	}, metrics.SafetyVerdictsTotal, logger)
	generateSvc := generate.New(llm, limiter, respCache, safetySvc, generate.Config{
		Temperature: cfg.LLM.Temperature,
		CacheTTL:    time.Duration(cfg.Cache.TTLSec) * time.Second,
		Completion:  backoff,
	}, logger)
	memorySvc := memory.New(sessionRepo, logger)
	ingestSvc := ingestuc.New(chunker.Config{
		ChunkSize: cfg.Retrieval.ChunkSize,
		Overlap:   cfg.Retrieval.ChunkOverlap,
	}, embedder, indexRepo, docRepo, logger)
	healthSvc := healthuc.New(store, llm)

	// Agent: tool registry + orchestrator
	registry := agent.NewRegistry(metrics.ToolInvocationsTotal)
	tools := agent.NewTools(memorySvc, strategy, generateSvc, cfg.Retrieval.TopK, logger)
	if err := tools.RegisterAll(registry); err != nil {
		logger.Fatal("Failed to register tools", zap.Error(err))
	}
	orchestrator := agent.NewOrchestrator(registry, memorySvc, engagementRepo, agent.Config{
		MaxIterations: cfg.Agent.MaxIterations,
	}, metrics.AgentRunDuration, logger)

	// HTTP server
	server := chiTransport.NewServer(orchestrator, ingestSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r)

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
