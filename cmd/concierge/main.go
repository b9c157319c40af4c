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

	"github.com/peroute/concierge/internal/config"
	dbRedis "github.com/peroute/concierge/internal/db/redis"
	"github.com/peroute/concierge/internal/domain"
	logpkg "github.com/peroute/concierge/internal/logger"
	"github.com/peroute/concierge/internal/metrics"
	catalogrepo "github.com/peroute/concierge/internal/repository/catalog"
	"github.com/peroute/concierge/internal/repository/embcache"
	indexrepo "github.com/peroute/concierge/internal/repository/index"
	chiTransport "github.com/peroute/concierge/internal/transport/chi"
	openaiTransport "github.com/peroute/concierge/internal/transport/openai"
	askuc "github.com/peroute/concierge/internal/usecase/ask"
	cataloguc "github.com/peroute/concierge/internal/usecase/catalog"
	healthuc "github.com/peroute/concierge/internal/usecase/health"
	intentuc "github.com/peroute/concierge/internal/usecase/intent"
	searchuc "github.com/peroute/concierge/internal/usecase/search"
	synthesisuc "github.com/peroute/concierge/internal/usecase/synthesis"
	"github.com/peroute/concierge/internal/usecase/vectorizer"
	"github.com/peroute/concierge/internal/version"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

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

	logger.Info("Starting concierge API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	// Build the vectorizer chain — composition root
	textVectorizer, embeddingChecker := buildVectorizer(cfg, store, logger)

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:  cfg.Generative.APIKey,
		BaseURL: cfg.Generative.BaseURL,
		Model:   cfg.Generative.Model,
	})
	logger.Info("Generative backend created", zap.String("model", cfg.Generative.Model))

	// Repositories
	catalogRepo := catalogrepo.New(store, cfg.Storage.KeyPrefix)
	indexRepo := indexrepo.New(store, indexrepo.Config{
		IndexName:   cfg.Search.IndexName,
		VectorField: cfg.Search.VectorField,
		KeyPrefix:   cfg.Storage.KeyPrefix,
		Dimensions:  cfg.Embedding.Dimensions,
		HNSWM:       cfg.Search.HNSWM,
		HNSWEFConst: cfg.Search.HNSWEFConstruct,
	})

	// A missing index is not fatal: search degrades to the exact catalog scan.
	if err := indexRepo.EnsureIndex(ctx); err != nil {
		logger.Warn("Failed to ensure vector index, search will use the fallback scan", zap.Error(err))
	}

	// Use case services
	searchSvc := searchuc.New(indexRepo, catalogRepo, searchuc.Config{
		TopK:          cfg.Search.TopK,
		CandidatePool: cfg.Search.CandidatePool,
		MinScore:      cfg.Search.MinScore,
	})
	askSvc := askuc.New(
		intentuc.New(generator),
		textVectorizer,
		searchSvc,
		synthesisuc.New(generator),
	)
	catalogSvc := cataloguc.New(catalogRepo, textVectorizer)
	healthSvc := healthuc.New(store, generator, embeddingChecker)

	server := chiTransport.NewServer(askSvc, catalogSvc, searchSvc, textVectorizer, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

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

// buildVectorizer assembles the embedding chain. The local anchor vectorizer
// is always present: alone for the "local" provider, or as the fallback tier
// behind a cached hosted provider for "openai".
func buildVectorizer(
	cfg config.Config, store *dbRedis.Store, logger *zap.Logger,
) (domain.Vectorizer, healthuc.BackendChecker) {
	local := vectorizer.NewAnchor(cfg.Embedding.Dimensions)

	if cfg.Embedding.Provider != "openai" {
		logger.Info("Using local deterministic vectorizer",
			zap.Int("dimensions", cfg.Embedding.Dimensions))
		return local, nil
	}

	hosted := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
	})
	cached := embcache.New(hosted, store, cfg.Storage.KeyPrefix)

	logger.Info("Using hosted embedding provider with local fallback",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions))
	return vectorizer.NewFallback(cached, local), hosted
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

			requestID := chiMiddleware.GetReqID(r.Context())
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
