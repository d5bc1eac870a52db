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

	"github.com/lakshaychetal/astrologyfinalrk/internal/cache"
	"github.com/lakshaychetal/astrologyfinalrk/internal/config"
	dbRedis "github.com/lakshaychetal/astrologyfinalrk/internal/db/redis"
	"github.com/lakshaychetal/astrologyfinalrk/internal/domain"
	"github.com/lakshaychetal/astrologyfinalrk/internal/knowledge"
	logpkg "github.com/lakshaychetal/astrologyfinalrk/internal/logger"
	"github.com/lakshaychetal/astrologyfinalrk/internal/metrics"
	"github.com/lakshaychetal/astrologyfinalrk/internal/preload"
	"github.com/lakshaychetal/astrologyfinalrk/internal/repository/corpus"
	"github.com/lakshaychetal/astrologyfinalrk/internal/repository/embcache"
	chiTransport "github.com/lakshaychetal/astrologyfinalrk/internal/transport/chi"
	openaiEmb "github.com/lakshaychetal/astrologyfinalrk/internal/transport/openai"
	rerankuc "github.com/lakshaychetal/astrologyfinalrk/internal/usecase/rerank"
	retrievaluc "github.com/lakshaychetal/astrologyfinalrk/internal/usecase/retrieval"
	"github.com/lakshaychetal/astrologyfinalrk/internal/version"
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

	logger.Info("Starting astrorag API server",
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

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()

	embedder := buildEmbedder(cfg, store, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	corpusRepo := corpus.New(store, cfg.Corpus.IndexName, cfg.Corpus.KeyPrefix).
		WithHNSW(corpus.HNSWConfig{
			M:           cfg.Corpus.HNSWM,
			EFConstruct: cfg.Corpus.HNSWEFConstruct,
		})

	cacheCfg := cache.Config{
		KeyPrefix:     cfg.Cache.KeyPrefix,
		L1TTL:         time.Duration(cfg.Cache.L1TTLHours) * time.Hour,
		L2TTL:         time.Duration(cfg.Cache.L2TTLHours) * time.Hour,
		LocalCapacity: cfg.Cache.LocalCapacity,
	}
	// With the shared cache disabled the in-process tier still runs, so
	// repeat questions inside one replica stay cheap.
	cacheManager := cache.New(store, cacheCfg, metrics.PassageCacheTotal, logger)
	if cfg.Cache.Disabled {
		cacheManager = cache.New(nil, cacheCfg, metrics.PassageCacheTotal, logger)
	}

	catalog := knowledge.Default()
	reranker := rerankuc.New(rerankuc.DefaultWeights())

	retrievalSvc := retrievaluc.NewService(embedder, corpusRepo, cacheManager, reranker, catalog, retrievaluc.Config{
		ScoreThreshold:       cfg.Retrieval.ScoreThreshold,
		RelaxedThreshold:     cfg.Retrieval.RelaxedThreshold,
		RareRuleBoost:        cfg.Retrieval.RareRuleBoost,
		PrioritySectionBoost: cfg.Retrieval.PrioritySectionBoost,
		PerQueryTopK:         cfg.Retrieval.PerQueryTopK,
		FinalTopK:            cfg.Retrieval.FinalTopK,
		FanoutWorkers:        cfg.Retrieval.FanoutWorkers,
		Timeout:              time.Duration(cfg.Retrieval.TimeoutSec) * time.Second,
	}, logger)

	preloader, err := preload.New(retrievalSvc, cacheManager, catalog, preload.Config{
		Workers:          cfg.Preload.Workers,
		QueriesPerFactor: cfg.Preload.QueriesPerFactor,
		CoverageTarget:   cfg.Preload.CoverageTarget,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create preloader", zap.Error(err))
	}
	defer preloader.Stop()

	server := chiTransport.NewServer(retrievalSvc, preloader, store, logger)

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

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instruction.
func buildEmbedder(cfg config.Config, store *dbRedis.Store, logger *zap.Logger) domain.Embedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = embcache.New(base, store, cfg.Cache.KeyPrefix, metrics.EmbeddingCacheTotal, logger)

	// Instruction prefix goes outermost so the cache key includes it.
	if cfg.Embedding.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, cfg.Embedding.QueryInstruction)
	}
	return embedder
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
