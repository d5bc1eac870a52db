// Command astroseed ingests a sectioned rules document into the passage
// index: parse, chunk, embed, store.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/lakshaychetal/astrologyfinalrk/internal/config"
	dbRedis "github.com/lakshaychetal/astrologyfinalrk/internal/db/redis"
	"github.com/lakshaychetal/astrologyfinalrk/internal/domain"
	"github.com/lakshaychetal/astrologyfinalrk/internal/knowledge"
	logpkg "github.com/lakshaychetal/astrologyfinalrk/internal/logger"
	"github.com/lakshaychetal/astrologyfinalrk/internal/metrics"
	"github.com/lakshaychetal/astrologyfinalrk/internal/repository/corpus"
	"github.com/lakshaychetal/astrologyfinalrk/internal/repository/embcache"
	openaiEmb "github.com/lakshaychetal/astrologyfinalrk/internal/transport/openai"
	ingestuc "github.com/lakshaychetal/astrologyfinalrk/internal/usecase/ingest"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "path to the sectioned rules document")
	flag.Parse()

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

	if filePath == "" {
		logger.Fatal("missing -file flag")
	}

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("Failed to open input", zap.Error(err))
	}
	defer f.Close()

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

	metrics.RegisterEmbeddingMetrics()

	// Documents are embedded without the query instruction prefix.
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	var embedder domain.Embedder = embcache.New(base, store, cfg.Cache.KeyPrefix, metrics.EmbeddingCacheTotal, logger)

	corpusRepo := corpus.New(store, cfg.Corpus.IndexName, cfg.Corpus.KeyPrefix).
		WithHNSW(corpus.HNSWConfig{
			M:           cfg.Corpus.HNSWM,
			EFConstruct: cfg.Corpus.HNSWEFConstruct,
		})

	if err := corpusRepo.EnsureIndex(ctx, cfg.Embedding.Dimensions); err != nil {
		logger.Fatal("Failed to ensure index", zap.Error(err))
	}

	svc := ingestuc.New(embedder, corpusRepo, knowledge.Default(), ingestuc.Config{
		TargetTokens: cfg.Corpus.ChunkTargetTokens,
		OverlapLines: cfg.Corpus.ChunkOverlapLines,
	}, logger)

	stats, err := svc.Ingest(ctx, f)
	if err != nil {
		logger.Fatal("Ingestion failed", zap.Error(err))
	}

	logger.Info("Ingestion complete",
		zap.String("file", filePath),
		zap.Int("sections", stats.Sections),
		zap.Int("chunks", stats.Chunks),
		zap.Int("rare_rules", stats.RareRules),
	)
}
