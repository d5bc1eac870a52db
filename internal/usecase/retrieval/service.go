// Package retrieval implements knowledge retrieval for chart questions:
// meta-query expansion, parallel corpus search, tag enrichment, scoring
// and diverse selection, fronted by a two-level cache.
package retrieval

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/lakshaychetal/astrologyfinalrk/internal/cache"
	"github.com/lakshaychetal/astrologyfinalrk/internal/domain"
	"github.com/lakshaychetal/astrologyfinalrk/internal/knowledge"
	"github.com/lakshaychetal/astrologyfinalrk/internal/metrics"
)

// Config holds pipeline tuning knobs.
type Config struct {
	ScoreThreshold       float64
	RelaxedThreshold     float64
	RareRuleBoost        float64
	PrioritySectionBoost float64
	PerQueryTopK         int
	FinalTopK            int
	FanoutWorkers        int
	Timeout              time.Duration
}

// Request is a single retrieval call.
type Request struct {
	Question     string
	Intent       string
	ChartFactors map[string]string
	TopK         int
}

// Result carries the selected passages plus provenance for the caller.
type Result struct {
	Passages      []domain.Passage `json:"passages"`
	Intent        string           `json:"intent"`
	FromCache     bool             `json:"from_cache"`
	CacheLevel    string           `json:"cache_level,omitempty"`
	LowConfidence bool             `json:"low_confidence"`
}

// Service orchestrates the retrieval pipeline.
type Service struct {
	embedder domain.Embedder
	corpus   searcher
	cache    passageCache
	rerank   reranker
	catalog  knowledge.Catalog
	cfg      Config
	logger   *zap.Logger
	group    singleflight.Group
}

// NewService creates a retrieval service. cache may be nil to disable
// caching entirely.
func NewService(embedder domain.Embedder, corpus searcher, cache passageCache, rerank reranker, catalog knowledge.Catalog, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		embedder: embedder,
		corpus:   corpus,
		cache:    cache,
		rerank:   rerank,
		catalog:  catalog,
		cfg:      cfg,
		logger:   logger,
	}
}

// Retrieve answers a chart question with the best supporting passages.
// Cache hits return immediately; concurrent misses for the same prompt
// collapse into one live pipeline run.
func (s *Service) Retrieve(ctx context.Context, req Request) (*Result, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()

	l2Key, l1Key := s.keys(req)
	if s.cache != nil {
		if passages, level, ok := s.cache.Lookup(ctx, l2Key, l1Key); ok {
			metrics.RetrievalRequestsTotal.WithLabelValues("ok").Inc()
			metrics.RetrievalDuration.WithLabelValues("cache_" + level).Observe(time.Since(start).Seconds())
			return &Result{
				Passages:      passages,
				Intent:        req.Intent,
				FromCache:     true,
				CacheLevel:    level,
				LowConfidence: anyLowConfidence(passages),
			}, nil
		}
	}

	v, err, _ := s.group.Do(l2Key, func() (any, error) {
		return s.retrieveLive(ctx, req, l2Key, l1Key)
	})
	if err != nil {
		metrics.RetrievalRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	res := v.(*Result)
	status := "ok"
	if len(res.Passages) == 0 {
		status = "no_knowledge"
	}
	metrics.RetrievalRequestsTotal.WithLabelValues(status).Inc()
	metrics.RetrievalDuration.WithLabelValues("live").Observe(time.Since(start).Seconds())
	return res, nil
}

func (s *Service) keys(req Request) (l2Key, l1Key string) {
	promptHash := cache.PromptHash(req.Question, req.Intent, req.ChartFactors)
	bucket := cache.ChartBucket(req.ChartFactors, s.catalog.FingerprintKeys())

	if s.cache != nil {
		return s.cache.L2Key(promptHash), s.cache.L1Key(req.Intent, bucket)
	}
	// Without a cache the L2 key still serves as the singleflight key.
	return "l2:" + promptHash, "l1:" + req.Intent + ":" + bucket
}

func (s *Service) retrieveLive(ctx context.Context, req Request, l2Key, l1Key string) (*Result, error) {
	queries := s.buildQueries(req.Question, req.Intent, req.ChartFactors)

	candidates, succeeded, err := s.fanout(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("search fanout: %w", err)
	}
	if succeeded == 0 {
		return nil, domain.ErrCorpusUnavailable
	}

	s.enrichTags(candidates)
	candidates = dedupByContent(candidates)
	candidates = s.filterByIntent(req.Intent, candidates)
	candidates = s.applyThreshold(candidates)
	if len(candidates) == 0 {
		// An ordinary miss yields an empty result, never an error; errors
		// are reserved for backend unavailability. Empty results are not
		// cached so newly ingested passages surface on the next ask.
		s.logger.Info("retrieval found nothing above relaxed threshold",
			zap.String("intent", req.Intent),
			zap.Int("queries", len(queries)))
		return &Result{Passages: []domain.Passage{}, Intent: req.Intent}, nil
	}

	s.boost(req.Intent, candidates)
	candidates = dedupByContent(candidates)
	sortByScore(candidates)

	ranked := s.rerank.Rerank(req.Question, s.catalog.IntentTags(req.Intent), candidates)

	topK := req.TopK
	if topK <= 0 {
		topK = s.cfg.FinalTopK
	}
	selected := selectDiverse(ranked, topK)

	s.logger.Info("retrieval complete",
		zap.String("intent", req.Intent),
		zap.Int("queries", len(queries)),
		zap.Int("candidates", len(candidates)),
		zap.Int("selected", len(selected)))

	if s.cache != nil {
		s.cache.Store(ctx, l2Key, l1Key, selected)
	}

	return &Result{
		Passages:      selected,
		Intent:        req.Intent,
		LowConfidence: anyLowConfidence(selected),
	}, nil
}

func anyLowConfidence(passages []domain.Passage) bool {
	for _, p := range passages {
		if p.LowConfidence {
			return true
		}
	}
	return false
}
