// Package preload warms the passage cache for a chart in the background so
// the first real question answers from L1 instead of paying for a live
// pipeline run.
package preload

import (
	"context"
	"fmt"
	"strings"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/lakshaychetal/astrologyfinalrk/internal/cache"
	"github.com/lakshaychetal/astrologyfinalrk/internal/knowledge"
	"github.com/lakshaychetal/astrologyfinalrk/internal/metrics"
	"github.com/lakshaychetal/astrologyfinalrk/internal/usecase/retrieval"
)

// retriever is the retrieval surface the preloader consumes (ISP).
type retriever interface {
	Retrieve(ctx context.Context, req retrieval.Request) (*retrieval.Result, error)
}

// cacheProbe checks warm state without deserializing entries.
type cacheProbe interface {
	L1Key(intent, chartBucket string) string
	Has(ctx context.Context, key string) bool
}

// Config tunes the warmup worker pool and readiness bar.
type Config struct {
	Workers          int
	QueriesPerFactor int
	// CoverageTarget is the warm-key fraction at which a chart counts as
	// ready, e.g. 0.8.
	CoverageTarget float64
}

// Preloader fans chart factors out to background retrieval tasks.
type Preloader struct {
	retriever retriever
	cache     cacheProbe
	catalog   knowledge.Catalog
	pool      *ants.Pool
	cfg       Config
	logger    *zap.Logger
}

// New creates a preloader with its own worker pool.
func New(r retriever, c cacheProbe, catalog knowledge.Catalog, cfg Config, logger *zap.Logger) (*Preloader, error) {
	pool, err := ants.NewPool(cfg.Workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create preload pool: %w", err)
	}
	return &Preloader{
		retriever: r,
		cache:     c,
		catalog:   catalog,
		pool:      pool,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Preload submits warmup tasks for every recognized chart factor and
// returns the number of tasks accepted. Tasks run on background contexts:
// the caller's request finishing must not cancel the warmup.
func (p *Preloader) Preload(factors map[string]string) int {
	submitted := 0
	for _, key := range knowledge.DefaultFactorKeys {
		value := strings.TrimSpace(factors[key])
		if value == "" {
			continue
		}

		for _, fq := range factorQueries(key, value, p.cfg.QueriesPerFactor) {
			if err := p.pool.Submit(p.task(fq, factors)); err != nil {
				metrics.PreloadTasksTotal.WithLabelValues("rejected").Inc()
				p.logger.Warn("preload task rejected", zap.String("factor", key), zap.Error(err))
				continue
			}
			submitted++
		}
	}
	p.logger.Info("preload submitted", zap.Int("tasks", submitted))
	return submitted
}

func (p *Preloader) task(fq factorQuery, factors map[string]string) func() {
	return func() {
		_, err := p.retriever.Retrieve(context.Background(), retrieval.Request{
			Question:     fq.query,
			Intent:       fq.intent,
			ChartFactors: factors,
		})
		if err != nil {
			metrics.PreloadTasksTotal.WithLabelValues("error").Inc()
			p.logger.Debug("preload task failed", zap.String("query", fq.query), zap.Error(err))
			return
		}
		metrics.PreloadTasksTotal.WithLabelValues("ok").Inc()
	}
}

// Coverage reports how warm the cache is for a chart.
type Coverage struct {
	Ready    bool    `json:"ready"`
	Coverage float64 `json:"coverage"`
	Checked  int     `json:"checked"`
	Warm     int     `json:"warm"`
}

// Status probes the L1 keys a warmed chart would occupy. Factors not
// present in the chart are skipped, not counted against coverage.
func (p *Preloader) Status(ctx context.Context, factors map[string]string) Coverage {
	bucket := cache.ChartBucket(factors, p.catalog.FingerprintKeys())

	intents := map[string]struct{}{}
	for _, key := range knowledge.DefaultFactorKeys {
		if strings.TrimSpace(factors[key]) == "" {
			continue
		}
		intents[factorIntent(key)] = struct{}{}
	}

	cov := Coverage{}
	for intent := range intents {
		cov.Checked++
		if p.cache.Has(ctx, p.cache.L1Key(intent, bucket)) {
			cov.Warm++
		}
	}
	if cov.Checked > 0 {
		cov.Coverage = float64(cov.Warm) / float64(cov.Checked)
	}
	cov.Ready = cov.Checked > 0 && cov.Coverage >= p.cfg.CoverageTarget
	return cov
}

// Stop releases the worker pool. Queued tasks are dropped.
func (p *Preloader) Stop() {
	p.pool.Release()
}
