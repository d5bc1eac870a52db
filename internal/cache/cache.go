// Package cache implements the two-level passage cache: L2 keyed by the full
// prompt hash (exact match, short TTL) and L1 keyed by intent plus chart
// bucket (similar questions, long TTL). Redis is the primary tier with a
// transparent in-process LRU fallback.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lakshaychetal/astrologyfinalrk/internal/db"
	"github.com/lakshaychetal/astrologyfinalrk/internal/domain"
	"github.com/lakshaychetal/astrologyfinalrk/internal/metrics"
)

// Cache levels reported by Lookup.
const (
	LevelL1 = "l1"
	LevelL2 = "l2"
)

// kvStore is the consumer interface for the shared cache backend (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config holds cache manager settings.
type Config struct {
	KeyPrefix     string
	L1TTL         time.Duration
	L2TTL         time.Duration
	LocalCapacity int
}

// Manager is the two-level passage cache.
type Manager struct {
	kv     kvStore
	local  *localStore
	prefix string
	l1TTL  time.Duration
	l2TTL  time.Duration
	hits   *prometheus.CounterVec
	logger *zap.Logger
}

// New creates a cache manager. kv may be nil, in which case only the local
// tier is used. hits is a counter vec with labels "level" and "result".
func New(kv kvStore, cfg Config, hits *prometheus.CounterVec, logger *zap.Logger) *Manager {
	capacity := cfg.LocalCapacity
	if capacity <= 0 {
		capacity = 512
	}
	return &Manager{
		kv:     kv,
		local:  newLocalStore(capacity),
		prefix: cfg.KeyPrefix,
		l1TTL:  cfg.L1TTL,
		l2TTL:  cfg.L2TTL,
		hits:   hits,
		logger: logger,
	}
}

// L1Key builds the intent + chart bucket key.
func (m *Manager) L1Key(intent, chartBucket string) string {
	if intent == "" {
		intent = "unknown"
	}
	return m.prefix + "l1:" + intent + ":" + chartBucket
}

// L2Key builds the full prompt hash key.
func (m *Manager) L2Key(promptHash string) string {
	return m.prefix + "l2:" + promptHash
}

// Lookup checks L2 first (exact prompt), then L1 (similar question, same
// chart bucket). Returns the passages, the level that hit, and ok.
func (m *Manager) Lookup(ctx context.Context, l2Key, l1Key string) ([]domain.Passage, string, bool) {
	if ps, ok := m.get(ctx, l2Key); ok {
		m.incHit(LevelL2, "hit")
		return ps, LevelL2, true
	}
	m.incHit(LevelL2, "miss")

	if ps, ok := m.get(ctx, l1Key); ok {
		m.incHit(LevelL1, "hit")
		return ps, LevelL1, true
	}
	m.incHit(LevelL1, "miss")

	return nil, "", false
}

// Store writes the passages to both levels with their respective TTLs.
// Write failures are logged and absorbed; the caller already has the result.
func (m *Manager) Store(ctx context.Context, l2Key, l1Key string, passages []domain.Passage) {
	data, err := json.Marshal(passages)
	if err != nil {
		m.logger.Warn("Failed to marshal passages for cache", zap.Error(err))
		return
	}
	m.set(ctx, l2Key, data, m.l2TTL)
	m.set(ctx, l1Key, data, m.l1TTL)
}

// Has reports whether a key is present in either tier. Used by the
// preloader's coverage probe.
func (m *Manager) Has(ctx context.Context, key string) bool {
	_, ok := m.get(ctx, key)
	return ok
}

func (m *Manager) get(ctx context.Context, key string) ([]domain.Passage, bool) {
	data, ok := m.getBytes(ctx, key)
	if !ok {
		return nil, false
	}

	var passages []domain.Passage
	if err := json.Unmarshal(data, &passages); err != nil {
		m.logger.Warn("Corrupt cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return passages, true
}

func (m *Manager) getBytes(ctx context.Context, key string) ([]byte, bool) {
	if m.kv == nil {
		if data, ok := m.local.get(key); ok {
			return data, true
		}
		return nil, false
	}

	data, err := m.kv.Get(ctx, key)
	if err == nil {
		return data, true
	}
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, false
	}

	// Backend unreachable: serve from the local tier.
	metrics.CacheFallbackTotal.Inc()
	m.logger.Warn("Cache backend unavailable, using local tier",
		zap.String("key", key), zap.Error(err))
	if data, ok := m.local.get(key); ok {
		return data, true
	}
	return nil, false
}

func (m *Manager) set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	// Local tier is always populated so a backend outage still has warm entries.
	m.local.set(key, data, ttl)

	if m.kv == nil {
		return
	}
	if err := m.kv.SetWithTTL(ctx, key, data, ttl); err != nil {
		m.logger.Warn("Failed to write cache entry", zap.String("key", key), zap.Error(err))
	}
}

func (m *Manager) incHit(level, result string) {
	if m.hits != nil {
		m.hits.WithLabelValues(level, result).Inc()
	}
}
