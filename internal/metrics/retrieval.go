package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval pipeline Prometheus metrics.
var (
	RetrievalRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "astrorag",
			Name:      "retrieval_requests_total",
			Help:      "Total number of retrieval requests",
		},
		[]string{"status"}, // "ok" / "no_knowledge" / "error"
	)

	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "astrorag",
			Name:      "retrieval_duration_seconds",
			Help:      "Retrieval request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"source"}, // "cache_l1" / "cache_l2" / "live"
	)

	PassageCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "astrorag",
			Name:      "passage_cache_total",
			Help:      "Passage cache hits and misses per level",
		},
		[]string{"level", "result"}, // level: "l1" / "l2"
	)

	CacheFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "astrorag",
			Name:      "cache_fallback_total",
			Help:      "Times the shared cache was unreachable and the local tier served",
		},
	)

	PreloadTasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "astrorag",
			Name:      "preload_tasks_total",
			Help:      "Background preload tasks by outcome",
		},
		[]string{"status"}, // "ok" / "error" / "rejected"
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers retrieval pipeline metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalRequestsTotal)
	prometheus.MustRegister(RetrievalDuration)
	prometheus.MustRegister(PassageCacheTotal)
	prometheus.MustRegister(CacheFallbackTotal)
	prometheus.MustRegister(PreloadTasksTotal)
	retrievalMetricsRegistered = true
}
