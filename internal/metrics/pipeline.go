package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query pipeline Prometheus metrics.
var (
	AskRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "ask_requests_total",
			Help:      "Total number of orchestrated ask requests",
		},
		[]string{"intent", "status"},
	)

	AskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "concierge",
			Name:      "ask_duration_seconds",
			Help:      "End-to-end ask pipeline duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"intent"},
	)

	SearchFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "search_fallback_total",
			Help:      "Times the local exact scan replaced the vector index",
		},
	)

	GenerativeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "generative_requests_total",
			Help:      "Total number of generative backend requests",
		},
		[]string{"operation", "status"},
	)

	GenerativeRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "concierge",
			Name:      "generative_request_duration_seconds",
			Help:      "Generative backend request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(AskRequestsTotal)
	prometheus.MustRegister(AskDuration)
	prometheus.MustRegister(SearchFallbackTotal)
	prometheus.MustRegister(GenerativeRequestsTotal)
	prometheus.MustRegister(GenerativeRequestDuration)
	prometheus.MustRegister(EmbeddingCacheTotal)
	pipelineMetricsRegistered = true
}
