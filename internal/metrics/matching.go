package metrics

import "github.com/prometheus/client_golang/prometheus"

// Matching and match cache Prometheus metrics.
var (
	MatchPairsScoredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "playmatch",
			Name:      "match_pairs_scored_total",
			Help:      "Song/playlist pairs scored",
		},
		[]string{"status"}, // "ok" / "error"
	)

	MatchDeepAnalysisTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "playmatch",
			Name:      "match_deep_analysis_total",
			Help:      "Pairs that passed the early-score gate and ran tier-2 scoring",
		},
	)

	MatchBatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "playmatch",
			Name:      "match_batch_duration_seconds",
			Help:      "Batch matching duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	MatchBatchSongsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "playmatch",
			Name:      "match_batch_songs_total",
			Help:      "Songs processed by batch matching",
		},
		[]string{"result"}, // "matched" / "failed"
	)

	MatchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "playmatch",
			Name:      "match_cache_total",
			Help:      "Match cache lookups by tier and result",
		},
		[]string{"tier", "result"}, // tier: "memory" / "persistent"; result: "hit" / "miss"
	)

	MatchCacheEvictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "playmatch",
			Name:      "match_cache_evictions_total",
			Help:      "Match cache entries removed by expiry, capacity or invalidation",
		},
	)

	MatchCacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "playmatch",
			Name:      "match_cache_entries",
			Help:      "Entries in the in-memory match cache",
		},
	)

	MatchPersistErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "playmatch",
			Name:      "match_persist_errors_total",
			Help:      "Failed writes to the persistent match store",
		},
		[]string{"op"},
	)
)

var matchMetricsRegistered bool

// RegisterMatchMetrics registers matching and match cache metrics. Must be called once from main.
func RegisterMatchMetrics() {
	if matchMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		MatchPairsScoredTotal,
		MatchDeepAnalysisTotal,
		MatchBatchDuration,
		MatchBatchSongsTotal,
		MatchCacheTotal,
		MatchCacheEvictionsTotal,
		MatchCacheEntries,
		MatchPersistErrorsTotal,
	)
	matchMetricsRegistered = true
}
