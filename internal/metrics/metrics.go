// Package metrics provides the centralized Prometheus metrics registry for
// the prediction service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dinger",
		Name:      "predictions_total",
		Help:      "Total number of scored matchups by tier",
	}, []string{"tier"})
	MatchupsExcludedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dinger",
		Name:      "matchups_excluded_total",
		Help:      "Total number of matchups excluded for missing identity fields",
	})
	FetchRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dinger",
		Name:      "fetch_requests_total",
		Help:      "Total number of external fetch attempts by source",
	}, []string{"source"})
	FetchFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dinger",
		Name:      "fetch_failures_total",
		Help:      "Total number of fetches that exhausted retries by source",
	}, []string{"source"})
	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dinger",
		Name:      "cache_hits_total",
		Help:      "Total number of disk cache hits by data kind",
	}, []string{"kind"})
	CacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dinger",
		Name:      "cache_misses_total",
		Help:      "Total number of disk cache misses by data kind",
	}, []string{"kind"})
	AlertsSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dinger",
		Name:      "alerts_sent_total",
		Help:      "Total number of Telegram alert messages sent",
	})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dinger",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of HTTP circuit breaker trips",
	})
)

// Gauge metrics
var (
	LastRunScored = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dinger",
		Name:      "last_run_scored",
		Help:      "Number of matchups scored in the most recent run",
	})
	LastRunDegraded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dinger",
		Name:      "last_run_degraded",
		Help:      "Number of matchups scored with defaulted inputs in the most recent run",
	})
	ModelCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dinger",
		Name:      "model_cache_hit_ratio",
		Help:      "Hit ratio of the model prediction cache",
	})
	LiveClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dinger",
		Name:      "live_clients",
		Help:      "Number of connected live-update websocket clients",
	})
)

// Histogram metrics
var (
	ScoringDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dinger",
		Name:      "scoring_duration_seconds",
		Help:      "Duration of scoring one matchup in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	PipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dinger",
		Name:      "pipeline_duration_seconds",
		Help:      "Duration of full daily pipeline runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dinger",
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(MatchupsExcludedTotal)
		registry.MustRegister(FetchRequestsTotal)
		registry.MustRegister(FetchFailuresTotal)
		registry.MustRegister(CacheHitsTotal)
		registry.MustRegister(CacheMissesTotal)
		registry.MustRegister(AlertsSentTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)

		registry.MustRegister(LastRunScored)
		registry.MustRegister(LastRunDegraded)
		registry.MustRegister(ModelCacheHitRatio)
		registry.MustRegister(LiveClients)

		registry.MustRegister(ScoringDuration)
		registry.MustRegister(PipelineDuration)
		registry.MustRegister(BacktestDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPrediction records one scored matchup.
func RecordPrediction(tier string) {
	PredictionsTotal.WithLabelValues(tier).Inc()
}

// RecordFetch records one external fetch attempt.
func RecordFetch(source string) {
	FetchRequestsTotal.WithLabelValues(source).Inc()
}

// RecordFetchFailure records a fetch that exhausted its retries.
func RecordFetchFailure(source string) {
	FetchFailuresTotal.WithLabelValues(source).Inc()
}

// RecordCacheHit records a disk cache hit.
func RecordCacheHit(kind string) {
	CacheHitsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheMiss records a disk cache miss.
func RecordCacheMiss(kind string) {
	CacheMissesTotal.WithLabelValues(kind).Inc()
}
