// Package metrics defines the Prometheus metric collectors used by the
// pre-ranker and its storage tiers, and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	PrerankCyclesTotal     *prometheus.CounterVec
	PrerankCandidatesIn    prometheus.Histogram
	PrerankBatchSize       prometheus.Histogram
	PrerankRelaxedHeld     prometheus.Counter
	PrerankDedupDropped    prometheus.Counter
	PrerankDeclutterDrops  prometheus.Counter
	PartitionLoadsTotal    *prometheus.CounterVec
	PartitionRetriesTotal  *prometheus.CounterVec
	DistanceFallbacksTotal *prometheus.CounterVec

	SectionCacheHitsTotal   prometheus.Counter
	SectionCacheMissesTotal prometheus.Counter
	CircuitBreakerState     *prometheus.GaugeVec
	EditsAppliedTotal       *prometheus.CounterVec
	BatchesPublishedTotal   *prometheus.CounterVec
}

// New creates all collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		PrerankCyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prerank_cycles_total",
				Help: "Pre-ranking update cycles by whether the cycle was final.",
			},
			[]string{"final"},
		),
		PrerankCandidatesIn: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "prerank_candidates_in",
				Help:    "Candidates entering a pre-ranking cycle.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 9),
			},
		),
		PrerankBatchSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "prerank_batch_size",
				Help:    "Candidates handed to the ranker per cycle.",
				Buckets: []float64{0, 1, 10, 50, 100, 200, 300, 500, 1000},
			},
		),
		PrerankRelaxedHeld: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "prerank_relaxed_held_total",
				Help: "Relaxed candidates held back from intermediate cycles.",
			},
		),
		PrerankDedupDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "prerank_dedup_dropped_total",
				Help: "Duplicate candidates collapsed by feature id.",
			},
		),
		PrerankDeclutterDrops: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "prerank_declutter_dropped_total",
				Help: "Viewport candidates removed by filtering or decluttering.",
			},
		),
		PartitionLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auxtable_partition_loads_total",
				Help: "Partition table loads by result (loaded, unavailable).",
			},
			[]string{"result"},
		),
		PartitionRetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "partition_store_retries_total",
				Help: "Retried partition store reads, by operation.",
			},
			[]string{"operation"},
		),
		DistanceFallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auxtable_distance_fallbacks_total",
				Help: "Candidates whose center was not in the centers table, by fallback kind (edited, estimate).",
			},
			[]string{"kind"},
		),
		SectionCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "section_cache_hits_total",
				Help: "Partition sections served from Redis.",
			},
		),
		SectionCacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "section_cache_misses_total",
				Help: "Partition sections loaded from the backing store.",
			},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
		EditsAppliedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "editor_events_applied_total",
				Help: "Feature edit events applied to the overlay, by status.",
			},
			[]string{"status"},
		),
		BatchesPublishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ranker_batches_published_total",
				Help: "Pre-ranked batches published downstream, by outcome.",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.PrerankCyclesTotal,
		m.PrerankCandidatesIn,
		m.PrerankBatchSize,
		m.PrerankRelaxedHeld,
		m.PrerankDedupDropped,
		m.PrerankDeclutterDrops,
		m.PartitionLoadsTotal,
		m.PartitionRetriesTotal,
		m.DistanceFallbacksTotal,
		m.SectionCacheHitsTotal,
		m.SectionCacheMissesTotal,
		m.CircuitBreakerState,
		m.EditsAppliedTotal,
		m.BatchesPublishedTotal,
	)

	return m
}

// Handler returns the scrape handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
