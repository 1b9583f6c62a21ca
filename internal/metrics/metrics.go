package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline stages.
const (
	StageNormalize = "normalize"
	StageEmbed     = "embed"
	StageSearch    = "search"
	StageEnrich    = "enrich"
	StageSuggest   = "suggest"
)

var (
	// PipelineStageDuration tracks how long each matching stage takes.
	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dishfinder_stage_duration_seconds",
			Help:    "Duration of recipe matching pipeline stages in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"stage"},
	)

	// PipelineStageErrors counts failed pipeline stages, absorbed or not.
	PipelineStageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dishfinder_stage_errors_total",
			Help: "Total number of failed recipe matching pipeline stages",
		},
		[]string{"stage"},
	)

	// CacheLookups counts cache lookups by cache name and result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dishfinder_cache_lookups_total",
			Help: "Total number of cache lookups",
		},
		[]string{"cache", "result"},
	)

	// CircuitBreakerState is 0 when closed, 1 when half-open and 2 when open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dishfinder_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// HTTPRequestsTotal counts handled requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dishfinder_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dishfinder_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// IngestRecordsTotal counts ingestion outcomes (stored, skipped, failed).
	IngestRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dishfinder_ingest_records_total",
			Help: "Total number of recipe records processed by ingestion",
		},
		[]string{"outcome"},
	)
)

// ObserveStage records the duration of a pipeline stage and counts it as
// failed when err is non-nil.
func ObserveStage(stage string, start time.Time, err error) {
	PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	if err != nil {
		PipelineStageErrors.WithLabelValues(stage).Inc()
	}
}
