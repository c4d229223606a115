package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Extraction strategy label values.
const (
	StrategyFencedBlock = "fenced_block"
	StrategyArrayScan   = "array_scan"
	StrategyProse       = "prose"
)

var (
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewflow_upstream_requests_total",
		Help: "Completed upstream sentiment requests by outcome.",
	}, []string{"outcome"})

	UpstreamRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reviewflow_upstream_request_duration_seconds",
		Help:    "Duration of individual upstream request attempts.",
		Buckets: prometheus.DefBuckets,
	})

	// ExtractionStrategyTotal makes drift in the upstream response format
	// observable: a rising prose share means the service stopped returning
	// clean structured blocks.
	ExtractionStrategyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewflow_extraction_strategy_total",
		Help: "Successful extractions by strategy used.",
	}, []string{"strategy"})

	ExtractionFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewflow_extraction_failures_total",
		Help: "Responses where no strategy recovered any entries.",
	})

	ValidationErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewflow_validation_errors_total",
		Help: "Entries dropped during validation.",
	})

	BreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reviewflow_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
	})

	SentimentDisagreementTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewflow_sentiment_disagreement_total",
		Help: "Records whose upstream label contradicts a strong local VADER polarity.",
	})

	RecordsStoredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewflow_records_stored_total",
		Help: "Analysis result records persisted to DynamoDB.",
	})
)
