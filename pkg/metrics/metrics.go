package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fintrack_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fintrack_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	DatabaseConnectionsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fintrack_database_open_connections",
			Help: "Number of open database connections",
		},
	)

	// TransactionsCreated counts ledger writes by transaction type
	TransactionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fintrack_transactions_created_total",
			Help: "Transactions recorded through the ledger write path",
		},
		[]string{"type"},
	)

	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fintrack_analysis_duration_seconds",
			Help:    "Time spent building an analytics report",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"kind"},
	)

	AnalysisCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fintrack_analysis_cache_total",
			Help: "Analytics cache lookups by result",
		},
		[]string{"result"},
	)

	// AICallsTotal counts narrative generation calls by provider and outcome
	AICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fintrack_ai_calls_total",
			Help: "AI provider calls",
		},
		[]string{"provider", "outcome"},
	)

	AINormalizationFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fintrack_ai_normalization_fallbacks_total",
			Help: "AI replies that could not be parsed and fell back to the default narrative",
		},
	)

	ReconciliationDrift = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fintrack_reconciliation_drift_total",
			Help: "Balances found out of sync with the ledger",
		},
		[]string{"kind"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fintrack_events_published_total",
			Help: "Domain events published",
		},
		[]string{"routing_key", "outcome"},
	)
)
