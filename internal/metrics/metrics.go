// Package metrics provides Prometheus metrics for the pull-sheet service.
// Scrape these at /metrics for dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pullsheet_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pullsheet_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Parser quality metrics. These are quality signals, not errors; the
	// pipeline completes whenever any records parse.
	ParsedRecordsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pullsheet_parsed_records_total",
			Help: "Total line items recovered from packing slips",
		},
	)

	UnattributableLinesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pullsheet_unattributable_lines_total",
			Help: "Lines that could not be attributed to any record",
		},
	)

	PriceMismatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pullsheet_price_mismatches_total",
			Help: "Records whose extended price disagreed with quantity x unit price",
		},
	)

	// Scryfall API Metrics
	ScryfallRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pullsheet_scryfall_requests_total",
			Help: "Total number of Scryfall API requests made",
		},
	)

	ScryfallRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pullsheet_scryfall_retries_total",
			Help: "Scryfall requests retried after a transient failure",
		},
	)

	// Resolution Metrics
	ResolutionCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pullsheet_resolution_cache_hits_total",
			Help: "Attribute lookups served from the resolution cache",
		},
	)

	ResolutionCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pullsheet_resolution_cache_misses_total",
			Help: "Attribute lookups that required an external call",
		},
	)

	ResolutionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pullsheet_resolution_failures_total",
			Help: "Lookups that failed both the exact and fuzzy paths",
		},
	)

	UnresolvedRecordsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pullsheet_unresolved_records_total",
			Help: "Records left with Unknown color after enrichment",
		},
	)
)
