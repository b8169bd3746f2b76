package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    Namespace + "_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    Namespace + "_cache_operation_duration_seconds",
			Help:    "Time to complete cache operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"cache_name", "operation"},
	)

	CacheItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: Namespace + "_cache_items_total",
			Help: "Current number of items in cache",
		},
		[]string{"cache_name"},
	)

	DataFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    Namespace + "_data_fetch_duration_seconds",
			Help:    "Time to fetch data from an upstream source",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	DataFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_data_fetch_errors_total",
			Help: "Total number of upstream fetch errors",
		},
		[]string{"source"},
	)

	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    Namespace + "_render_duration_seconds",
			Help:    "Time to render a certificate",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"mode"},
	)

	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_renders_total",
			Help: "Certificate renders by outcome",
		},
		[]string{"mode", "outcome"},
	)

	RegionResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_region_resolutions_total",
			Help: "Region resolutions by outcome",
		},
		[]string{"outcome"},
	)

	PrintAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_print_attempts_total",
			Help: "Print attempts by outcome",
		},
		[]string{"outcome"},
	)

	Signatures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: Namespace + "_signatures_total",
			Help: "Certificates signed",
		},
	)

	LiveDocuments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: Namespace + "_live_documents",
			Help: "Rendered documents currently held in memory",
		},
	)

	ViewerSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: Namespace + "_viewer_sessions",
			Help: "Open viewer sessions",
		},
	)

	ViewersSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: Namespace + "_viewers_swept_total",
			Help: "Viewer sessions closed after sitting idle",
		},
	)
)
