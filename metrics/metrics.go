package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// StaticLookups counts static lookups by outcome and served content encoding
	StaticLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pages_ssr_static_lookups_total",
			Help: "The number of static file lookups by outcome and content encoding",
		},
		[]string{"outcome", "content_encoding"},
	)

	// ServingFileSize metric for file size serving.
	ServingFileSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pages_ssr_serving_file_size_bytes",
			Help:    "The size in bytes for each file that has been served",
			Buckets: prometheus.ExponentialBuckets(1.0, 10.0, 9),
		},
	)

	// AssetRewrites counts asset path rewrites, degenerate ones included
	AssetRewrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pages_ssr_asset_rewrites_total",
			Help: "The number of asset paths rewritten to a flat static lookup",
		},
		[]string{"degenerate"},
	)

	// RendererRequests counts requests handed to the dynamic renderer per entry point
	RendererRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pages_ssr_renderer_requests_total",
			Help: "The number of requests delegated to the dynamic renderer",
		},
		[]string{"route"},
	)

	// RendererUpstreamRequests counts the requests made to an upstream renderer by status code
	RendererUpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pages_ssr_renderer_upstream_requests_total",
			Help: "The number of requests proxied to the upstream renderer",
		},
		[]string{"status_code"},
	)

	// RendererUpstreamDuration observes the round trip time to the upstream renderer
	RendererUpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pages_ssr_renderer_upstream_duration_seconds",
			Help: "The time (in seconds) it takes the upstream renderer to respond",
		},
		[]string{"status_code"},
	)

	// RendererUpstreamTrace observes the request trace steps against the upstream renderer
	RendererUpstreamTrace = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pages_ssr_renderer_upstream_trace_seconds",
			Help:    "Upstream renderer request tracing",
			Buckets: []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.100, 0.250, 0.500, 1, 2, 5, 10, 20, 50},
		},
		[]string{"request_stage"},
	)

	// VFSOperations counts VFS operations (open, lstat)
	VFSOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pages_ssr_vfs_operations_total",
			Help: "The number of VFS operations",
		},
		[]string{"vfs_name", "operation", "success"},
	)

	// RejectedRequestsCount counts requests rejected before routing because of an unknown HTTP method
	RejectedRequestsCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pages_ssr_unknown_method_rejected_requests",
			Help: "The number of requests with unknown HTTP method which were rejected",
		},
	)

	// LimitListenerMaxConns is the maximum of concurrent connections set in the limit listener
	LimitListenerMaxConns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pages_ssr_limit_listener_max_conns",
			Help: "The maximum of concurrent connections set in the limit listener",
		},
	)

	// LimitListenerConcurrentConns is the number of concurrent connections in the limit listener
	LimitListenerConcurrentConns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pages_ssr_limit_listener_concurrent_conns",
			Help: "The number of concurrent connections in the limit listener",
		},
	)

	// LimitListenerWaitingConns is the number of connections waiting in the limit listener
	LimitListenerWaitingConns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pages_ssr_limit_listener_waiting_conns",
			Help: "The number of backlogged connections waiting for a slot in the limit listener",
		},
	)
)

// MustRegister collectors with the Prometheus client
func MustRegister() {
	prometheus.MustRegister(
		StaticLookups,
		ServingFileSize,
		AssetRewrites,
		RendererRequests,
		RendererUpstreamRequests,
		RendererUpstreamDuration,
		RendererUpstreamTrace,
		VFSOperations,
		RejectedRequestsCount,
		LimitListenerMaxConns,
		LimitListenerConcurrentConns,
		LimitListenerWaitingConns,
	)
}
