package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vartalab_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vartalab_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Relay metrics
	MessagesPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vartalab_messages_persisted_total",
			Help: "Total messages appended to the store",
		},
	)

	PushesDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vartalab_pushes_delivered_total",
			Help: "Total realtime pushes queued to a live connection",
		},
	)

	PushesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vartalab_pushes_dropped_total",
			Help: "Total realtime pushes dropped (full buffer or dead connection)",
		},
	)

	// Gateway metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vartalab_ws_connections",
			Help: "Currently open WebSocket connections",
		},
	)

	// Account metrics
	SignupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vartalab_signups_total",
			Help: "Total accounts created",
		},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vartalab_logins_total",
			Help: "Total login attempts",
		},
		[]string{"result"}, // "ok" or "failed"
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vartalab_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)
)
