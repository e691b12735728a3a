package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credex_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "credex_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	requestBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "credex_request_body_bytes",
			Help:    "Size of posted token documents in bytes",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		},
	)

	// Extraction metrics
	extractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credex_extractions_total",
			Help: "Total number of extraction requests",
		},
		[]string{"transport", "status"}, // transport: http, websocket; status: success, invalid
	)

	extractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "credex_extraction_duration_seconds",
			Help:    "Time spent extracting fields from a decoded document",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"transport"},
	)

	tokensPerDocument = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "credex_document_tokens",
			Help:    "Number of OCR tokens per document",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	fieldsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credex_fields_total",
			Help: "Extracted fields by outcome",
		},
		[]string{"field", "outcome"}, // outcome: found, missing
	)

	canonicalizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credex_canonicalizations_total",
			Help: "Standalone code canonicalization requests by outcome",
		},
		[]string{"outcome"},
	)

	verificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credex_verifications_total",
			Help: "Registry verifications by outcome",
		},
		[]string{"outcome"}, // outcome: found, expired, not_found, error
	)

	// Rate limiting metrics
	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credex_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"type"},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "credex_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credex_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)
