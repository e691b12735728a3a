package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/credex/internal/extract"
	"github.com/MeKo-Tech/credex/internal/registry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	extractor    *extract.Extractor
	registry     registry.Registry
	rateLimiter  *RateLimiter
	corsOrigin   string
	maxBodyBytes int64
	timeout      time.Duration
	version      string
	now          func() time.Time
	logger       *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Host       string
	Port       int
	CORSOrigin string
	MaxBodyKB  int
	TimeoutSec int
	Version    string

	Extract   extract.Options
	RateLimit RateLimitConfig

	// Registry is used for ?verify=1 requests. Nil disables verification.
	Registry registry.Registry
	// Now decides licence expiry during verification. Nil means time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// RateLimitConfig holds per-client request limits and daily quotas. Zero
// values disable the corresponding limit.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	RequestsPerHour   int
	MaxRequestsPerDay int
	MaxDataPerDay     int64
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Registry bool   `json:"registry"`
	Time     string `json:"time"`
}

// ExtractResponse is returned by POST /extract and over /ws/extract.
type ExtractResponse struct {
	RequestID    string                 `json:"request_id"`
	Result       *extract.Result        `json:"result"`
	Verification *registry.Verification `json:"verification"`
}

// CanonicalizeRequest is the body of POST /canonicalize.
type CanonicalizeRequest struct {
	Code string `json:"code"`
}

// CanonicalizeResponse is returned by POST /canonicalize.
type CanonicalizeResponse struct {
	RequestID string   `json:"request_id"`
	Canonical string   `json:"canonical"`
	Variants  []string `json:"variants"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Kind      string `json:"kind"`
	Error     string `json:"error"`
}

// NewServer creates a new extraction server.
func NewServer(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts := config.Extract
	opts.Logger = logger

	maxBody := int64(config.MaxBodyKB) * 1024
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	timeout := time.Duration(config.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	s := &Server{
		extractor:    extract.New(opts),
		registry:     config.Registry,
		corsOrigin:   config.CORSOrigin,
		maxBodyBytes: maxBody,
		timeout:      timeout,
		version:      config.Version,
		now:          config.Now,
		logger:       logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if config.RateLimit.Enabled {
		rl := config.RateLimit
		s.rateLimiter = NewRateLimiter(rl.RequestsPerMinute, rl.RequestsPerHour, rl.MaxRequestsPerDay, rl.MaxDataPerDay)
	}
	return s
}

// Close releases server resources.
func (s *Server) Close() error {
	return registry.Close(s.registry)
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/extract", s.corsMiddleware(s.rateLimitMiddleware(s.extractHandler)))
	mux.HandleFunc("/canonicalize", s.corsMiddleware(s.rateLimitMiddleware(s.canonicalizeHandler)))
	mux.HandleFunc("/ws/extract", s.corsMiddleware(s.rateLimitMiddleware(s.extractWebSocketHandler)))
}

// Handler returns a mux with every route installed.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}
