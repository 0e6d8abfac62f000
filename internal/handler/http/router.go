package http

import (
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"news-ingest/internal/handler/http/auth"
	"news-ingest/internal/handler/http/ingest"
	"news-ingest/internal/handler/http/requestid"
	"news-ingest/internal/observability/tracing"
)

// RouterConfig collects what NewRouter needs.
type RouterConfig struct {
	Logger          *slog.Logger
	Service         ingest.ArticleExtractor
	Auth            *auth.Authenticator
	Limiter         *RateLimiter // nil disables rate limiting
	Version         string
	MaxBodyBytes    int64
	RequestTimeout  time.Duration
	// MetricsDisabled leaves GET /metrics unrouted. Counters still update.
	MetricsDisabled bool
	// CORSOrigins are the allowed browser origins; empty disables CORS.
	CORSOrigins     []string
}

// NewRouter builds the API handler.
//
// Global chain, outermost first:
// request ID → tracing → logging → recover → metrics → CORS → security headers → body limit.
// POST /ingest additionally runs rate limit → auth → request timeout. The
// limiter comes before auth so that credential guessing is throttled too.
// CORS sits outside both so preflights never spend budget or need credentials.
// GET /health, /metrics and /swagger/ are public.
func NewRouter(cfg RouterConfig) http.Handler {
	var ingestHandler http.Handler = ingest.Handler{Svc: cfg.Service}
	if cfg.RequestTimeout > 0 {
		ingestHandler = RequestTimeout(cfg.RequestTimeout)(ingestHandler)
	}
	if cfg.Auth != nil {
		ingestHandler = cfg.Auth.Middleware(ingestHandler)
	}
	if cfg.Limiter != nil {
		ingestHandler = cfg.Limiter.Middleware(ingestHandler)
	}

	mux := http.NewServeMux()
	mux.Handle("POST /ingest", ingestHandler)
	mux.Handle("GET /health", &HealthHandler{
		Version:     cfg.Version,
		AuthEnabled: cfg.Auth != nil && cfg.Auth.Enabled(),
		Limiter:     cfg.Limiter,
	})
	if !cfg.MetricsDisabled {
		mux.Handle("GET /metrics", MetricsHandler())
	}
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// Apply in reverse order (innermost to outermost)
	var h http.Handler = mux
	h = LimitRequestBody(cfg.MaxBodyBytes)(h)
	h = SecurityHeaders(h)
	if len(cfg.CORSOrigins) > 0 {
		h = CORS(DefaultCORSConfig(cfg.CORSOrigins, cfg.Logger))(h)
	}
	h = MetricsMiddleware(h)
	h = Recover(cfg.Logger)(h)
	h = Logging(cfg.Logger)(h)
	h = tracing.Middleware(h)
	h = requestid.Middleware(h)
	return h
}
