package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"news-ingest/internal/config"
	"news-ingest/internal/infra/extractor"
	"news-ingest/internal/infra/fetcher"
	"news-ingest/internal/observability/logging"
	"news-ingest/internal/observability/tracing"
	"news-ingest/internal/usecase/ingest"

	hhttp "news-ingest/internal/handler/http"
	hauth "news-ingest/internal/handler/http/auth"

	_ "news-ingest/docs" // swagger docs
)

// @title           News Ingest API
// @version         1.0
// @description     Fetches a news article URL with SSRF protection and returns its cleaned markdown body and metadata.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8100
// @BasePath  /

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description One of the keys configured in API_KEYS.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description HS256 JWT as "Bearer {token}".

func main() {
	logger := initLogger()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Error("failed to load server configuration", slog.Any("error", err))
		os.Exit(1)
	}

	shutdownTracing := tracing.Setup()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("failed to shut down tracer provider", slog.Any("error", err))
		}
	}()

	handler := setupServer(logger, cfg)
	runServer(logger, cfg, handler)
}

// initLogger initializes the process-wide structured logger (LOG_LEVEL aware).
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// setupServer builds the ingestion pipeline and wraps it in the HTTP stack.
func setupServer(logger *slog.Logger, cfg *config.ServerConfig) http.Handler {
	fetchCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Error("failed to load fetcher configuration", slog.Any("error", err))
		os.Exit(1)
	}

	svc := ingest.NewService(
		fetcher.NewSafeFetcher(fetchCfg),
		extractor.NewExtractor(extractor.NewConverter()),
	)

	authenticator := hauth.New(hauth.Config{
		APIKeys:   cfg.Auth.APIKeys,
		JWTSecret: []byte(cfg.JWTSecret()),
	})
	if authenticator.Enabled() {
		logger.Info("authentication enabled",
			slog.Int("api_keys", len(cfg.Auth.APIKeys)),
			slog.Bool("jwt", cfg.JWTSecret() != ""))
	} else {
		logger.Warn("authentication is DISABLED - set API_KEYS or a JWT secret before exposing this service")
	}

	var limiter *hhttp.RateLimiter
	if cfg.RateLimit.PerMinute > 0 {
		// Validate already rejected malformed entries.
		proxies, _ := cfg.TrustedProxyPrefixes()
		limiter = hhttp.NewRateLimiter(cfg.RateLimit.PerMinute, hhttp.NewIPExtractor(proxies))
		logger.Info("rate limiting initialized",
			slog.Int("per_minute", cfg.RateLimit.PerMinute),
			slog.Int("trusted_proxies", len(proxies)))
	} else {
		logger.Warn("rate limiting is DISABLED - not recommended for production")
	}

	if len(cfg.CORSOrigins) > 0 {
		logger.Info("CORS enabled",
			slog.Int("allowed_origins_count", len(cfg.CORSOrigins)),
			slog.Any("allowed_origins", cfg.CORSOrigins))
	} else {
		logger.Info("CORS disabled - browsers on other origins cannot call the API")
	}

	logger.Info("fetcher configured",
		slog.Duration("dns_timeout", fetchCfg.DNSTimeout),
		slog.Duration("connect_timeout", fetchCfg.ConnectTimeout),
		slog.Duration("read_timeout", fetchCfg.ReadTimeout),
		slog.Int("max_redirects", fetchCfg.MaxRedirects),
		slog.Int64("max_body_size", fetchCfg.MaxBodySize))

	return hhttp.NewRouter(hhttp.RouterConfig{
		Logger:          logger,
		Service:         svc,
		Auth:            authenticator,
		Limiter:         limiter,
		Version:         cfg.Version,
		MaxBodyBytes:    cfg.MaxBodyBytes,
		RequestTimeout:  cfg.RequestTimeout,
		MetricsDisabled: !cfg.MetricsEnabled,
		CORSOrigins:     cfg.CORSOrigins,
	})
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, cfg *config.ServerConfig, handler http.Handler) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("environment", cfg.Environment),
			slog.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...",
		slog.Duration("timeout", cfg.ShutdownTimeout))

	// In-flight ingestions get the shutdown window to finish; whatever is
	// still running afterwards is cancelled through the base context.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	cancel()
	logger.Info("server stopped")
}
