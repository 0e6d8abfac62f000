package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"news-ingest/internal/handler/http/responsewriter"
	"news-ingest/internal/observability/metrics"
)

// knownRoutes are the only path labels recorded; everything else is "other"
// so scanners probing random paths cannot explode label cardinality.
var knownRoutes = map[string]bool{
	"/ingest":  true,
	"/health":  true,
	"/metrics": true,
}

func routeLabel(path string) string {
	if knownRoutes[path] {
		return path
	}
	if strings.HasPrefix(path, "/swagger/") {
		return "/swagger/"
	}
	return "other"
}

// MetricsMiddleware records request count, duration and response size.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := responsewriter.Wrap(w)

		start := time.Now()
		next.ServeHTTP(rw, r)

		metrics.RecordHTTPRequest(
			r.Method,
			routeLabel(r.URL.Path),
			strconv.Itoa(rw.StatusCode()),
			time.Since(start),
			rw.BytesWritten(),
		)
	})
}

// MetricsHandler returns an HTTP handler for the Prometheus metrics endpoint.
//
// @Summary      Prometheus metrics
// @Tags         health
// @Produce      plain
// @Success      200 {string} string "Prometheus text exposition format"
// @Router       /metrics [get]
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
