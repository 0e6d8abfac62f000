package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-ingest/internal/observability/metrics"
)

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/ingest", routeLabel("/ingest"))
	assert.Equal(t, "/health", routeLabel("/health"))
	assert.Equal(t, "/metrics", routeLabel("/metrics"))
	assert.Equal(t, "other", routeLabel("/wp-admin/setup.php"))
	assert.Equal(t, "other", routeLabel("/ingest/extra"))
	assert.Equal(t, "/swagger/", routeLabel("/swagger/index.html"))
}

func TestMetricsMiddleware(t *testing.T) {
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ingest" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"x"}`))
	}))

	ingestBefore := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("POST", "/ingest", "422"))
	otherBefore := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "other", "404"))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/ingest", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/.env", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/.git/config", nil))

	assert.Equal(t, ingestBefore+1, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("POST", "/ingest", "422")))
	assert.Equal(t, otherBefore+2, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "other", "404")))
}

func TestMetricsHandler(t *testing.T) {
	metrics.RecordBlocked("no-hostname")

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `ingest_blocked_total{reason="no-hostname"}`)
}
