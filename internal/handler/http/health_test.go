package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("JST", 9*3600))

	t.Run("all features enabled", func(t *testing.T) {
		limiter := NewRateLimiter(10, nil)
		limiter.allow("203.0.113.1")
		limiter.allow("203.0.113.2")

		h := &HealthHandler{Version: "1.4.2", AuthEnabled: true, Limiter: limiter, now: func() time.Time { return fixed }}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "2026-03-01T00:30:00Z", resp.Timestamp)
		assert.Equal(t, "1.4.2", resp.Version)
		assert.Equal(t, "enabled", resp.Checks["auth"].Message)
		assert.Equal(t, "enabled", resp.Checks["rate_limiter"].Message)
		assert.EqualValues(t, 2, resp.Checks["rate_limiter"].Details["active_clients"])
	})

	t.Run("features disabled", func(t *testing.T) {
		h := &HealthHandler{Version: "dev"}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "disabled", resp.Checks["auth"].Message)
		assert.Equal(t, "disabled", resp.Checks["rate_limiter"].Message)
		assert.Nil(t, resp.Checks["rate_limiter"].Details)
		_, err := time.Parse(time.RFC3339, resp.Timestamp)
		assert.NoError(t, err)
	})
}
