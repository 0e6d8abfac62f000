// Package http wires the ingest API: routing, middleware, health and metrics
// endpoints. Endpoint handlers live in subpackages.
package http

import (
	"net/http"
	"time"

	"news-ingest/internal/handler/http/respond"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                 `json:"status"`    // always "healthy" when the process can answer
	Timestamp string                 `json:"timestamp"` // RFC 3339, UTC
	Version   string                 `json:"version"`
	Checks    map[string]CheckStatus `json:"checks"`
}

// CheckStatus describes one component.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthHandler serves the liveness endpoint. The service has no backing
// store, so liveness is the only signal; the checks report configuration that
// operators otherwise have to dig out of logs.
type HealthHandler struct {
	Version     string
	AuthEnabled bool
	Limiter     *RateLimiter // nil when rate limiting is disabled

	now func() time.Time
}

// ServeHTTP implements http.Handler.
//
// @Summary      Liveness check
// @Description  Reports the build version and whether auth and rate limiting are enabled.
// @Tags         health
// @Produce      json
// @Success      200 {object} HealthResponse
// @Router       /health [get]
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	now := time.Now
	if h.now != nil {
		now = h.now
	}

	checks := map[string]CheckStatus{
		"auth": {Status: "healthy", Message: enabledText(h.AuthEnabled)},
	}

	limiter := CheckStatus{Status: "healthy", Message: enabledText(h.Limiter != nil)}
	if h.Limiter != nil {
		limiter.Details = map[string]any{"active_clients": h.Limiter.ActiveClients()}
	}
	checks["rate_limiter"] = limiter

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: now().UTC().Format(time.RFC3339),
		Version:   h.Version,
		Checks:    checks,
	})
}

func enabledText(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
