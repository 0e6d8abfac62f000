// Package respond writes JSON responses.
// Error bodies use the {"detail": "..."} shape clients of the ingest API expect.
package respond

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"news-ingest/internal/observability/logging"
)

// ErrorBody is the JSON body of every non-2xx response.
type ErrorBody struct {
	Detail any `json:"detail"`
}

// JSON writes v as JSON with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Detail writes {"detail": detail}. detail is usually a string; validation
// errors pass a list of field problems.
func Detail(w http.ResponseWriter, code int, detail any) {
	JSON(w, code, ErrorBody{Detail: detail})
}

// InternalError logs err (sanitized) and writes a generic 500.
// Internal error text never reaches the client.
func InternalError(ctx context.Context, w http.ResponseWriter, err error) {
	logging.FromContext(ctx).Error("internal server error",
		slog.String("error", SanitizeError(err)))
	Detail(w, http.StatusInternalServerError, "Internal server error")
}
