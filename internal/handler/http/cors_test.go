package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corsHandler(t *testing.T, logs *bytes.Buffer) (http.Handler, *bool) {
	t.Helper()
	called := false
	h := CORS(DefaultCORSConfig([]string{"https://news.example.com/", "HTTP://LOCALHOST:3000"}, jsonLogger(logs)))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		}))
	return h, &called
}

func TestCORS_Preflight(t *testing.T) {
	var logs bytes.Buffer
	h, called := corsHandler(t, &logs)

	req := httptest.NewRequest(http.MethodOptions, "/ingest", nil)
	req.Header.Set("Origin", "https://news.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type, x-api-key")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, *called, "preflight must not reach the route")
	assert.Equal(t, "https://news.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-API-Key")
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_ActualRequest(t *testing.T) {
	tests := []struct {
		name       string
		origin     string
		wantOrigin string
	}{
		{name: "allowed", origin: "https://news.example.com", wantOrigin: "https://news.example.com"},
		{name: "case and trailing slash ignored", origin: "http://localhost:3000/", wantOrigin: "http://localhost:3000/"},
		{name: "not allowed", origin: "https://evil.example", wantOrigin: ""},
		{name: "same origin", origin: "", wantOrigin: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			h, called := corsHandler(t, &logs)

			req := httptest.NewRequest(http.MethodPost, "/ingest", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.True(t, *called)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
		})
	}
}

func TestCORS_DisallowedOriginIsLogged(t *testing.T) {
	var logs bytes.Buffer
	h, _ := corsHandler(t, &logs)

	req := httptest.NewRequest(http.MethodOptions, "/ingest", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, logs.String(), "CORS: origin not allowed")
	assert.Contains(t, logs.String(), "https://evil.example")
}

func TestCORS_PlainOptionsIsNotPreflight(t *testing.T) {
	var logs bytes.Buffer
	h, called := corsHandler(t, &logs)

	req := httptest.NewRequest(http.MethodOptions, "/ingest", nil)
	req.Header.Set("Origin", "https://news.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, *called)
	assert.Equal(t, "https://news.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
