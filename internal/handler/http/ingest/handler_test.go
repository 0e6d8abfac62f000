package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-ingest/internal/domain/entity"
	ingestUC "news-ingest/internal/usecase/ingest"
)

type stubService struct {
	outcome ingestUC.Outcome
	gotURL  string
	calls   int
}

func (s *stubService) ExtractArticle(_ context.Context, rawURL string) ingestUC.Outcome {
	s.calls++
	s.gotURL = rawURL
	return s.outcome
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func str(s string) *string { return &s }

func TestHandler_Extracted(t *testing.T) {
	svc := &stubService{outcome: ingestUC.Extracted(&entity.IngestResult{
		Title: str("Netflix drops out"),
		Body:  str("Paragraph one.\n\nParagraph two."),
	})}

	rec := post(Handler{Svc: svc}, `{"url":"https://example.com/news/1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com/news/1", svc.gotURL)
	assert.JSONEq(t, `{
		"title": "Netflix drops out",
		"body": "Paragraph one.\n\nParagraph two.",
		"author": null,
		"published_at": null,
		"og_image_url": null
	}`, rec.Body.String())
}

func TestHandler_Blocked(t *testing.T) {
	svc := &stubService{outcome: ingestUC.Blocked(
		ingestUC.NewUnsafeURLError("http://10.0.0.1/", ingestUC.ReasonUnsafeIP, "private address 10.0.0.1"),
	)}

	rec := post(Handler{Svc: svc}, `{"url":"http://10.0.0.1/"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"URL points to a private or reserved address"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "10.0.0.1", "rejection detail must not leak to the client")
}

func TestHandler_Empty(t *testing.T) {
	svc := &stubService{outcome: ingestUC.Empty(ingestUC.ErrNotExtracted)}

	rec := post(Handler{Svc: svc}, `{"url":"https://example.com/empty"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"detail":"Failed to extract content from URL"}`, rec.Body.String())
}

func TestHandler_InvalidRequests(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantLoc  []string
		wantType string
	}{
		{"empty body", ``, []string{"body"}, "missing"},
		{"malformed json", `{"url":`, []string{"body"}, "json_invalid"},
		{"not an object", `"https://example.com"`, []string{"body", ""}, "type_error"},
		{"missing url", `{}`, []string{"body", "url"}, "missing"},
		{"blank url", `{"url":"   "}`, []string{"body", "url"}, "missing"},
		{"wrong type", `{"url":42}`, []string{"body", "url"}, "type_error"},
		{"unknown field", `{"url":"https://example.com","force":true}`, []string{"body", "force"}, "unrecognized_keys"},
		{"relative url", `{"url":"/just/a/path"}`, []string{"body", "url"}, "invalid_string"},
		{"bare hostname", `{"url":"example.com"}`, []string{"body", "url"}, "invalid_string"},
		{"url too long", `{"url":"https://example.com/` + strings.Repeat("a", 2100) + `"}`, []string{"body", "url"}, "invalid_string"},
		{"trailing data", `{"url":"https://example.com"} {"url":"https://other.example"}`, []string{"body"}, "json_invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			rec := post(Handler{Svc: svc}, tt.body)

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Zero(t, svc.calls, "pipeline must not run for invalid requests")

			var body struct {
				Detail []FieldError `json:"detail"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Len(t, body.Detail, 1)
			assert.Equal(t, tt.wantLoc, body.Detail[0].Loc)
			assert.Equal(t, tt.wantType, body.Detail[0].Type)
		})
	}
}

func TestHandler_NonHTTPSchemeReachesPipeline(t *testing.T) {
	// Scheme policy belongs to URL validation, which reports it as Blocked.
	svc := &stubService{outcome: ingestUC.Blocked(
		ingestUC.NewUnsafeURLError("ftp://example.com/file", ingestUC.ReasonUnsupportedScheme, "scheme ftp"),
	)}

	rec := post(Handler{Svc: svc}, `{"url":"ftp://example.com/file"}`)

	assert.Equal(t, 1, svc.calls)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_BodyTooLarge(t *testing.T) {
	svc := &stubService{}
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 32)
		Handler{Svc: svc}.ServeHTTP(w, r)
	})

	rec := post(h, `{"url":"https://example.com/`+strings.Repeat("a", 64)+`"}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"detail":"Request body too large"}`, rec.Body.String())
	assert.Zero(t, svc.calls)
}

func TestHandler_UnknownStatusIsInternalError(t *testing.T) {
	svc := &stubService{outcome: ingestUC.Outcome{Status: ingestUC.Status(42)}}

	rec := post(Handler{Svc: svc}, `{"url":"https://example.com/a"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Internal server error"}`, rec.Body.String())
}
