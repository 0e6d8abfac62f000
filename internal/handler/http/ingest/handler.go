// Package ingest serves POST /ingest.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"news-ingest/internal/domain/entity"
	"news-ingest/internal/handler/http/auth"
	"news-ingest/internal/handler/http/respond"
	"news-ingest/internal/observability/logging"
	ingestUC "news-ingest/internal/usecase/ingest"
)

// Response details. Clients match on them, keep them stable.
const (
	DetailBlocked      = "URL points to a private or reserved address"
	DetailNotExtracted = "Failed to extract content from URL"
	DetailBodyTooLarge = "Request body too large"
)

// ArticleExtractor is satisfied by *ingest.Service.
type ArticleExtractor interface {
	ExtractArticle(ctx context.Context, rawURL string) ingestUC.Outcome
}

// Request is the POST /ingest body. Unknown fields are rejected.
type Request struct {
	URL string `json:"url"`
}

// FieldError is one entry of a 422 validation detail.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// Handler ingests the URL in the request body.
//
// Status codes:
//   - 200: article extracted, body is entity.IngestResult
//   - 400: the URL or a redirect target failed URL safety validation
//   - 413: request body over the configured limit
//   - 422: malformed request, or nothing could be extracted
type Handler struct {
	Svc ArticleExtractor
}

// ServeHTTP implements http.Handler.
//
// @Summary      Ingest an article
// @Description  Fetches the URL, follows redirects with address checks on every hop, and returns the cleaned article.
// @Tags         ingest
// @Security     ApiKeyAuth
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body Request true "URL to ingest"
// @Success      200 {object} entity.IngestResult
// @Failure      400 {object} respond.ErrorBody "URL points to a private or reserved address"
// @Failure      401 {object} respond.ErrorBody "Invalid or missing API key"
// @Failure      413 {object} respond.ErrorBody "Request body too large"
// @Failure      422 {object} respond.ErrorBody "Invalid request, or nothing could be extracted"
// @Failure      429 {object} respond.ErrorBody "Rate limit exceeded"
// @Header       429 {integer} Retry-After "Seconds until the next request is allowed"
// @Router       /ingest [post]
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, problems, err := decodeRequest(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Detail(w, http.StatusRequestEntityTooLarge, DetailBodyTooLarge)
			return
		}
		respond.Detail(w, http.StatusUnprocessableEntity, problems)
		return
	}

	ctx := r.Context()
	logging.FromContext(ctx).Debug("ingest requested",
		slog.String("subject", auth.SubjectFromContext(ctx)))

	outcome := h.Svc.ExtractArticle(ctx, req.URL)

	switch outcome.Status {
	case ingestUC.StatusBlocked:
		respond.Detail(w, http.StatusBadRequest, DetailBlocked)
	case ingestUC.StatusExtracted:
		respond.JSON(w, http.StatusOK, outcome.Article)
	case ingestUC.StatusEmpty:
		respond.Detail(w, http.StatusUnprocessableEntity, DetailNotExtracted)
	default:
		respond.InternalError(ctx, w, fmt.Errorf("unknown ingest status %d", outcome.Status))
	}
}

var errInvalidRequest = errors.New("invalid request")

// decodeRequest parses and validates the body. On failure it returns the
// field problems to report; a body over the size limit returns the
// *http.MaxBytesError instead.
func decodeRequest(body io.Reader) (Request, []FieldError, error) {
	var req Request

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return req, nil, err
		}
		return req, []FieldError{jsonProblem(err)}, errInvalidRequest
	}
	if dec.More() {
		return req, []FieldError{{Loc: []string{"body"}, Msg: "unexpected data after JSON object", Type: "json_invalid"}}, errInvalidRequest
	}

	if problem, ok := validateURL(req.URL); !ok {
		return req, []FieldError{problem}, errInvalidRequest
	}
	return req, nil, nil
}

func jsonProblem(err error) FieldError {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		return FieldError{Loc: []string{"body", typeErr.Field}, Msg: "expected " + typeErr.Type.String(), Type: "type_error"}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return FieldError{Loc: []string{"body", field}, Msg: "unrecognized field", Type: "unrecognized_keys"}
	case errors.Is(err, io.EOF):
		return FieldError{Loc: []string{"body"}, Msg: "request body is empty", Type: "missing"}
	default:
		return FieldError{Loc: []string{"body"}, Msg: "malformed JSON", Type: "json_invalid"}
	}
}

// validateURL accepts any absolute URL. Scheme and destination policy is the
// pipeline's job, so "ftp://host/x" passes here and is blocked later.
func validateURL(raw string) (FieldError, bool) {
	loc := []string{"body", "url"}
	if strings.TrimSpace(raw) == "" {
		return FieldError{Loc: loc, Msg: "field required", Type: "missing"}, false
	}
	if err := entity.ValidateURLSyntax(raw); err != nil {
		msg := "invalid url"
		var valErr *entity.ValidationError
		if errors.As(err, &valErr) {
			msg = valErr.Message
		}
		return FieldError{Loc: loc, Msg: msg, Type: "invalid_string"}, false
	}
	return FieldError{}, true
}
