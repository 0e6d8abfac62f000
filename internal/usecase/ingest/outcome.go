package ingest

import (
	"errors"

	"news-ingest/internal/domain/entity"
)

// Status is the kind of an ingestion Outcome.
type Status int

const (
	// StatusExtracted means Article is set.
	StatusExtracted Status = iota
	// StatusEmpty is the benign failure: network, status, size or extraction.
	StatusEmpty
	// StatusBlocked means SSRF validation rejected the URL; Blocked is set.
	StatusBlocked
)

// String returns the label used in logs and metrics.
func (s Status) String() string {
	switch s {
	case StatusExtracted:
		return "extracted"
	case StatusEmpty:
		return "empty"
	case StatusBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Outcome is the result of one ingestion.
//
// Callers switch on Status; Cause is for logs only and must not be shown to
// API clients.
type Outcome struct {
	Status  Status
	Article *entity.IngestResult
	Blocked *UnsafeURLError
	Cause   error
}

// Extracted builds a successful Outcome.
func Extracted(article *entity.IngestResult) Outcome {
	return Outcome{Status: StatusExtracted, Article: article}
}

// Empty builds a benign-failure Outcome.
func Empty(cause error) Outcome {
	return Outcome{Status: StatusEmpty, Cause: cause}
}

// Blocked builds an SSRF-rejection Outcome.
func Blocked(err *UnsafeURLError) Outcome {
	return Outcome{Status: StatusBlocked, Blocked: err, Cause: err}
}

// FromError classifies err into a Blocked or Empty outcome.
func FromError(err error) Outcome {
	if unsafeErr, ok := AsUnsafeURLError(err); ok {
		return Blocked(unsafeErr)
	}
	return Empty(err)
}

// CauseLabel reduces Cause to a short metric label.
func (o Outcome) CauseLabel() string {
	switch {
	case o.Cause == nil:
		return "none"
	case errors.Is(o.Cause, ErrUnsafeURL):
		return "unsafe_url"
	case errors.Is(o.Cause, ErrNotExtracted):
		return "not_extracted"
	case errors.Is(o.Cause, ErrTooManyRedirects):
		return "too_many_redirects"
	case errors.Is(o.Cause, ErrMissingLocation):
		return "missing_location"
	case errors.Is(o.Cause, ErrBadStatus):
		return "bad_status"
	case errors.Is(o.Cause, ErrBodyTooLarge):
		return "body_too_large"
	case errors.Is(o.Cause, ErrTimeout):
		return "timeout"
	case errors.Is(o.Cause, ErrFetchFailed):
		return "fetch_failed"
	default:
		return "other"
	}
}
