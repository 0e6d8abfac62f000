// Package ingest turns a caller-supplied URL into a cleaned article.
// It owns the error taxonomy shared by the fetcher and extractor adapters and
// the Outcome type returned to the API boundary.
package ingest

import (
	"errors"
	"fmt"
)

// Reason classifies why a URL was rejected by SSRF validation.
type Reason string

// Rejection reasons carried by UnsafeURLError.
const (
	ReasonInvalidURL        Reason = "invalid-url"
	ReasonUnsupportedScheme Reason = "unsupported-scheme"
	ReasonNoHostname        Reason = "no-hostname"
	ReasonUnsafeIP          Reason = "unsafe-ip"
	ReasonDNSTimeout        Reason = "dns-timeout"
	ReasonDNSFailure        Reason = "dns-failure"
	ReasonNoAddresses       Reason = "no-addresses"
)

// UnsafeURLError reports that a URL (or one of its redirect targets) was
// rejected by SSRF validation. It is the only error class that surfaces to the
// API boundary as a distinct outcome.
type UnsafeURLError struct {
	URL    string
	Reason Reason
	Detail string
}

// Error implements error.
func (e *UnsafeURLError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("unsafe URL (%s)", e.Reason)
	}
	return fmt.Sprintf("unsafe URL (%s): %s", e.Reason, e.Detail)
}

// Is lets errors.Is(err, ErrUnsafeURL) match any UnsafeURLError.
func (e *UnsafeURLError) Is(target error) bool {
	return target == ErrUnsafeURL
}

// NewUnsafeURLError builds an UnsafeURLError with a formatted detail message.
func NewUnsafeURLError(rawURL string, reason Reason, format string, args ...any) *UnsafeURLError {
	return &UnsafeURLError{
		URL:    rawURL,
		Reason: reason,
		Detail: fmt.Sprintf(format, args...),
	}
}

// AsUnsafeURLError extracts an UnsafeURLError from err's chain.
func AsUnsafeURLError(err error) (*UnsafeURLError, bool) {
	var unsafeErr *UnsafeURLError
	if errors.As(err, &unsafeErr) {
		return unsafeErr, true
	}
	return nil, false
}

// Sentinel errors for benign ingestion failures.
// All of them map to the same "could not extract" outcome at the boundary.
var (
	// ErrUnsafeURL matches every *UnsafeURLError.
	ErrUnsafeURL = errors.New("unsafe URL")

	// ErrFetchFailed wraps every network or transport failure.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrBadStatus indicates a terminal response other than 200 OK.
	ErrBadStatus = errors.New("unexpected response status")

	// ErrMissingLocation indicates a redirect response without a Location header.
	ErrMissingLocation = errors.New("redirect without Location header")

	// ErrTooManyRedirects indicates the redirect chain exceeded the configured maximum.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates a connect or read timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrNotExtracted indicates readability could not find a main-content region.
	ErrNotExtracted = errors.New("no readable content found")
)
