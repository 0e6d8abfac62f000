package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"news-ingest/internal/domain/entity"
	"news-ingest/internal/observability/logging"
	"news-ingest/internal/usecase/ingest"
)

// SafeFetcher fetches a URL while pinning every connection to an address that
// passed SSRF validation.
//
// Each hop (the initial request and every redirect) is resolved, validated
// and dialed with a fresh transport. There is no connection reuse, no proxy,
// no DNS cache and no retry, so nothing learned by one call influences the
// next.
//
// Thread safety: SafeFetcher is safe for concurrent use.
type SafeFetcher struct {
	config    FetchConfig
	validator *URLValidator
	rootCAs   *x509.CertPool
}

// Option customizes a SafeFetcher.
type Option func(*SafeFetcher)

// WithResolver replaces the system resolver.
func WithResolver(r Resolver) Option {
	return func(f *SafeFetcher) {
		f.validator.resolver = r
	}
}

// WithAddrPolicy replaces IsSafeAddr as the test for dialable addresses.
// Tests use it to admit the loopback address of an httptest server.
func WithAddrPolicy(isSafe func(netip.Addr) bool) Option {
	return func(f *SafeFetcher) {
		f.validator.isSafe = isSafe
	}
}

// WithRootCAs sets the certificate pool used to verify servers.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(f *SafeFetcher) {
		f.rootCAs = pool
	}
}

// NewSafeFetcher creates a fetcher. config is expected to be validated.
func NewSafeFetcher(config FetchConfig, opts ...Option) *SafeFetcher {
	f := &SafeFetcher{
		config:    config,
		validator: NewURLValidator(nil, config.DNSTimeout),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// Fetch retrieves rawURL, following up to MaxRedirects redirects.
//
// SSRF rejections on any hop are returned as *ingest.UnsafeURLError. All other
// failures wrap ingest.ErrFetchFailed together with a more specific sentinel
// where one applies (ErrBadStatus, ErrTooManyRedirects, ErrTimeout, ...).
func (f *SafeFetcher) Fetch(ctx context.Context, rawURL string) (*entity.FetchResult, error) {
	logger := logging.FromContext(ctx)
	current := rawURL

	for hop := 0; ; hop++ {
		target, err := f.validator.Validate(ctx, current)
		if err != nil {
			return nil, err
		}

		resp, err := f.roundTrip(ctx, target)
		if err != nil {
			return nil, classifyTransportError(ctx, current, err)
		}

		if isRedirect(resp.StatusCode) {
			location := resp.Header.Get("Location")
			drain(resp)

			if location == "" {
				return nil, fmt.Errorf("%w: %w: HTTP %d from %s", ingest.ErrFetchFailed, ingest.ErrMissingLocation, resp.StatusCode, current)
			}
			if hop >= f.config.MaxRedirects {
				return nil, fmt.Errorf("%w: %w: more than %d", ingest.ErrFetchFailed, ingest.ErrTooManyRedirects, f.config.MaxRedirects)
			}

			next, err := target.URL.Parse(location)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid Location %q: %v", ingest.ErrFetchFailed, location, err)
			}

			logger.Debug("following redirect",
				slog.Int("status", resp.StatusCode),
				slog.String("from", current),
				slog.String("to", next.String()),
				slog.Int("hop", hop+1))
			current = next.String()
			continue
		}

		return f.readResult(ctx, current, hop, resp)
	}
}

func (f *SafeFetcher) readResult(ctx context.Context, finalURL string, redirects int, resp *http.Response) (*entity.FetchResult, error) {
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %w: HTTP %d from %s", ingest.ErrFetchFailed, ingest.ErrBadStatus, resp.StatusCode, finalURL)
	}

	// Read one byte past the limit so an oversized body is detected without
	// trusting Content-Length.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return nil, classifyTransportError(ctx, finalURL, err)
	}
	if int64(len(raw)) > f.config.MaxBodySize {
		return nil, fmt.Errorf("%w: %w: exceeds %d bytes", ingest.ErrFetchFailed, ingest.ErrBodyTooLarge, f.config.MaxBodySize)
	}

	return &entity.FetchResult{
		FinalURL:   finalURL,
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       decodeBody(raw, resp.Header.Get("Content-Type")),
		Redirects:  redirects,
	}, nil
}

// roundTrip performs one request against the validated address.
func (f *SafeFetcher) roundTrip(ctx context.Context, target Target) (*http.Response, error) {
	dialAddr := target.DialAddress()
	dialer := &net.Dialer{Timeout: f.config.ConnectTimeout}
	readTimeout := f.config.ReadTimeout

	transport := &http.Transport{
		Proxy: nil,
		DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, dialAddr)
			if err != nil {
				return nil, err
			}
			if err := conn.SetDeadline(time.Now().Add(readTimeout)); err != nil {
				_ = conn.Close()
				return nil, err
			}
			return conn, nil
		},
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: target.URL.Hostname(),
			RootCAs:    f.rootCAs,
		},
		DisableKeepAlives: true,
	}

	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Host = hostHeader(target.URL)
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	return client.Do(req)
}

// hostHeader is the original hostname, with the port only when it is not the
// scheme default.
func hostHeader(u *url.URL) string {
	host := u.Hostname()
	port := u.Port()
	if port == "" || (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		if strings.Contains(host, ":") {
			return "[" + host + "]"
		}
		return host
	}
	return net.JoinHostPort(host, port)
}

func classifyTransportError(ctx context.Context, rawURL string, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %w: %s: %v", ingest.ErrFetchFailed, ingest.ErrTimeout, rawURL, err)
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %s: %w", ingest.ErrFetchFailed, rawURL, ctx.Err())
	default:
		return fmt.Errorf("%w: %s: %v", ingest.ErrFetchFailed, rawURL, err)
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for key, values := range h {
		out[strings.ToLower(key)] = strings.Join(values, ", ")
	}
	return out
}

// decodeBody converts the body to UTF-8 using the Content-Type charset, a
// <meta charset> declaration, or content sniffing, in that order.
func decodeBody(raw []byte, contentType string) string {
	reader, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err == nil {
		if decoded, err := io.ReadAll(reader); err == nil {
			return string(decoded)
		}
	}
	return strings.ToValidUTF8(string(raw), "�")
}
