// Package fetcher retrieves untrusted web pages without letting a caller reach
// private infrastructure. Every hostname is resolved up front, every resolved
// address is checked against the unsafe ranges in ip_range.go, and the
// connection is made to the checked address rather than re-resolving.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strconv"
	"time"

	"news-ingest/internal/usecase/ingest"
)

// DefaultDNSTimeout bounds a single hostname resolution.
const DefaultDNSTimeout = 5 * time.Second

// Resolution errors. Callers map them to ingest.UnsafeURLError reasons.
var (
	ErrResolution        = errors.New("dns resolution failed")
	ErrResolutionTimeout = errors.New("dns resolution timed out")
	ErrNoRecords         = errors.New("no A or AAAA records")
)

// Resolver looks up the addresses of a host. *net.Resolver satisfies it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

type lookupResult struct {
	addrs []netip.Addr
	err   error
}

// lookup abandons the resolver once ctx is done, so a resolver that ignores
// its context still cannot delay the caller past the deadline.
func lookup(ctx context.Context, resolver Resolver, network, host string) ([]netip.Addr, error) {
	ch := make(chan lookupResult, 1)
	go func() {
		addrs, err := resolver.LookupNetIP(ctx, network, host)
		ch <- lookupResult{addrs: addrs, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.addrs, r.err
	}
}

// ResolveHostname returns the addresses of hostname.
//
// IPv4 is queried first; IPv6 only when the IPv4 query fails or comes back
// empty. Results are de-duplicated in resolver order and IPv4-mapped IPv6
// addresses are unmapped. Answers arriving after the timeout are discarded.
func ResolveHostname(ctx context.Context, resolver Resolver, hostname string, timeout time.Duration) ([]netip.Addr, error) {
	if timeout <= 0 {
		timeout = DefaultDNSTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addrs, err := lookup(ctx, resolver, "ip4", hostname)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, resolutionContextError(hostname, ctxErr)
	}
	if err != nil || len(addrs) == 0 {
		addrs, err = lookup(ctx, resolver, "ip6", hostname)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, resolutionContextError(hostname, ctxErr)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrResolution, hostname, err)
	}

	seen := make(map[netip.Addr]bool, len(addrs))
	unique := make([]netip.Addr, 0, len(addrs))
	for _, addr := range addrs {
		addr = addr.Unmap()
		if !addr.IsValid() || seen[addr] {
			continue
		}
		seen[addr] = true
		unique = append(unique, addr)
	}
	if len(unique) == 0 {
		return nil, fmt.Errorf("%w: %s: %w", ErrResolution, hostname, ErrNoRecords)
	}
	return unique, nil
}

func resolutionContextError(hostname string, ctxErr error) error {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrResolutionTimeout, hostname)
	}
	return fmt.Errorf("%w: %s: %w", ErrResolution, hostname, ctxErr)
}

// URLValidator decides whether a URL may be fetched and which address to dial.
type URLValidator struct {
	resolver   Resolver
	dnsTimeout time.Duration
	isSafe     func(netip.Addr) bool
}

// NewURLValidator creates a validator. A nil resolver means net.DefaultResolver.
func NewURLValidator(resolver Resolver, dnsTimeout time.Duration) *URLValidator {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	if dnsTimeout <= 0 {
		dnsTimeout = DefaultDNSTimeout
	}
	return &URLValidator{
		resolver:   resolver,
		dnsTimeout: dnsTimeout,
		isSafe:     IsSafeAddr,
	}
}

// Target is a validated request destination.
type Target struct {
	URL  *url.URL
	Addr netip.Addr
}

// DialAddress is the ip:port the fetcher connects to.
func (t Target) DialAddress() string {
	return netip.AddrPortFrom(t.Addr, defaultPort(t.URL)).String()
}

func defaultPort(u *url.URL) uint16 {
	if p := u.Port(); p != "" {
		if port, err := strconv.ParseUint(p, 10, 16); err == nil {
			return uint16(port)
		}
	}
	if u.Scheme == "https" {
		return 443
	}
	return 80
}

// Validate checks rawURL and returns the first safe address of its host.
//
// The host is rejected when any of its addresses is unsafe, not only the one
// that would be dialed. Every rejection is an *ingest.UnsafeURLError.
func (v *URLValidator) Validate(ctx context.Context, rawURL string) (Target, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Target{}, ingest.NewUnsafeURLError(rawURL, ingest.ReasonInvalidURL, "parse error: %v", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return Target{}, ingest.NewUnsafeURLError(rawURL, ingest.ReasonUnsupportedScheme, "scheme %q not allowed (only http/https)", u.Scheme)
	}

	hostname := u.Hostname()
	if hostname == "" {
		return Target{}, ingest.NewUnsafeURLError(rawURL, ingest.ReasonNoHostname, "empty hostname")
	}

	if addr, err := netip.ParseAddr(hostname); err == nil {
		addr = addr.Unmap().WithZone("")
		if !v.isSafe(addr) {
			return Target{}, ingest.NewUnsafeURLError(rawURL, ingest.ReasonUnsafeIP, "address %s is %s", addr, ClassifyIP(addr))
		}
		return Target{URL: u, Addr: addr}, nil
	}

	addrs, err := ResolveHostname(ctx, v.resolver, hostname, v.dnsTimeout)
	switch {
	case errors.Is(err, ErrResolutionTimeout):
		return Target{}, ingest.NewUnsafeURLError(rawURL, ingest.ReasonDNSTimeout, "%v", err)
	case errors.Is(err, ErrNoRecords):
		return Target{}, ingest.NewUnsafeURLError(rawURL, ingest.ReasonNoAddresses, "%v", err)
	case err != nil:
		return Target{}, ingest.NewUnsafeURLError(rawURL, ingest.ReasonDNSFailure, "%v", err)
	}

	for _, addr := range addrs {
		if !v.isSafe(addr) {
			return Target{}, ingest.NewUnsafeURLError(rawURL, ingest.ReasonUnsafeIP,
				"hostname %q resolves to %s (%s)", hostname, addr, ClassifyIP(addr))
		}
	}

	return Target{URL: u, Addr: addrs[0]}, nil
}

// ValidateURL validates rawURL with the system resolver and returns the
// address the fetcher would connect to.
func ValidateURL(ctx context.Context, rawURL string) (string, error) {
	target, err := NewURLValidator(nil, DefaultDNSTimeout).Validate(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return target.Addr.String(), nil
}
