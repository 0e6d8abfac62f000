package http

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// IPExtractor identifies the client a request is rate limited under.
type IPExtractor interface {
	ExtractIP(r *http.Request) string
}

// RemoteAddrExtractor uses the TCP peer address. Proxy headers are ignored,
// so clients cannot choose their own rate-limit bucket.
type RemoteAddrExtractor struct{}

// ExtractIP strips the port from r.RemoteAddr.
//
// Examples:
//   - "192.168.1.1:54321" → "192.168.1.1"
//   - "[2001:db8::1]:8080" → "2001:db8::1"
func (RemoteAddrExtractor) ExtractIP(r *http.Request) string {
	return hostOnly(r.RemoteAddr)
}

// TrustedProxyExtractor honors X-Forwarded-For and X-Real-IP, but only when
// the TCP peer is one of the configured proxies.
type TrustedProxyExtractor struct {
	proxies []netip.Prefix
}

// NewTrustedProxyExtractor creates an extractor trusting the given ranges.
func NewTrustedProxyExtractor(proxies []netip.Prefix) *TrustedProxyExtractor {
	return &TrustedProxyExtractor{proxies: proxies}
}

// ExtractIP returns the first X-Forwarded-For address, then X-Real-IP, then
// the peer address. Headers from untrusted peers are logged and ignored.
func (e *TrustedProxyExtractor) ExtractIP(r *http.Request) string {
	peer := hostOnly(r.RemoteAddr)

	if !e.trusted(peer) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			slog.Warn("untrusted peer attempting to set X-Forwarded-For",
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("x_forwarded_for", xff))
		}
		return peer
	}

	if ip := parseFirstIP(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip
	}
	if ip := parseFirstIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return peer
}

func (e *TrustedProxyExtractor) trusted(peer string) bool {
	addr, err := netip.ParseAddr(peer)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range e.proxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// NewIPExtractor returns a TrustedProxyExtractor when proxies are configured
// and a RemoteAddrExtractor otherwise.
func NewIPExtractor(proxies []netip.Prefix) IPExtractor {
	if len(proxies) == 0 {
		return RemoteAddrExtractor{}
	}
	return NewTrustedProxyExtractor(proxies)
}

// parseFirstIP returns the first entry of a comma-separated address list if
// it is a valid IP, and "" otherwise.
func parseFirstIP(s string) string {
	first, _, _ := strings.Cut(s, ",")
	addr, err := netip.ParseAddr(strings.TrimSpace(first))
	if err != nil {
		return ""
	}
	return addr.Unmap().String()
}

func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return strings.Trim(addr, "[]")
	}
	return host
}
