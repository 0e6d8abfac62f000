package fetcher

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultUserAgent identifies the fetcher to publishers.
const DefaultUserAgent = "Mozilla/5.0 (compatible; NewsIngest/1.0)"

// FetchConfig holds the limits applied to every fetch.
//
// Security settings:
//   - MaxBodySize: Prevents memory exhaustion from oversized responses
//   - MaxRedirects: Bounds redirect chains; every hop is re-validated
//   - DNSTimeout, ConnectTimeout, ReadTimeout: Bound each I/O phase
type FetchConfig struct {
	// DNSTimeout bounds hostname resolution for one hop.
	// Default: 5s
	DNSTimeout time.Duration

	// ConnectTimeout bounds the TCP connect to the validated address.
	// Default: 5s
	ConnectTimeout time.Duration

	// ReadTimeout is a deadline on the connection, set right after dialing.
	// It covers the TLS handshake, request write and the whole response read.
	// Default: 30s
	ReadTimeout time.Duration

	// MaxRedirects is the maximum number of redirects followed.
	// Default: 5
	MaxRedirects int

	// MaxBodySize is the maximum response body size in bytes, enforced while
	// reading rather than trusted from Content-Length.
	// Default: 10485760 (10MB)
	MaxBodySize int64

	// UserAgent is sent on every request.
	UserAgent string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() FetchConfig {
	return FetchConfig{
		DNSTimeout:     DefaultDNSTimeout,
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    30 * time.Second,
		MaxRedirects:   5,
		MaxBodySize:    10 * 1024 * 1024, // 10MB
		UserAgent:      DefaultUserAgent,
	}
}

// Validate checks that the configuration values are within safe bounds.
//
// Validation rules:
//   - DNSTimeout, ConnectTimeout, ReadTimeout: > 0
//   - MaxRedirects: 0-10
//   - MaxBodySize: 1KB-100MB
//   - UserAgent: non-empty
func (c *FetchConfig) Validate() error {
	if c.DNSTimeout <= 0 {
		return fmt.Errorf("dns timeout must be positive, got %v", c.DNSTimeout)
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive, got %v", c.ConnectTimeout)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %v", c.ReadTimeout)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	minBodySize := int64(1024)              // 1KB
	maxBodySize := int64(100 * 1024 * 1024) // 100MB
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user agent must not be empty")
	}

	return nil
}

// LoadConfigFromEnv loads configuration from environment variables, starting
// from DefaultConfig. Unlike pkg/config, a malformed value is an error rather
// than a silent fallback.
//
// Environment variables:
//   - FETCH_DNS_TIMEOUT: duration string (default: 5s)
//   - FETCH_CONNECT_TIMEOUT: duration string (default: 5s)
//   - FETCH_READ_TIMEOUT: duration string (default: 30s)
//   - FETCH_MAX_REDIRECTS: integer (default: 5)
//   - FETCH_MAX_BODY_SIZE: integer in bytes (default: 10485760)
//   - FETCH_USER_AGENT: string
func LoadConfigFromEnv() (FetchConfig, error) {
	cfg := DefaultConfig()

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"FETCH_DNS_TIMEOUT", &cfg.DNSTimeout},
		{"FETCH_CONNECT_TIMEOUT", &cfg.ConnectTimeout},
		{"FETCH_READ_TIMEOUT", &cfg.ReadTimeout},
	}
	for _, d := range durations {
		val := os.Getenv(d.key)
		if val == "" {
			continue
		}
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %v (expected format: '5s', '1m')", d.key, err)
		}
		*d.dst = parsed
	}

	if val := os.Getenv("FETCH_MAX_REDIRECTS"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid FETCH_MAX_REDIRECTS: %v", err)
		}
		cfg.MaxRedirects = parsed
	}

	if val := os.Getenv("FETCH_MAX_BODY_SIZE"); val != "" {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid FETCH_MAX_BODY_SIZE: %v", err)
		}
		cfg.MaxBodySize = parsed
	}

	if val := os.Getenv("FETCH_USER_AGENT"); val != "" {
		cfg.UserAgent = val
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
