// Package config loads the API server configuration.
//
// Values come from an optional YAML file (path in INGEST_CONFIG) and are then
// overridden by environment variables, so a container can ship a file with
// defaults and still be tuned per deployment.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	envconfig "news-ingest/pkg/config"
)

// Defaults for ServerConfig.
const (
	DefaultPort            = 8100
	DefaultRatePerMinute   = 10
	DefaultMaxBodyBytes    = 1 << 20
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRequestTimeout  = 90 * time.Second
	DefaultJWTSecretEnv    = "JWT_SECRET"

	minJWTSecretLength = 32
)

// DefaultCORSOrigins are the local frontends allowed when nothing is configured.
var DefaultCORSOrigins = []string{"http://localhost:3100", "http://localhost:3000"}

// ServerConfig configures cmd/api.
type ServerConfig struct {
	Environment     string        `yaml:"environment"`
	Port            int           `yaml:"port"`
	Version         string        `yaml:"version"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// RequestTimeout bounds one POST /ingest including every redirect hop.
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	// MetricsEnabled serves GET /metrics; collection itself always runs.
	MetricsEnabled  bool          `yaml:"metrics_enabled"`
	// CORSOrigins are the browser origins allowed to call the API; empty disables CORS.
	CORSOrigins     []string      `yaml:"cors_origins"`

	Auth struct {
		APIKeys   []string `yaml:"api_keys"`
		// SecretEnv names the environment variable holding the HS256 secret.
		// The secret itself never lives in the file.
		SecretEnv string   `yaml:"jwt_secret_env"`
	} `yaml:"auth"`

	RateLimit struct {
		// PerMinute is the per-client budget for POST /ingest; 0 disables the limiter.
		PerMinute      int      `yaml:"per_minute"`
		TrustedProxies []string `yaml:"trusted_proxies"`
	} `yaml:"rate_limit"`
}

// Default returns the configuration used when neither file nor environment set anything.
func Default() *ServerConfig {
	cfg := &ServerConfig{
		Environment:     "development",
		Port:            DefaultPort,
		Version:         "dev",
		MaxBodyBytes:    DefaultMaxBodyBytes,
		ShutdownTimeout: DefaultShutdownTimeout,
		RequestTimeout:  DefaultRequestTimeout,
		MetricsEnabled:  true,
		CORSOrigins:     append([]string(nil), DefaultCORSOrigins...),
	}
	cfg.Auth.SecretEnv = DefaultJWTSecretEnv
	cfg.RateLimit.PerMinute = DefaultRatePerMinute
	return cfg
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and validates the result.
// The path parameter comes from INGEST_CONFIG or a CLI flag, never from a request.
func Load(path string) (*ServerConfig, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 -- operator-supplied path
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFromEnv is Load with the path taken from INGEST_CONFIG.
func LoadFromEnv() (*ServerConfig, error) {
	return Load(os.Getenv("INGEST_CONFIG"))
}

// applyEnv overrides file values with any environment variables that are set.
//
// Environment variables:
//   - ENVIRONMENT, PORT, VERSION
//   - API_KEYS: comma-separated list
//   - JWT_SECRET_ENV: name of the variable holding the JWT secret (default JWT_SECRET)
//   - RATE_LIMIT_PER_MINUTE, TRUSTED_PROXIES
//   - MAX_BODY_BYTES, SHUTDOWN_TIMEOUT, REQUEST_TIMEOUT
//   - METRICS_ENABLED
//   - CORS_ORIGINS: comma-separated list
func (c *ServerConfig) applyEnv() {
	c.Environment = envconfig.GetEnvString("ENVIRONMENT", c.Environment)
	c.Port = envconfig.GetEnvInt("PORT", c.Port)
	c.Version = envconfig.GetEnvString("VERSION", c.Version)
	c.MaxBodyBytes = envconfig.GetEnvInt64("MAX_BODY_BYTES", c.MaxBodyBytes)
	c.ShutdownTimeout = envconfig.GetEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.RequestTimeout = envconfig.GetEnvDuration("REQUEST_TIMEOUT", c.RequestTimeout)
	c.MetricsEnabled = envconfig.GetEnvBool("METRICS_ENABLED", c.MetricsEnabled)
	c.CORSOrigins = envconfig.GetEnvStringList("CORS_ORIGINS", c.CORSOrigins)

	c.Auth.APIKeys = envconfig.GetEnvStringList("API_KEYS", c.Auth.APIKeys)
	c.Auth.SecretEnv = envconfig.GetEnvString("JWT_SECRET_ENV", c.Auth.SecretEnv)

	c.RateLimit.PerMinute = envconfig.GetEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimit.PerMinute)
	c.RateLimit.TrustedProxies = envconfig.GetEnvStringList("TRUSTED_PROXIES", c.RateLimit.TrustedProxies)
}

// Validate checks ranges and the production requirements.
func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if err := envconfig.ValidateDurationRange(c.ShutdownTimeout, time.Second, 5*time.Minute); err != nil {
		return fmt.Errorf("shutdown_timeout: %w", err)
	}
	if err := envconfig.ValidatePositiveDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("request_timeout: %w", err)
	}
	if c.RateLimit.PerMinute < 0 {
		return fmt.Errorf("rate_limit.per_minute cannot be negative, got %d", c.RateLimit.PerMinute)
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return err
	}
	if err := c.validateCORSOrigins(); err != nil {
		return err
	}

	secret := c.JWTSecret()
	if secret != "" && len(secret) < minJWTSecretLength {
		return fmt.Errorf("%s must be at least %d characters", c.Auth.SecretEnv, minJWTSecretLength)
	}

	if c.IsProduction() && !c.AuthEnabled() {
		return errors.New("API_KEYS or a JWT secret must be set in production")
	}
	return nil
}

// validateCORSOrigins requires each origin to be a bare http(s) scheme and
// host. Production additionally refuses loopback origins.
func (c *ServerConfig) validateCORSOrigins() error {
	for _, origin := range c.CORSOrigins {
		u, err := url.Parse(origin)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" ||
			strings.TrimSuffix(u.Path, "/") != "" || u.RawQuery != "" || u.Fragment != "" {
			return fmt.Errorf("invalid cors origin %q: must be scheme://host[:port]", origin)
		}
		if c.IsProduction() && (strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1")) {
			return fmt.Errorf("cors origin %q contains localhost; remove localhost origins in production", origin)
		}
	}
	return nil
}

// IsProduction reports whether Environment is "production".
func (c *ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// JWTSecret returns the secret read from the variable named by Auth.SecretEnv.
func (c *ServerConfig) JWTSecret() string {
	if c.Auth.SecretEnv == "" {
		return ""
	}
	return os.Getenv(c.Auth.SecretEnv)
}

// AuthEnabled reports whether any credential is configured.
// With none, the API runs open (development mode).
func (c *ServerConfig) AuthEnabled() bool {
	return len(c.Auth.APIKeys) > 0 || c.JWTSecret() != ""
}

// Addr returns the listen address for http.Server.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// TrustedProxyPrefixes parses RateLimit.TrustedProxies.
// Bare addresses become single-host prefixes.
func (c *ServerConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.RateLimit.TrustedProxies))
	for _, raw := range c.RateLimit.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			addr, addrErr := netip.ParseAddr(raw)
			if addrErr != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: must be an IP address or CIDR", raw)
			}
			prefix = netip.PrefixFrom(addr, addr.BitLen())
		}
		prefixes = append(prefixes, prefix.Masked())
	}
	return prefixes, nil
}
