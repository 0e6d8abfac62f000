// Package auth guards the ingest endpoint.
//
// A request is accepted with either a configured X-API-Key or an
// "Authorization: Bearer <JWT>" signed with HS256. When neither keys nor a
// secret are configured the middleware lets everything through, which is the
// development setup.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"news-ingest/internal/handler/http/respond"
	"news-ingest/internal/observability/logging"
	"news-ingest/internal/observability/metrics"
)

// APIKeyHeader is the header carrying a static API key.
const APIKeyHeader = "X-API-Key"

// unauthorizedDetail is the only message clients ever see on failure.
const unauthorizedDetail = "Invalid or missing API key"

type ctxKey string

const ctxSubject ctxKey = "subject"

// Failure reasons recorded in auth_failures_total.
const (
	reasonMissing      = "missing"
	reasonInvalidKey   = "invalid_key"
	reasonInvalidToken = "invalid_token"
)

var (
	errMissingBearer = errors.New("missing bearer token")
	errNoSubject     = errors.New("token has no sub claim")
)

// Config lists the accepted credentials.
type Config struct {
	APIKeys   []string
	JWTSecret []byte
}

// Authenticator validates credentials on incoming requests.
type Authenticator struct {
	keys   [][]byte
	secret []byte
}

// New creates an Authenticator. Empty keys are ignored.
func New(cfg Config) *Authenticator {
	a := &Authenticator{secret: cfg.JWTSecret}
	for _, k := range cfg.APIKeys {
		if k != "" {
			a.keys = append(a.keys, []byte(k))
		}
	}
	return a
}

// Enabled reports whether any credential is configured.
func (a *Authenticator) Enabled() bool {
	return len(a.keys) > 0 || len(a.secret) > 0
}

// Middleware rejects unauthenticated requests with 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		subject, reason, err := a.authenticate(r)
		if err != nil {
			metrics.RecordAuthFailure(reason)
			logging.FromContext(r.Context()).Warn("authentication failed",
				slog.String("reason", reason),
				slog.String("error", err.Error()))
			respond.Detail(w, http.StatusUnauthorized, unauthorizedDetail)
			return
		}

		ctx := context.WithValue(r.Context(), ctxSubject, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate returns the caller's subject, or a failure reason and error.
// An API key header takes precedence over a bearer token.
func (a *Authenticator) authenticate(r *http.Request) (string, string, error) {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		if a.validKey(key) {
			return "api-key", "", nil
		}
		return "", reasonInvalidKey, errors.New("unknown api key")
	}

	authz := r.Header.Get("Authorization")
	if authz == "" || len(a.secret) == 0 {
		return "", reasonMissing, errors.New("no credentials supplied")
	}

	sub, err := a.validateJWT(authz)
	if err != nil {
		return "", reasonInvalidToken, err
	}
	return sub, "", nil
}

// validKey compares against every configured key in constant time.
func (a *Authenticator) validKey(key string) bool {
	candidate := []byte(key)
	ok := 0
	for _, k := range a.keys {
		ok |= subtle.ConstantTimeCompare(candidate, k)
	}
	return ok == 1
}

func (a *Authenticator) validateJWT(authz string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		return "", errMissingBearer
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(authz, prefix))

	tok, err := jwt.Parse(tokenString,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}

	sub, err := tok.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errNoSubject
	}
	return sub, nil
}

// SubjectFromContext returns the authenticated subject: the JWT sub claim,
// "api-key" for key auth, or "" when auth is disabled.
func SubjectFromContext(ctx context.Context) string {
	sub, _ := ctx.Value(ctxSubject).(string)
	return sub
}
