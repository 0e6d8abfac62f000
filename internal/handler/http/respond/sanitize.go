package respond

import (
	"regexp"
)

var (
	bearerPattern   = regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9\-_.~+/]+=*`)
	jwtPattern      = regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`)
	apiKeyPattern   = regexp.MustCompile(`(?i)(x-api-key[:=]\s*)\S+`)
	userinfoPattern = regexp.MustCompile(`://([^:/@\s]+):([^@/\s]+)@`)
)

// SanitizeError masks credentials that may appear in an error message:
// bearer tokens, raw JWTs, API key header values and URL passwords.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()

	// Order matters: a bearer token is usually a JWT.
	msg = bearerPattern.ReplaceAllString(msg, "${1}****")
	msg = jwtPattern.ReplaceAllString(msg, "****")
	msg = apiKeyPattern.ReplaceAllString(msg, "${1}****")
	msg = userinfoPattern.ReplaceAllString(msg, "://$1:****@")

	return msg
}
