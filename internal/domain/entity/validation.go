package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
const maxURLLength = 2048

// ValidateURLSyntax checks that rawURL is a well-formed absolute http(s) URL.
// It does not resolve the host: SSRF validation happens in the fetcher, once
// per redirect hop, against the addresses that will actually be dialed.
func ValidateURLSyntax(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}

	// DoS protection: enforce maximum URL length
	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: "url", Message: "invalid URL format"}
	}

	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must be absolute"}
	}

	return nil
}
