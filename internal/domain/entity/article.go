// Package entity defines the value objects that flow through the ingestion pipeline.
// None of them are persisted; each ingestion creates and discards its own copies.
package entity

import "strings"

// FetchResult is the outcome of a single successful fetch (after redirects).
type FetchResult struct {
	FinalURL   string
	StatusCode int
	Headers    map[string]string
	Body       string

	// Redirects is the number of redirects followed to reach FinalURL.
	Redirects int
}

// ExtractedArticle is the readability output for one HTML document, plus the
// normalized markdown body and page metadata collected alongside it.
type ExtractedArticle struct {
	Title       string
	BodyHTML    string
	Byline      string
	TextContent string

	// Markdown is BodyHTML converted and normalized, before noise cleaning.
	Markdown    string
	Excerpt     string
	SiteName    string
	OGImageURL  string
	PublishedAt string // RFC 3339, empty when unknown
}

// IngestResult is the record handed back to the caller of the ingestion pipeline.
// Nil fields are rendered as JSON null.
type IngestResult struct {
	Title       *string `json:"title"`
	Body        *string `json:"body"`
	Author      *string `json:"author"`
	PublishedAt *string `json:"published_at"`
	OGImageURL  *string `json:"og_image_url"`
}

// OptionalString returns nil for blank strings and a pointer to the trimmed value otherwise.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
