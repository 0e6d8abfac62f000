package extractor

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// pageMetadata is read from <head> before any element is removed.
type pageMetadata struct {
	OGImageURL  string
	PublishedAt string
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func readMetadata(doc *goquery.Document, pageURL *url.URL) pageMetadata {
	meta := pageMetadata{
		OGImageURL: metaContent(doc, `meta[property="og:image"]`),
	}
	if meta.OGImageURL != "" && pageURL != nil {
		if ref, err := url.Parse(meta.OGImageURL); err == nil {
			meta.OGImageURL = pageURL.ResolveReference(ref).String()
		}
	}

	for _, selector := range []string{
		`meta[property="article:published_time"]`,
		`meta[name="date"]`,
	} {
		if v := metaContent(doc, selector); v != "" {
			meta.PublishedAt = v
			break
		}
	}
	return meta
}

// NormalizeDate parses a publication date in any common layout and formats it
// as RFC 3339. Dates without a zone are taken as UTC. It returns "" when raw
// cannot be parsed.
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
