// Package extractor turns a fetched HTML document into article text and
// metadata: readability picks the main content, bluemonday sanitizes it and
// the Converter renders it as markdown.
package extractor

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"

	"news-ingest/internal/domain/entity"
	"news-ingest/internal/usecase/ingest"
)

// Extractor runs readability over one document at a time.
//
// Thread safety: Extractor is safe for concurrent use.
type Extractor struct {
	converter *Converter
	policy    *bluemonday.Policy
}

// NewExtractor creates an extractor that renders bodies with converter.
func NewExtractor(converter *Converter) *Extractor {
	return &Extractor{
		converter: converter,
		policy:    bluemonday.UGCPolicy(),
	}
}

// Extract parses html fetched from pageURL.
// It returns an error wrapping ingest.ErrNotExtracted when no main-content
// region can be found.
func (e *Extractor) Extract(html, pageURL string) (*entity.ExtractedArticle, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", ingest.ErrNotExtracted, err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil // readability works without a base URL
	}

	meta := readMetadata(doc, base)

	doc.Find(NoiseSelector).Remove()
	cleaned, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("%w: render html: %v", ingest.ErrNotExtracted, err)
	}

	article, err := readability.FromReader(strings.NewReader(cleaned), base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ingest.ErrNotExtracted, err)
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return nil, ingest.ErrNotExtracted
	}

	bodyHTML := e.policy.Sanitize(article.Content)
	markdown, err := e.converter.Convert(bodyHTML)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ingest.ErrNotExtracted, err)
	}

	published := meta.PublishedAt
	if published == "" && article.PublishedTime != nil && !article.PublishedTime.IsZero() {
		published = article.PublishedTime.UTC().Format(time.RFC3339)
	}

	return &entity.ExtractedArticle{
		Title:       strings.TrimSpace(article.Title),
		BodyHTML:    bodyHTML,
		Byline:      strings.TrimSpace(article.Byline),
		TextContent: article.TextContent,
		Markdown:    markdown,
		Excerpt:     strings.TrimSpace(article.Excerpt),
		SiteName:    strings.TrimSpace(article.SiteName),
		OGImageURL:  meta.OGImageURL,
		PublishedAt: NormalizeDate(published),
	}, nil
}
