// Package feed turns an RSS or Atom feed into a list of article URLs for the
// batch CLI. The feed document itself is downloaded through the same SSRF-safe
// fetcher as the articles, so a feed cannot be used to reach internal hosts.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"news-ingest/internal/domain/entity"
	"news-ingest/internal/resilience/retry"
)

// Fetcher downloads a document. *fetcher.SafeFetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*entity.FetchResult, error)
}

// Item is one feed entry that links to an article.
type Item struct {
	Title       string
	URL         string
	PublishedAt *time.Time
}

// Reader fetches and parses feeds.
type Reader struct {
	fetcher Fetcher
	retry   retry.Config
}

// NewReader creates a Reader that retries transient feed download failures
// according to retryCfg.
func NewReader(f Fetcher, retryCfg retry.Config) *Reader {
	return &Reader{fetcher: f, retry: retryCfg}
}

// Items fetches feedURL and returns its entries in document order.
//
// Relative links are resolved against the feed's final URL. Entries without a
// usable http(s) link are skipped and duplicate links are reported once.
func (r *Reader) Items(ctx context.Context, feedURL string) ([]Item, error) {
	var result *entity.FetchResult
	err := retry.WithBackoff(ctx, r.retry, func() error {
		var fetchErr error
		result, fetchErr = r.fetcher.Fetch(ctx, feedURL)
		return fetchErr
	})
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}

	parsed, err := gofeed.NewParser().ParseString(result.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	base, err := url.Parse(result.FinalURL)
	if err != nil {
		base = nil
	}

	items := make([]Item, 0, len(parsed.Items))
	seen := make(map[string]bool, len(parsed.Items))
	for _, it := range parsed.Items {
		link := resolveLink(base, itemLink(it))
		if link == "" {
			slog.Debug("skipping feed item without link",
				slog.String("feed", feedURL),
				slog.String("title", it.Title))
			continue
		}
		if seen[link] {
			continue
		}
		seen[link] = true

		items = append(items, Item{
			Title:       strings.TrimSpace(it.Title),
			URL:         link,
			PublishedAt: it.PublishedParsed,
		})
	}

	slog.Info("feed parsed",
		slog.String("feed", feedURL),
		slog.String("format", parsed.FeedType),
		slog.Int("entries", len(parsed.Items)),
		slog.Int("items", len(items)))

	return items, nil
}

// URLs is Items reduced to the article URLs.
func (r *Reader) URLs(ctx context.Context, feedURL string) ([]string, error) {
	items, err := r.Items(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	urls := make([]string, len(items))
	for i, it := range items {
		urls[i] = it.URL
	}
	return urls, nil
}

// itemLink prefers the entry's primary link and falls back to the first of
// its alternate links (Atom entries may only carry those).
func itemLink(it *gofeed.Item) string {
	if link := strings.TrimSpace(it.Link); link != "" {
		return link
	}
	for _, l := range it.Links {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return ""
}

func resolveLink(base *url.URL, link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Fragment = ""
	return u.String()
}
