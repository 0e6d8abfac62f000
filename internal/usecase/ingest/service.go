package ingest

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"news-ingest/internal/domain/entity"
	"news-ingest/internal/observability/logging"
	"news-ingest/internal/observability/metrics"
	"news-ingest/internal/observability/tracing"
	"news-ingest/internal/utils/text"
)

// Fetcher retrieves a page. SSRF rejections must be returned as
// *UnsafeURLError; every other error is treated as a benign failure.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*entity.FetchResult, error)
}

// Extractor finds the article in a fetched HTML document.
type Extractor interface {
	Extract(html, pageURL string) (*entity.ExtractedArticle, error)
}

// Service runs the ingestion pipeline: fetch, extract, clean.
//
// Service holds no per-call state; one instance serves all requests.
type Service struct {
	Fetcher   Fetcher
	Extractor Extractor
}

// NewService creates a Service.
func NewService(fetcher Fetcher, extractor Extractor) *Service {
	return &Service{
		Fetcher:   fetcher,
		Extractor: extractor,
	}
}

// ExtractArticle ingests rawURL.
//
// The Outcome is Blocked only when URL safety validation rejected the URL or a
// redirect target. Network, status, size and extraction failures all produce
// an Empty outcome; Outcome.Cause keeps the detail for logs.
func (s *Service) ExtractArticle(ctx context.Context, rawURL string) Outcome {
	start := time.Now()
	ctx, span := tracing.GetTracer().Start(ctx, "ingest.ExtractArticle",
		trace.WithAttributes(attribute.String("ingest.url", rawURL)),
	)
	defer span.End()

	outcome := s.run(ctx, rawURL)
	elapsed := time.Since(start)

	metrics.RecordIngest(outcome.Status.String(), outcome.CauseLabel(), elapsed)
	span.SetAttributes(
		attribute.String("ingest.outcome", outcome.Status.String()),
		attribute.String("ingest.cause", outcome.CauseLabel()),
	)

	logger := logging.FromContext(ctx).With(
		slog.String("host", hostOf(rawURL)),
		slog.Duration("duration", elapsed),
	)

	switch outcome.Status {
	case StatusBlocked:
		metrics.RecordBlocked(string(outcome.Blocked.Reason))
		span.SetAttributes(attribute.String("ingest.blocked_reason", string(outcome.Blocked.Reason)))
		logger.Warn("ingest blocked by url validation",
			slog.String("reason", string(outcome.Blocked.Reason)),
			slog.String("detail", outcome.Blocked.Detail))
	case StatusEmpty:
		span.SetStatus(codes.Error, outcome.CauseLabel())
		logger.Info("ingest produced no article",
			slog.String("cause", outcome.CauseLabel()),
			slog.Any("error", outcome.Cause))
	default:
		logger.Info("ingest finished",
			slog.Bool("has_body", outcome.Article.Body != nil),
			slog.Bool("has_author", outcome.Article.Author != nil))
	}

	return outcome
}

func (s *Service) run(ctx context.Context, rawURL string) Outcome {
	page, err := s.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return FromError(err)
	}
	metrics.RecordFetch(page.Redirects, len(page.Body))

	article, err := s.Extractor.Extract(page.Body, page.FinalURL)
	if err != nil {
		return Empty(err)
	}

	body := text.Clean(article.Markdown, text.CleanOptions{Byline: article.Byline})

	return Extracted(&entity.IngestResult{
		Title:       entity.OptionalString(article.Title),
		Body:        entity.OptionalString(body),
		Author:      entity.OptionalString(article.Byline),
		PublishedAt: entity.OptionalString(article.PublishedAt),
		OGImageURL:  entity.OptionalString(article.OGImageURL),
	})
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
