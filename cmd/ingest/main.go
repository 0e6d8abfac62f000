// Package main provides a CLI for batch ingestion.
// Usage: news-ingest [-feed URL] [-parallel N] [-timeout D] [URL...]
//
// One JSON object is printed per URL on stdout, in input order. Logs go to
// stderr as text.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"news-ingest/internal/domain/entity"
	"news-ingest/internal/infra/extractor"
	"news-ingest/internal/infra/feed"
	"news-ingest/internal/infra/fetcher"
	"news-ingest/internal/observability/logging"
	"news-ingest/internal/resilience/retry"
	"news-ingest/internal/usecase/ingest"
)

const (
	defaultParallel = 4
	maxParallel     = 32
)

// Result is one output line.
type Result struct {
	URL     string               `json:"url"`
	Status  string               `json:"status"`
	Article *entity.IngestResult `json:"article"`
	Error   string               `json:"error,omitempty"`
}

// ArticleExtractor is satisfied by *ingest.Service.
type ArticleExtractor interface {
	ExtractArticle(ctx context.Context, rawURL string) ingest.Outcome
}

// FeedReader is satisfied by *feed.Reader.
type FeedReader interface {
	URLs(ctx context.Context, feedURL string) ([]string, error)
}

type options struct {
	feedURL  string
	parallel int
	timeout  time.Duration
	urls     []string
}

func main() {
	logger := logging.New(os.Stderr, "text")
	slog.SetDefault(logger)

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	fetchCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Error("failed to load fetcher configuration", slog.Any("error", err))
		os.Exit(1)
	}
	safeFetcher := fetcher.NewSafeFetcher(fetchCfg)

	svc := ingest.NewService(safeFetcher, extractor.NewExtractor(extractor.NewConverter()))
	reader := feed.NewReader(safeFetcher, retry.FeedFetchConfig())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, svc, reader, os.Stdout); err != nil {
		logger.Error("ingestion failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("news-ingest", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.feedURL, "feed", "", "RSS/Atom feed whose item links are ingested")
	fs.IntVar(&opts.parallel, "parallel", defaultParallel, "Maximum number of concurrent ingestions")
	fs.DurationVar(&opts.timeout, "timeout", 90*time.Second, "Time limit for each URL")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: news-ingest [-feed URL] [-parallel N] [-timeout D] [URL...]")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Examples:")
		fmt.Fprintln(stderr, "  news-ingest https://example.com/news/story")
		fmt.Fprintln(stderr, "  news-ingest -feed https://example.com/feed.xml -parallel 8")
		fmt.Fprintln(stderr, "")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	opts.urls = fs.Args()

	if opts.feedURL == "" && len(opts.urls) == 0 {
		fs.Usage()
		return options{}, errors.New("at least one URL or -feed is required")
	}
	if opts.parallel < 1 || opts.parallel > maxParallel {
		return options{}, fmt.Errorf("-parallel must be between 1 and %d, got %d", maxParallel, opts.parallel)
	}
	if opts.timeout <= 0 {
		return options{}, fmt.Errorf("-timeout must be positive, got %v", opts.timeout)
	}
	return opts, nil
}

// run ingests every URL (feed links first, then arguments) and writes one
// JSON line per URL to out. Individual failures are reported in the output,
// not as an error; only a feed that cannot be read aborts the run.
func run(ctx context.Context, opts options, svc ArticleExtractor, reader FeedReader, out io.Writer) error {
	urls := opts.urls
	if opts.feedURL != "" {
		feedURLs, err := reader.URLs(ctx, opts.feedURL)
		if err != nil {
			return err
		}
		urls = append(feedURLs, urls...)
	}

	results := make([]Result, len(urls))

	var g errgroup.Group
	g.SetLimit(opts.parallel)
	for i, u := range urls {
		g.Go(func() error {
			urlCtx, cancel := context.WithTimeout(ctx, opts.timeout)
			defer cancel()
			results[i] = toResult(u, svc.ExtractArticle(urlCtx, u))
			return nil
		})
	}
	_ = g.Wait()

	enc := json.NewEncoder(out)
	counts := make(map[string]int, 3)
	for _, r := range results {
		counts[r.Status]++
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}

	slog.Info("ingestion finished",
		slog.Int("urls", len(urls)),
		slog.Int("extracted", counts[ingest.StatusExtracted.String()]),
		slog.Int("empty", counts[ingest.StatusEmpty.String()]),
		slog.Int("blocked", counts[ingest.StatusBlocked.String()]))

	return ctx.Err()
}

func toResult(rawURL string, outcome ingest.Outcome) Result {
	r := Result{
		URL:     rawURL,
		Status:  outcome.Status.String(),
		Article: outcome.Article,
	}
	if outcome.Cause != nil {
		r.Error = outcome.Cause.Error()
	}
	return r
}
