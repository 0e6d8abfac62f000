//go:build integration

package fetcher_test

import (
	"context"
	"testing"
	"time"

	"news-ingest/internal/infra/fetcher"
	"news-ingest/internal/usecase/ingest"
)

// ───────────────────────────────────────────────────────────────
// Real DNS and network. Run with: go test -tags=integration ./...
// ───────────────────────────────────────────────────────────────

func TestValidateURL_RealDNS(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	addr, err := fetcher.ValidateURL(ctx, "https://example.com/")
	if err != nil {
		t.Fatalf("ValidateURL(example.com) error = %v", err)
	}
	if !fetcher.IsSafeIP(addr) {
		t.Errorf("ValidateURL returned unsafe address %s", addr)
	}

	_, err = fetcher.ValidateURL(ctx, "http://localhost/")
	unsafeErr, ok := ingest.AsUnsafeURLError(err)
	if !ok {
		t.Fatalf("expected localhost to be blocked, got %v", err)
	}
	if unsafeErr.Reason != ingest.ReasonUnsafeIP {
		t.Errorf("expected reason %q, got %q", ingest.ReasonUnsafeIP, unsafeErr.Reason)
	}
}

func TestSafeFetcher_RealFetch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	f := fetcher.NewSafeFetcher(fetcher.DefaultConfig())

	result, err := f.Fetch(ctx, "https://example.com/")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if result.StatusCode != 200 {
		t.Errorf("expected 200, got %d", result.StatusCode)
	}
	if len(result.Body) == 0 {
		t.Error("expected non-empty body")
	}
}
