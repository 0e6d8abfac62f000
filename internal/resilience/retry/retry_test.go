package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"news-ingest/internal/usecase/ingest"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:    attempts,
		InitialDelay:   5 * time.Millisecond,
		MaxDelay:       20 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

var errTransport = fmt.Errorf("%w: https://feeds.example.com/rss: connection reset by peer", ingest.ErrFetchFailed)

func TestWithBackoff_Success(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestWithBackoff_SuccessAfterRetry(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		if attempts < 3 {
			return errTransport
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithBackoff_MaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return errTransport
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ingest.ErrFetchFailed) {
		t.Errorf("expected wrapped fetch error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithBackoff_NonRetryableError(t *testing.T) {
	blocked := ingest.NewUnsafeURLError("http://10.0.0.1/feed", ingest.ReasonUnsafeIP, "10.0.0.1 is private")

	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return blocked
	})

	if !errors.Is(err, blocked) {
		t.Errorf("expected the original error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt for non-retryable error, got %d", attempts)
	}
}

func TestWithBackoff_ContextCanceled(t *testing.T) {
	cfg := fastConfig(5)
	cfg.InitialDelay = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := WithBackoff(ctx, cfg, func() error {
		attempts++
		cancel()
		return errTransport
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", fmt.Errorf("%w: x: %w", ingest.ErrFetchFailed, context.DeadlineExceeded), false},
		{"unsafe url", ingest.NewUnsafeURLError("http://127.0.0.1/", ingest.ReasonUnsafeIP, "loopback"), false},
		{"wrapped unsafe url", fmt.Errorf("redirect hop: %w", ingest.NewUnsafeURLError("http://127.0.0.1/", ingest.ReasonUnsafeIP, "loopback")), false},
		{"timeout", fmt.Errorf("%w: %w: x", ingest.ErrFetchFailed, ingest.ErrTimeout), true},
		{"transport failure", errTransport, true},
		{"bad status", fmt.Errorf("%w: %w: HTTP 404", ingest.ErrFetchFailed, ingest.ErrBadStatus), false},
		{"body too large", fmt.Errorf("%w: %w", ingest.ErrFetchFailed, ingest.ErrBodyTooLarge), false},
		{"too many redirects", fmt.Errorf("%w: %w", ingest.ErrFetchFailed, ingest.ErrTooManyRedirects), false},
		{"missing location", fmt.Errorf("%w: %w", ingest.ErrFetchFailed, ingest.ErrMissingLocation), false},
		{"unrelated", errors.New("parse error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxAttempts != 3 {
		t.Errorf("expected MaxAttempts 3, got %d", cfg.MaxAttempts)
	}
	if cfg.InitialDelay != time.Second {
		t.Errorf("expected InitialDelay 1s, got %v", cfg.InitialDelay)
	}
	if cfg.Multiplier != 2.0 {
		t.Errorf("expected Multiplier 2.0, got %f", cfg.Multiplier)
	}
}

func TestFeedFetchConfig(t *testing.T) {
	cfg := FeedFetchConfig()

	if cfg.MaxAttempts != 4 {
		t.Errorf("expected MaxAttempts 4, got %d", cfg.MaxAttempts)
	}
	if cfg.MaxDelay != 10*time.Second {
		t.Errorf("expected MaxDelay 10s, got %v", cfg.MaxDelay)
	}
}

func TestAddJitter(t *testing.T) {
	base := 100 * time.Millisecond

	for i := 0; i < 50; i++ {
		got := addJitter(base, 0.1)
		if got < base || got > base+10*time.Millisecond {
			t.Fatalf("jitter out of range: %v", got)
		}
	}

	if got := addJitter(base, 5); got > 2*base {
		t.Errorf("fraction above 1 must be clamped, got %v", got)
	}
}

func TestAddJitter_ZeroFraction(t *testing.T) {
	if got := addJitter(time.Second, 0); got != time.Second {
		t.Errorf("expected no jitter, got %v", got)
	}
}
