package scrape

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"onconews/internal/domain"
)

type stubStrategy struct {
	name  string
	text  string
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(ctx context.Context, pageURL string) (string, error) {
	s.calls++
	return s.text, s.err
}

func longText(n int) string {
	return strings.Repeat("a", n)
}

func batchArticles(urls ...string) []domain.Article {
	articles := make([]domain.Article, 0, len(urls))
	for _, u := range urls {
		articles = append(articles, domain.Article{URL: u, Title: "T"})
	}
	return articles
}

func TestScrapeExcludedDomainShortCircuits(t *testing.T) {
	t.Parallel()

	strategy := &stubStrategy{name: "stub", text: longText(200)}
	scraper := NewScraper(NewDomainFilter([]string{"excluded.example.com"}), []Strategy{strategy}, nil)

	result := scraper.Scrape(context.Background(), "https://excluded.example.com/story", "T")

	if result.Success {
		t.Fatalf("expected failure for excluded domain")
	}
	if !strings.Contains(result.Error, "excluded") {
		t.Fatalf("expected exclusion reason, got %q", result.Error)
	}
	if strategy.calls != 0 {
		t.Fatalf("no extraction should be attempted, got %d calls", strategy.calls)
	}
}

func TestScrapeFallsBackInOrder(t *testing.T) {
	t.Parallel()

	primary := &stubStrategy{name: "primary", err: errors.New("boom")}
	fallback := &stubStrategy{name: "fallback", text: longText(150)}
	scraper := NewScraper(nil, []Strategy{primary, fallback}, nil)

	result := scraper.Scrape(context.Background(), "https://news.example.com/a", "T")

	if !result.Success {
		t.Fatalf("expected success via fallback, got error %q", result.Error)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Fatalf("expected one call each, got primary=%d fallback=%d", primary.calls, fallback.calls)
	}
}

func TestScrapePrimaryWinStopsFallback(t *testing.T) {
	t.Parallel()

	primary := &stubStrategy{name: "primary", text: longText(150)}
	fallback := &stubStrategy{name: "fallback", text: longText(150)}
	scraper := NewScraper(nil, []Strategy{primary, fallback}, nil)

	result := scraper.Scrape(context.Background(), "https://news.example.com/a", "T")

	if !result.Success {
		t.Fatalf("expected success, got %q", result.Error)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback should not run after a primary win")
	}
}

func TestScrapeThresholdBoundary(t *testing.T) {
	t.Parallel()

	exact := &stubStrategy{name: "exact", text: longText(MinTextLength)}
	scraper := NewScraper(nil, []Strategy{exact}, nil)

	result := scraper.Scrape(context.Background(), "https://news.example.com/a", "T")
	if result.Success {
		t.Fatalf("text of exactly %d chars must be a failure", MinTextLength)
	}
	if result.Error != ErrInsufficientText.Error() {
		t.Fatalf("unexpected error: %q", result.Error)
	}

	over := &stubStrategy{name: "over", text: longText(MinTextLength + 1)}
	scraper = NewScraper(nil, []Strategy{over}, nil)

	result = scraper.Scrape(context.Background(), "https://news.example.com/a", "T")
	if !result.Success {
		t.Fatalf("text of %d chars should succeed, got %q", MinTextLength+1, result.Error)
	}
}

func TestScrapeSurfacesLastError(t *testing.T) {
	t.Parallel()

	primary := &stubStrategy{name: "primary", err: ErrInsufficientText}
	fallback := &stubStrategy{name: "fallback", err: errors.New("connect timeout")}
	scraper := NewScraper(nil, []Strategy{primary, fallback}, nil)

	result := scraper.Scrape(context.Background(), "https://news.example.com/a", "T")

	if result.Success {
		t.Fatalf("expected failure")
	}
	if result.Error != "connect timeout" {
		t.Fatalf("expected the last strategy's error, got %q", result.Error)
	}
}

func TestScrapeBatchProcessesAll(t *testing.T) {
	t.Parallel()

	strategy := &stubStrategy{name: "stub", text: longText(150)}
	scraper := NewScraper(NewDomainFilter([]string{"blocked.example.com"}), []Strategy{strategy}, nil)

	results := scraper.ScrapeBatch(context.Background(), batchArticles(
		"https://news.example.com/a",
		"https://blocked.example.com/b",
		"https://news.example.com/c",
	), 0)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results["https://news.example.com/a"].Success {
		t.Fatalf("first article should succeed")
	}
	if results["https://blocked.example.com/b"].Success {
		t.Fatalf("blocked article should fail")
	}
	if !results["https://news.example.com/c"].Success {
		t.Fatalf("batch must continue past a failure")
	}
}

func TestScrapeBatchStopsOnCancel(t *testing.T) {
	t.Parallel()

	strategy := &stubStrategy{name: "stub", text: longText(150)}
	scraper := NewScraper(nil, []Strategy{strategy}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := scraper.ScrapeBatch(ctx, batchArticles(
		"https://news.example.com/a",
		"https://news.example.com/b",
	), time.Second)

	if len(results) != 1 {
		t.Fatalf("expected only the first article before cancellation, got %d", len(results))
	}
}
