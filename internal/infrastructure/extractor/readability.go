package extractor

import (
	"context"
	"fmt"
	"time"

	readability "github.com/go-shiori/go-readability"

	"onconews/internal/scrape"
)

// ReadabilityStrategy is the primary extraction engine: a heuristic
// article-boundary detector that fetches and parses the page itself.
// It is cheaper and more accurate than the DOM fallback when a site
// matches common article layouts.
type ReadabilityStrategy struct {
	timeout time.Duration
}

var _ scrape.Strategy = (*ReadabilityStrategy)(nil)

// NewReadabilityStrategy configures the fetch deadline for the extractor.
func NewReadabilityStrategy(timeout time.Duration) *ReadabilityStrategy {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ReadabilityStrategy{timeout: timeout}
}

// Name identifies the strategy in logs.
func (r *ReadabilityStrategy) Name() string {
	return "readability"
}

// Extract downloads and parses the page, returning its plain text. Any
// network or parse failure, or a result at or below the threshold, is an
// error that sends the orchestrator to the fallback strategy.
func (r *ReadabilityStrategy) Extract(ctx context.Context, pageURL string) (string, error) {
	article, err := readability.FromURL(pageURL, r.timeout)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}

	if len(article.TextContent) <= scrape.MinTextLength {
		return "", scrape.ErrInsufficientText
	}

	return article.TextContent, nil
}
