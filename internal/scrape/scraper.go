package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"onconews/internal/domain"
	"onconews/internal/ports"
)

// Scraper resolves full article text for a URL by running an ordered list
// of extraction strategies behind a domain exclusion check. It is the only
// component that decides success or failure for a scrape; callers persist
// the outcome, they never retry strategies themselves.
type Scraper struct {
	filter     *DomainFilter
	strategies []Strategy
	logger     *slog.Logger
}

var _ ports.ContentScraper = (*Scraper)(nil)

// NewScraper wires the exclusion filter with extraction strategies,
// tried in the order given.
func NewScraper(filter *DomainFilter, strategies []Strategy, log *slog.Logger) *Scraper {
	if filter == nil {
		filter = NewDomainFilter(nil)
	}
	return &Scraper{filter: filter, strategies: strategies, logger: log}
}

// Scrape runs the per-URL decision logic: exclusion check first, then each
// strategy in order until one produces text past the threshold. Strategy
// errors are swallowed and the next strategy tried; only the last one's
// error surfaces in the result. The winning text is passed through
// CleanText before being returned.
func (s *Scraper) Scrape(ctx context.Context, pageURL, title string) domain.ScrapeResult {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return domain.ScrapeResult{Error: fmt.Sprintf("invalid url: %v", err)}
	}

	host := parsed.Hostname()
	if s.filter.Excluded(host) {
		reason := fmt.Sprintf("domain excluded: %s", host)
		s.debug(reason, "url", pageURL)
		return domain.ScrapeResult{Error: reason}
	}

	var lastErr error
	for _, strategy := range s.strategies {
		text, extractErr := strategy.Extract(ctx, pageURL)
		if extractErr == nil && len(text) <= MinTextLength {
			extractErr = ErrInsufficientText
		}
		if extractErr != nil {
			s.debug("strategy failed", "strategy", strategy.Name(), "url", pageURL, "error", extractErr)
			lastErr = extractErr
			continue
		}

		s.info("scraped article", "strategy", strategy.Name(), "chars", len(text), "title", truncate(title, 50))
		return domain.ScrapeResult{Success: true, Text: CleanText(text)}
	}

	if lastErr == nil {
		lastErr = ErrInsufficientText
	}
	if errors.Is(lastErr, ErrInsufficientText) {
		return domain.ScrapeResult{Error: ErrInsufficientText.Error()}
	}
	return domain.ScrapeResult{Error: lastErr.Error()}
}

// ScrapeBatch processes articles sequentially with a fixed pacing delay
// between items. A cancelled context stops the loop and returns the
// results collected so far; per-URL failures never stop the batch.
func (s *Scraper) ScrapeBatch(ctx context.Context, articles []domain.Article, delay time.Duration) map[string]domain.ScrapeResult {
	results := make(map[string]domain.ScrapeResult, len(articles))
	total := len(articles)

	s.info("starting batch scrape", "articles", total)

	for i, article := range articles {
		if i > 0 && !pause(ctx, delay) {
			break
		}

		s.info("scraping", "position", i+1, "total", total, "title", truncate(article.Title, 50))
		results[article.URL] = s.Scrape(ctx, article.URL, article.Title)
	}

	successful := 0
	for _, result := range results {
		if result.Success {
			successful++
		}
	}
	s.info("batch scrape completed", "successful", successful, "total", total)

	return results
}

// pause waits for the pacing delay, reporting false if the context is
// cancelled first.
func pause(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "..."
}

func (s *Scraper) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Scraper) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
