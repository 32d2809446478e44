package ports

import (
	"context"
	"time"

	"onconews/internal/domain"
)

// ArticleSource pulls candidate articles from an upstream search API.
type ArticleSource interface {
	FetchAll(ctx context.Context, keywords []string, from time.Time) ([]domain.Article, error)
}

// ArticleRepository persists discovered articles and their scrape lifecycle.
// Insert reports false when the URL is already stored; the record is created
// in the pending state. MarkCompleted and MarkFailed are the only defined
// transitions out of pending.
type ArticleRepository interface {
	Insert(ctx context.Context, article domain.Article) (bool, error)
	MarkCompleted(ctx context.Context, url, fullText string) error
	MarkFailed(ctx context.Context, url, reason string) error
	PendingArticles(ctx context.Context, limit int) ([]domain.Article, error)
	Statistics(ctx context.Context) (domain.Statistics, error)
	Exists(ctx context.Context, url string) (bool, error)
}

// ContentScraper extracts full article text from a source page.
type ContentScraper interface {
	Scrape(ctx context.Context, url, title string) domain.ScrapeResult
	ScrapeBatch(ctx context.Context, articles []domain.Article, delay time.Duration) map[string]domain.ScrapeResult
}

// Notifier delivers run summaries to an outbound channel (Telegram, etc.).
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when collection runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
