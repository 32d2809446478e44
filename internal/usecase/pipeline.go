package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"onconews/internal/domain"
	"onconews/internal/ports"
)

// PipelineDeps wires all driven adapters into the collection pipeline.
type PipelineDeps struct {
	Source     ports.ArticleSource
	Repository ports.ArticleRepository
	Scraper    ports.ContentScraper
	Notifier   ports.Notifier
	Logger     *slog.Logger

	Keywords   []string
	DaysBack   int
	BatchLimit int
	Delay      time.Duration
}

// Pipeline implements the daily collection run: fetch candidates from the
// search API, insert them (dedup by URL), backfill full text for pending
// articles, report statistics.
type Pipeline struct {
	source     ports.ArticleSource
	repository ports.ArticleRepository
	scraper    ports.ContentScraper
	notifier   ports.Notifier
	logger     *slog.Logger

	keywords   []string
	daysBack   int
	batchLimit int
	delay      time.Duration
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	daysBack := deps.DaysBack
	if daysBack <= 0 {
		daysBack = 7
	}
	batchLimit := deps.BatchLimit
	if batchLimit <= 0 {
		batchLimit = 100
	}

	return &Pipeline{
		source:     deps.Source,
		repository: deps.Repository,
		scraper:    deps.Scraper,
		notifier:   deps.Notifier,
		logger:     deps.Logger,
		keywords:   deps.Keywords,
		daysBack:   daysBack,
		batchLimit: batchLimit,
		delay:      deps.Delay,
	}
}

// ProcessDay executes one full collection run anchored at day.
func (p *Pipeline) ProcessDay(ctx context.Context, day time.Time) error {
	if p.source == nil || p.repository == nil {
		return nil
	}

	inserted, err := p.fetchNews(ctx, day)
	if err != nil {
		return fmt.Errorf("fetch news: %w", err)
	}

	scraped, err := p.scrapeContent(ctx)
	if err != nil {
		return fmt.Errorf("scrape content: %w", err)
	}

	stats, err := p.repository.Statistics(ctx)
	if err != nil {
		return fmt.Errorf("load statistics: %w", err)
	}

	p.info("run completed",
		"new_articles", inserted,
		"scraped", scraped,
		"total", stats.Total,
		"completed", stats.Completed,
		"pending", stats.Pending,
		"failed", stats.Failed)

	if p.notifier != nil {
		digest := buildDigest(day, inserted, scraped, stats)
		if err := p.notifier.PublishDigest(ctx, digest); err != nil {
			p.warn("publish digest failed", "error", err)
		}
	}

	return nil
}

// fetchNews pulls candidates for every configured keyword and inserts
// them; duplicates are counted but not treated as errors.
func (p *Pipeline) fetchNews(ctx context.Context, day time.Time) (int, error) {
	from := day.AddDate(0, 0, -p.daysBack)
	p.info("fetching news", "keywords", len(p.keywords), "from", from.Format("2006-01-02"))

	candidates, err := p.source.FetchAll(ctx, p.keywords, from)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, candidate := range candidates {
		created, err := p.repository.Insert(ctx, candidate)
		if err != nil {
			return inserted, fmt.Errorf("insert %s: %w", candidate.URL, err)
		}
		if created {
			inserted++
		}
	}

	p.info("candidates stored", "fetched", len(candidates), "new", inserted, "duplicates", len(candidates)-inserted)
	return inserted, nil
}

// scrapeContent pulls the pending batch and resolves full text for each
// article, persisting every outcome before moving to the next so an
// interrupted run loses no progress.
func (p *Pipeline) scrapeContent(ctx context.Context) (int, error) {
	if p.scraper == nil {
		return 0, nil
	}

	pending, err := p.repository.PendingArticles(ctx, p.batchLimit)
	if err != nil {
		return 0, err
	}

	p.info("articles pending scrape", "count", len(pending))
	if len(pending) == 0 {
		return 0, nil
	}

	scraped := 0
	for i, article := range pending {
		if i > 0 && p.delay > 0 {
			timer := time.NewTimer(p.delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return scraped, ctx.Err()
			}
		}

		result := p.scraper.Scrape(ctx, article.URL, article.Title)
		if result.Success {
			if err := p.repository.MarkCompleted(ctx, article.URL, result.Text); err != nil {
				return scraped, fmt.Errorf("mark completed %s: %w", article.URL, err)
			}
			scraped++
			continue
		}

		p.warn("scrape failed", "url", article.URL, "error", result.Error)
		if err := p.repository.MarkFailed(ctx, article.URL, result.Error); err != nil {
			return scraped, fmt.Errorf("mark failed %s: %w", article.URL, err)
		}
	}

	p.info("scraping completed", "successful", scraped, "total", len(pending))
	return scraped, nil
}

func buildDigest(day time.Time, inserted, scraped int, stats domain.Statistics) string {
	digest := fmt.Sprintf("OncoNews run %s\nNew articles: %d\nScraped: %d\nTotal: %d (completed %d, pending %d, failed %d)",
		day.Format("2006-01-02"), inserted, scraped,
		stats.Total, stats.Completed, stats.Pending, stats.Failed)

	for i, source := range stats.TopSources {
		if i >= 5 {
			break
		}
		digest += fmt.Sprintf("\n- %s: %d", source.Source, source.Count)
	}

	return digest
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
