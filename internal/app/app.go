package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"onconews/internal/config"
	"onconews/internal/infrastructure/extractor"
	"onconews/internal/infrastructure/newsapi"
	"onconews/internal/infrastructure/scheduler"
	"onconews/internal/infrastructure/storage"
	"onconews/internal/infrastructure/telegram"
	"onconews/internal/logging"
	"onconews/internal/ports"
	"onconews/internal/scrape"
	"onconews/internal/usecase"
)

// Application wires configuration to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	repository *storage.SQLiteRepository
	source     *newsapi.Client
	pipeline   *usecase.Pipeline
}

// New builds a runnable application instance or fails on store errors.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	if cfg.NewsAPI.APIKey == "" {
		return nil, fmt.Errorf("NEWS_API_KEY is not configured")
	}

	repository, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	fetcher := extractor.NewFetcher(nil, cfg.Scraping.UserAgent, cfg.Scraping.MaxRetries,
		cfg.Scraping.Timeout(), baseLogger.With("component", "fetcher"))

	strategies := []scrape.Strategy{
		extractor.NewReadabilityStrategy(cfg.Scraping.Timeout()),
		extractor.NewDOMStrategy(fetcher),
	}

	contentScraper := scrape.NewScraper(
		scrape.NewDomainFilter(cfg.ExcludedDomains),
		strategies,
		baseLogger.With("component", "scraper"))

	source := newsapi.NewClient(cfg.NewsAPI, baseLogger.With("component", "newsapi"))

	var notifier ports.Notifier
	if tg := telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID); tg.Configured() {
		notifier = tg
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Repository: repository,
		Scraper:    contentScraper,
		Notifier:   notifier,
		Logger:     baseLogger.With("component", "pipeline"),
		Keywords:   cfg.Keywords,
		DaysBack:   cfg.NewsAPI.DaysBack,
		BatchLimit: cfg.Scraping.BatchLimit,
		Delay:      cfg.Scraping.Delay(),
	})

	return &Application{
		cfg:        cfg,
		logger:     baseLogger,
		repository: repository,
		source:     source,
		pipeline:   pipeline,
	}, nil
}

// Run validates the API key, then executes either a single collection run
// or the recurring daily schedule, depending on configuration.
func (a *Application) Run(ctx context.Context) error {
	if !a.source.ValidateKey(ctx) {
		return fmt.Errorf("news api key rejected")
	}

	now := time.Now().In(a.cfg.Scheduler.Location())

	if !a.cfg.Scheduler.Enabled {
		return a.pipeline.ProcessDay(ctx, now)
	}

	recurring := usecase.NewScheduler(scheduler.NewDailyScheduler(), a.pipeline)
	if err := recurring.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return recurring.Stop(context.Background())
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.repository == nil {
		return nil
	}
	return a.repository.Close()
}
