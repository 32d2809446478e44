package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "UTC"
	configPathEnv    = "ONCONEWS_CONFIG"
	newsAPIKeyEnv    = "NEWS_API_KEY"
	databasePathEnv  = "ONCONEWS_DATABASE_PATH"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database        DatabaseConfig     `yaml:"database"`
	NewsAPI         NewsAPIConfig      `yaml:"newsApi"`
	Keywords        []string           `yaml:"keywords"`
	Scraping        ScrapingConfig     `yaml:"scraping"`
	ExcludedDomains []string           `yaml:"excludedDomains"`
	Notifications   NotificationConfig `yaml:"notifications"`
	Scheduler       SchedulerConfig    `yaml:"scheduler"`
	Logging         LoggingConfig      `yaml:"logging"`
}

// DatabaseConfig points at the SQLite file holding collected articles.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// NewsAPIConfig describes the newsapi.org search endpoint.
type NewsAPIConfig struct {
	BaseURL  string `yaml:"baseUrl"`
	APIKey   string `yaml:"apiKey"`
	Language string `yaml:"language"`
	SortBy   string `yaml:"sortBy"`
	PageSize int    `yaml:"pageSize"`
	DaysBack int    `yaml:"daysBack"`
}

// ScrapingConfig tunes the full-text extraction pipeline.
type ScrapingConfig struct {
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	MaxRetries     int    `yaml:"maxRetries"`
	UserAgent      string `yaml:"userAgent"`
	BatchLimit     int    `yaml:"batchLimit"`
	DelaySeconds   int    `yaml:"delaySeconds"`
}

// Timeout resolves the per-request fetch deadline.
func (s ScrapingConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Delay resolves the pacing pause between scraped articles.
func (s ScrapingConfig) Delay() time.Duration {
	return time.Duration(s.DelaySeconds) * time.Second
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SchedulerConfig defines whether and where the daily run recurs.
type SchedulerConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Keywords) == 0 {
		cfg.Keywords = defaultConfig().Keywords
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.NewsAPI.APIKey = v
	}

	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.NewsAPI.BaseURL != "" {
		base.NewsAPI.BaseURL = override.NewsAPI.BaseURL
	}
	if override.NewsAPI.APIKey != "" {
		base.NewsAPI.APIKey = override.NewsAPI.APIKey
	}
	if override.NewsAPI.Language != "" {
		base.NewsAPI.Language = override.NewsAPI.Language
	}
	if override.NewsAPI.SortBy != "" {
		base.NewsAPI.SortBy = override.NewsAPI.SortBy
	}
	if override.NewsAPI.PageSize > 0 {
		base.NewsAPI.PageSize = override.NewsAPI.PageSize
	}
	if override.NewsAPI.DaysBack > 0 {
		base.NewsAPI.DaysBack = override.NewsAPI.DaysBack
	}

	if len(override.Keywords) > 0 {
		base.Keywords = override.Keywords
	}

	if override.Scraping.TimeoutSeconds > 0 {
		base.Scraping.TimeoutSeconds = override.Scraping.TimeoutSeconds
	}
	if override.Scraping.MaxRetries > 0 {
		base.Scraping.MaxRetries = override.Scraping.MaxRetries
	}
	if override.Scraping.UserAgent != "" {
		base.Scraping.UserAgent = override.Scraping.UserAgent
	}
	if override.Scraping.BatchLimit > 0 {
		base.Scraping.BatchLimit = override.Scraping.BatchLimit
	}
	if override.Scraping.DelaySeconds > 0 {
		base.Scraping.DelaySeconds = override.Scraping.DelaySeconds
	}

	if len(override.ExcludedDomains) > 0 {
		base.ExcludedDomains = override.ExcludedDomains
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database: DatabaseConfig{Path: "onconews.db"},
		NewsAPI: NewsAPIConfig{
			BaseURL:  "https://newsapi.org/v2/everything",
			Language: "it",
			SortBy:   "publishedAt",
			PageSize: 100,
			DaysBack: 7,
		},
		Keywords: []string{
			"immunoterapia tumore",
			"terapia CAR-T",
			"oncologia di precisione",
		},
		Scraping: ScrapingConfig{
			TimeoutSeconds: 15,
			MaxRetries:     3,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			BatchLimit:     100,
			DelaySeconds:   2,
		},
		ExcludedDomains: []string{"youtube.com", "facebook.com", "twitter.com"},
		Scheduler:       SchedulerConfig{Enabled: false, Timezone: defaultTimezone, location: tz},
		Logging:         LoggingConfig{Level: "info"},
	}
}
