package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"onconews/internal/config"
	"onconews/internal/domain"
	"onconews/internal/ports"
)

// Client talks to the newsapi.org everything endpoint and normalizes its
// payload into domain articles.
type Client struct {
	baseURL      string
	apiKey       string
	language     string
	sortBy       string
	pageSize     int
	requestDelay time.Duration
	http         *http.Client
	logger       *slog.Logger
}

var _ ports.ArticleSource = (*Client)(nil)

type apiResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Author      string `json:"author"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// NewClient creates a reusable HTTP client for the search API.
func NewClient(cfg config.NewsAPIConfig, log *slog.Logger) *Client {
	return &Client{
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		language:     cfg.Language,
		sortBy:       cfg.SortBy,
		pageSize:     cfg.PageSize,
		requestDelay: time.Second,
		http:         &http.Client{Timeout: 30 * time.Second},
		logger:       log,
	}
}

// FetchKeyword queries one search term and returns normalized articles,
// each tagged with the keyword that surfaced it.
func (c *Client) FetchKeyword(ctx context.Context, keyword string, from time.Time) ([]domain.Article, error) {
	params := url.Values{}
	params.Set("q", keyword)
	params.Set("apiKey", c.apiKey)
	params.Set("language", c.language)
	params.Set("sortBy", c.sortBy)
	params.Set("pageSize", strconv.Itoa(c.pageSize))
	params.Set("from", from.Format("2006-01-02"))

	var payload apiResponse
	if err := c.get(ctx, params, &payload); err != nil {
		return nil, err
	}

	if payload.Status != "ok" {
		return nil, fmt.Errorf("news api error: %s", payload.Message)
	}

	articles := make([]domain.Article, 0, len(payload.Articles))
	for _, raw := range payload.Articles {
		if raw.URL == "" {
			continue
		}

		article := domain.Article{
			URL:             raw.URL,
			Title:           raw.Title,
			SourceName:      raw.Source.Name,
			Author:          raw.Author,
			Description:     raw.Description,
			KeywordsMatched: keyword,
			Language:        c.language,
		}
		if parsed, err := time.Parse(time.RFC3339, raw.PublishedAt); err == nil {
			article.PublishedAt = &parsed
		}

		articles = append(articles, article)
	}

	c.debug("fetched keyword", "keyword", keyword, "articles", len(articles))
	return articles, nil
}

// FetchAll queries every configured keyword with a politeness delay,
// deduplicating by URL across keywords. A failing keyword is logged and
// skipped; it never aborts the run.
func (c *Client) FetchAll(ctx context.Context, keywords []string, from time.Time) ([]domain.Article, error) {
	var aggregated []domain.Article
	seen := map[string]struct{}{}

	for i, keyword := range keywords {
		if i > 0 && c.requestDelay > 0 {
			timer := time.NewTimer(c.requestDelay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return aggregated, ctx.Err()
			}
		}

		results, err := c.FetchKeyword(ctx, keyword, from)
		if err != nil {
			if ctx.Err() != nil {
				return aggregated, ctx.Err()
			}
			c.warn("keyword fetch failed", "keyword", keyword, "error", err)
			continue
		}

		for _, article := range results {
			if _, ok := seen[article.URL]; ok {
				continue
			}
			seen[article.URL] = struct{}{}
			aggregated = append(aggregated, article)
		}
	}

	c.debug("fetch all done", "keywords", len(keywords), "unique_articles", len(aggregated))
	return aggregated, nil
}

// ValidateKey probes the API with a one-result query and reports whether
// the configured key is accepted.
func (c *Client) ValidateKey(ctx context.Context) bool {
	params := url.Values{}
	params.Set("q", "test")
	params.Set("apiKey", c.apiKey)
	params.Set("pageSize", "1")

	var payload apiResponse
	if err := c.get(ctx, params, &payload); err != nil {
		c.warn("api key validation failed", "error", err)
		return false
	}

	return payload.Status == "ok"
}

func (c *Client) get(ctx context.Context, params url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
