package extractor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

// Fetcher performs HTTP GETs with a browser-like header set, bounded
// retries with exponential backoff, and charset auto-detection. Redirects
// are followed by the underlying client.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxRetries  int
	backoffBase time.Duration
	logger      *slog.Logger
}

// NewFetcher wires an HTTP client; a nil client gets the given timeout,
// maxRetries below 1 is clamped to 1.
func NewFetcher(client *http.Client, userAgent string, maxRetries int, timeout time.Duration, log *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Fetcher{
		client:      client,
		userAgent:   userAgent,
		maxRetries:  maxRetries,
		backoffBase: time.Second,
		logger:      log,
	}
}

// Fetch downloads the page and returns its decoded body. Transient
// failures (transport errors, non-2xx statuses) are retried up to
// maxRetries attempts, waiting backoffBase<<attempt between tries; the
// final attempt's error propagates.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < f.maxRetries; attempt++ {
		if attempt > 0 {
			if err := wait(ctx, f.backoffBase<<(attempt-1)); err != nil {
				return "", err
			}
		}

		body, err := f.fetchOnce(ctx, pageURL)
		if err == nil {
			return body, nil
		}

		lastErr = err
		if f.logger != nil {
			f.logger.Debug("fetch attempt failed", "attempt", attempt+1, "max", f.maxRetries, "url", pageURL, "error", err)
		}
	}

	return "", lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "it-IT,it;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Connection", "keep-alive")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("server returned %s", resp.Status)
	}

	// Declared encodings are unreliable across news sites; sniff from the
	// headers and the content itself.
	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("detect encoding: %w", err)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return string(body), nil
}

func wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
