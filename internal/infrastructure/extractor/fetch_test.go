package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchSuccess(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("missing user agent, got %q", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("Accept-Language") == "" {
			t.Errorf("missing accept-language header")
		}
		_, _ = w.Write([]byte("<html><body>ciao</body></html>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "test-agent", 3, 5*time.Second, nil)

	body, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if !strings.Contains(body, "ciao") {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestFetchRetriesExactlyMaxTimes(t *testing.T) {
	t.Parallel()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "test-agent", 3, 5*time.Second, nil)
	fetcher.backoffBase = time.Millisecond

	_, err := fetcher.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatalf("expected failure after retries")
	}
	if attempts != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", attempts)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Fatalf("expected the final attempt's error, got %v", err)
	}
}

func TestFetchRecoversAfterTransientFailure(t *testing.T) {
	t.Parallel()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(strings.Repeat("testo ", 30)))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "test-agent", 3, 5*time.Second, nil)
	fetcher.backoffBase = time.Millisecond

	body, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if len(body) == 0 {
		t.Fatalf("expected body content")
	}
}

func TestFetchBackoffGrowsPerAttempt(t *testing.T) {
	t.Parallel()

	fetcher := NewFetcher(nil, "test-agent", 3, time.Second, nil)

	// Attempt i waits backoffBase << (i-1) before retrying.
	if got := fetcher.backoffBase << 0; got != time.Second {
		t.Fatalf("first retry wait should be 1s, got %v", got)
	}
	if got := fetcher.backoffBase << 1; got != 2*time.Second {
		t.Fatalf("second retry wait should be 2s, got %v", got)
	}
}

func TestFetchHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "test-agent", 5, 5*time.Second, nil)
	fetcher.backoffBase = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := fetcher.Fetch(ctx, server.URL)
	if err == nil {
		t.Fatalf("expected error from cancelled context")
	}
}
