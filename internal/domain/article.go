package domain

import "time"

// ScrapeStatus tracks where an article sits in the full-text lifecycle.
type ScrapeStatus string

const (
	StatusPending   ScrapeStatus = "pending"
	StatusCompleted ScrapeStatus = "completed"
	StatusFailed    ScrapeStatus = "failed"
)

// Article is a core entity describing a discovered news item. URL is the
// natural key: the store never holds two records with the same URL.
type Article struct {
	URL             string
	Title           string
	SourceName      string
	Author          string
	PublishedAt     *time.Time
	Description     string
	KeywordsMatched string
	Language        string
	FetchedAt       time.Time

	// FullText is non-nil iff ScrapingStatus is completed;
	// ScrapingError is non-nil iff ScrapingStatus is failed.
	FullText       *string
	ScrapingStatus ScrapeStatus
	ScrapingError  *string
}

// ScrapeResult carries the outcome of one scrape attempt. Ephemeral: the
// pipeline writes it back into the store, it is never persisted as is.
type ScrapeResult struct {
	Success bool
	Text    string
	Error   string
}

// SourceCount pairs a source name with how many of its articles were stored.
type SourceCount struct {
	Source string
	Count  int
}

// Statistics aggregates store contents for run reports.
type Statistics struct {
	Total      int
	Completed  int
	Pending    int
	Failed     int
	TopSources []SourceCount
}
