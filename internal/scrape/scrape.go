package scrape

import (
	"context"
	"errors"
)

// MinTextLength is the minimum number of characters an extraction must
// produce to count as an article body. Results at or below the threshold
// are failures, not terse articles.
const MinTextLength = 100

// ErrInsufficientText reports that a page was fetched and parsed but did
// not yield enough text to pass the threshold.
var ErrInsufficientText = errors.New("insufficient text extracted")

// Strategy captures a single text-extraction engine. Implementations fetch
// and parse the page themselves and return plain text, or an error meaning
// "let the next strategy try". Errors are never fatal to a batch.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, pageURL string) (string, error)
}
