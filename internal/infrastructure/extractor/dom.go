package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"onconews/internal/scrape"
)

// Class-attribute tokens marking elements that never carry article prose.
var noiseClassTokens = []string{
	"advertisement", "ads", "social-share", "comments",
	"related-articles", "sidebar", "menu",
}

// Class-attribute tokens commonly naming the main content container,
// tried in priority order.
var contentClassTokens = []string{
	"article-body", "article-content", "post-content",
	"entry-content", "content-body", "main-content",
}

// DOMStrategy is the generic fallback extractor: it strips known
// non-content elements, locates the most plausible content container,
// and collects paragraph text from it.
type DOMStrategy struct {
	fetcher *Fetcher
}

var _ scrape.Strategy = (*DOMStrategy)(nil)

// NewDOMStrategy wires the retrying fetcher used to obtain raw HTML.
func NewDOMStrategy(fetcher *Fetcher) *DOMStrategy {
	return &DOMStrategy{fetcher: fetcher}
}

// Name identifies the strategy in logs.
func (d *DOMStrategy) Name() string {
	return "dom"
}

// Extract fetches the page and walks its DOM for paragraph text.
// Whitespace is collapsed within each paragraph; paragraphs are joined
// with blank lines. A result at or below the threshold is an error.
func (d *DOMStrategy) Extract(ctx context.Context, pageURL string) (string, error) {
	html, err := d.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	stripNoise(doc)

	container := findContent(doc)
	if container == nil {
		return "", scrape.ErrInsufficientText
	}

	var paragraphs []string
	container.Find("p").Each(func(i int, p *goquery.Selection) {
		text := strings.Join(strings.Fields(p.Text()), " ")
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	text := strings.Join(paragraphs, "\n\n")
	if len(text) <= scrape.MinTextLength {
		return "", scrape.ErrInsufficientText
	}

	return text, nil
}

// stripNoise removes scripts, chrome, and elements whose class attribute
// carries a known noise token.
func stripNoise(doc *goquery.Document) {
	doc.Find("script, style, nav, footer, aside, header, iframe, noscript").Remove()

	doc.Find("[class]").Each(func(i int, sel *goquery.Selection) {
		class, _ := sel.Attr("class")
		lower := strings.ToLower(class)
		for _, token := range noiseClassTokens {
			if strings.Contains(lower, token) {
				sel.Remove()
				return
			}
		}
	})
}

// findContent locates the main content container: an article tag first,
// then the first element with a known content class token, then the body.
func findContent(doc *goquery.Document) *goquery.Selection {
	if article := doc.Find("article").First(); article.Length() > 0 {
		return article
	}

	for _, token := range contentClassTokens {
		var match *goquery.Selection
		doc.Find("[class]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
			class, _ := sel.Attr("class")
			if strings.Contains(strings.ToLower(class), token) {
				match = sel
				return false
			}
			return true
		})
		if match != nil {
			return match
		}
	}

	if body := doc.Find("body").First(); body.Length() > 0 {
		return body
	}
	return nil
}
