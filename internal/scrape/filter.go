package scrape

import "strings"

// DomainFilter classifies hosts against a configured exclusion list.
// A host is excluded when any configured token is a substring of it.
// The match is case-sensitive and runs on the host only, never the path.
type DomainFilter struct {
	tokens []string
}

// NewDomainFilter builds a filter from configured exclusion tokens.
func NewDomainFilter(tokens []string) *DomainFilter {
	return &DomainFilter{tokens: tokens}
}

// Excluded reports whether the host matches any exclusion token.
// An empty list excludes nothing.
func (f *DomainFilter) Excluded(host string) bool {
	for _, token := range f.tokens {
		if token != "" && strings.Contains(host, token) {
			return true
		}
	}
	return false
}
