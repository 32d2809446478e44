package scrape

import "testing"

func TestDomainFilterExcluded(t *testing.T) {
	t.Parallel()

	filter := NewDomainFilter([]string{"youtube.com", "excluded.example.com"})

	if !filter.Excluded("www.youtube.com") {
		t.Fatalf("expected www.youtube.com to be excluded")
	}
	if !filter.Excluded("excluded.example.com") {
		t.Fatalf("expected excluded.example.com to be excluded")
	}
	if filter.Excluded("example.com") {
		t.Fatalf("example.com should not be excluded")
	}
}

func TestDomainFilterCaseSensitive(t *testing.T) {
	t.Parallel()

	filter := NewDomainFilter([]string{"YouTube.com"})
	if filter.Excluded("www.youtube.com") {
		t.Fatalf("match should be case-sensitive")
	}
}

func TestDomainFilterEmptyList(t *testing.T) {
	t.Parallel()

	filter := NewDomainFilter(nil)
	if filter.Excluded("anything.example.com") {
		t.Fatalf("empty list should exclude nothing")
	}
}
