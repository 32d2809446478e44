package scrape

import "strings"

// minLineLength is the shortest trimmed line kept by CleanText; anything
// shorter is assumed to be UI chrome rather than prose.
const minLineLength = 20

var noisePhrases = []string{
	"cookie",
	"privacy policy",
	"terms of service",
	"subscribe to our newsletter",
	"follow us on",
	"share this article",
	"related articles",
}

// CleanText strips boilerplate from extracted article text. Lines under
// minLineLength characters and lines carrying a known boilerplate phrase
// are dropped; the rest are trimmed and rejoined with blank lines.
// Applying CleanText to its own output is a no-op.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < minLineLength {
			continue
		}
		if containsNoise(line) {
			continue
		}
		kept = append(kept, line)
	}

	return strings.Join(kept, "\n\n")
}

func containsNoise(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range noisePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
