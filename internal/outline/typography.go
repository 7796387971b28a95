package outline

import (
	"strings"

	"github.com/dgallion1/docsift/internal/doctree"
)

// DefaultBodySize is returned when a document has no words at all.
const DefaultBodySize = 12

// BodySize returns the font size carrying the most words in the document.
// Weighting by word count rather than span count keeps one oversized title
// span from outvoting the paragraphs. Ties go to the size seen first.
func BodySize(spans []doctree.Span) int {
	return bodySize(spans, DefaultBodySize)
}

func bodySize(spans []doctree.Span, fallback int) int {
	words := make(map[int]int)
	var order []int
	for _, s := range spans {
		n := wordCount(s.Text)
		if n == 0 {
			continue
		}
		if _, seen := words[s.FontSize]; !seen {
			order = append(order, s.FontSize)
		}
		words[s.FontSize] += n
	}
	if len(order) == 0 {
		return fallback
	}

	best := order[0]
	for _, size := range order[1:] {
		if words[size] > words[best] {
			best = size
		}
	}
	return best
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
