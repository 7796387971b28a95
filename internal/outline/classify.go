package outline

import (
	"sort"
	"strings"

	"github.com/dgallion1/docsift/internal/doctree"
)

// Candidate is a span that looks like a heading.
type Candidate struct {
	Text string
	Page int
}

// Candidates groups heading candidates by font size. Each bucket keeps
// reading order and never holds the same (text, page) pair twice.
type Candidates map[int][]Candidate

// Classify collects spans rendered larger than the body size whose trimmed
// text has at least one and fewer than cfg.MaxWords words.
func Classify(spans []doctree.Span, bodySize int, cfg Config) Candidates {
	cfg = cfg.withDefaults()
	out := make(Candidates)
	for _, s := range spans {
		if s.FontSize <= bodySize {
			continue
		}
		text := strings.TrimSpace(s.Text)
		n := wordCount(text)
		if n < 1 || n >= cfg.MaxWords {
			continue
		}
		c := Candidate{Text: text, Page: s.Page}
		if out.contains(s.FontSize, c) {
			continue
		}
		out[s.FontSize] = append(out[s.FontSize], c)
	}
	return out
}

func (c Candidates) contains(size int, cand Candidate) bool {
	for _, existing := range c[size] {
		if existing == cand {
			return true
		}
	}
	return false
}

// Sizes returns the distinct candidate sizes, largest first.
func (c Candidates) Sizes() []int {
	sizes := make([]int, 0, len(c))
	for size := range c {
		sizes = append(sizes, size)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	return sizes
}
