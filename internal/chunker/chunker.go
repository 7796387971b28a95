package chunker

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docsift/internal/doctree"
	"github.com/dgallion1/docsift/internal/outline"
)

// Config controls chunking behavior.
type Config struct {
	// HeadingTitles titles chunks with the outline heading that opened
	// their section instead of the synthetic "Page N, Block I" label.
	HeadingTitles bool
	// Headings is the document outline used when HeadingTitles is set.
	Headings []outline.Entry
}

// DefaultConfig returns block-per-chunk behavior with synthetic titles.
func DefaultConfig() Config {
	return Config{}
}

// ChunkDocument emits one chunk per non-empty block of doc, in reading order.
func ChunkDocument(doc *doctree.Document, cfg Config) []doctree.Chunk {
	if doc == nil {
		return nil
	}

	var chunks []doctree.Chunk
	current := ""
	for _, b := range doc.Blocks {
		text := strings.TrimSpace(b.Text)
		if text == "" {
			continue
		}
		if cfg.HeadingTitles {
			if h, ok := openingHeading(cfg.Headings, b.Page, text); ok {
				current = h
			}
		}

		title := current
		if title == "" {
			title = SyntheticTitle(b.Page, b.Index)
		}
		chunks = append(chunks, doctree.Chunk{
			Title:    title,
			Text:     text,
			Page:     b.Page,
			Document: doc.Name,
		})
	}
	return chunks
}

// ChunkAll chunks every document and concatenates the results in input
// order. The index of a chunk in the returned slice is its identity for
// ranking.
func ChunkAll(docs []*doctree.Document, cfg func(*doctree.Document) Config) []doctree.Chunk {
	var all []doctree.Chunk
	for _, d := range docs {
		c := DefaultConfig()
		if cfg != nil {
			c = cfg(d)
		}
		all = append(all, ChunkDocument(d, c)...)
	}
	return all
}

// SyntheticTitle is the placeholder label for a chunk without a heading.
func SyntheticTitle(page, index int) string {
	return fmt.Sprintf("Page %d, Block %d", page, index)
}

// openingHeading reports whether a block on page starts with one of the
// headings found on that page. The longest match wins so "Results" does not
// shadow "Results by Region".
func openingHeading(headings []outline.Entry, page int, text string) (string, bool) {
	best := ""
	for _, h := range headings {
		if h.Page != page || h.Text == "" {
			continue
		}
		if strings.HasPrefix(text, h.Text) && len(h.Text) > len(best) {
			best = h.Text
		}
	}
	return best, best != ""
}
