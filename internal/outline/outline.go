package outline

import (
	"sort"

	"github.com/dgallion1/docsift/internal/doctree"
)

// Config controls heading detection.
type Config struct {
	MaxWords        int // Candidates must have fewer words than this.
	TitleMaxPage    int // Last page the title may appear on.
	MaxLevels       int // Deepest heading level emitted.
	DefaultBodySize int // Body size for documents without words.
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MaxWords:        20,
		TitleMaxPage:    2,
		MaxLevels:       3,
		DefaultBodySize: DefaultBodySize,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxWords <= 0 {
		c.MaxWords = d.MaxWords
	}
	if c.TitleMaxPage <= 0 {
		c.TitleMaxPage = d.TitleMaxPage
	}
	if c.MaxLevels <= 0 {
		c.MaxLevels = d.MaxLevels
	}
	if c.DefaultBodySize <= 0 {
		c.DefaultBodySize = d.DefaultBodySize
	}
	return c
}

// Entry is one heading in the outline.
type Entry struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// Result is the outline of a single document.
type Result struct {
	Title   string  `json:"title"`
	Outline []Entry `json:"outline"`
}

// Empty returns the result used for documents with no usable structure.
func Empty() Result {
	return Result{Outline: []Entry{}}
}

// SelectTitle returns the first H1 candidate on an early page, or "".
func SelectTitle(c Candidates, lv Levels, cfg Config) string {
	cfg = cfg.withDefaults()
	size, ok := lv.Size(H1)
	if !ok {
		return ""
	}
	for _, cand := range c[size] {
		if cand.Page <= cfg.TitleMaxPage {
			return cand.Text
		}
	}
	return ""
}

// Build infers the title and heading outline of a document from its spans.
func Build(spans []doctree.Span, cfg Config) Result {
	cfg = cfg.withDefaults()

	body := bodySize(spans, cfg.DefaultBodySize)
	cands := Classify(spans, body, cfg)
	levels := AssignLevels(cands, cfg)
	title := SelectTitle(cands, levels, cfg)

	entries := []Entry{}
	for i, size := range levels {
		level := Level(i + 1)
		for _, cand := range cands[size] {
			if cand.Text == title {
				continue
			}
			entries = append(entries, Entry{Level: level, Text: cand.Text, Page: cand.Page})
		}
	}
	sortEntries(entries)

	return Result{Title: title, Outline: entries}
}

// sortEntries orders by page, then by level with H1 first.
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Page != entries[j].Page {
			return entries[i].Page < entries[j].Page
		}
		return entries[i].Level < entries[j].Level
	})
}
