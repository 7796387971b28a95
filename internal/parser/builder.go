package parser

import (
	"strings"

	"github.com/dgallion1/docsift/internal/doctree"
)

// Rendered sizes for formats that carry structure instead of font data.
// HTML and Markdown use browser defaults for a 16px body.
const (
	plainBodySize = 12
	htmlBodySize  = 16
)

var htmlHeadingSizes = [7]int{0, 32, 24, 19, 16, 13, 11}

func htmlHeadingSize(level int) int {
	if level < 1 || level > 6 {
		return htmlBodySize
	}
	return htmlHeadingSizes[level]
}

// builder accumulates spans and blocks for one document. Block indexes
// count every block seen on a page, empty ones included.
type builder struct {
	doc  *doctree.Document
	next map[int]int
}

func newBuilder(filename string) *builder {
	return &builder{
		doc:  &doctree.Document{Name: DocumentName(filename)},
		next: make(map[int]int),
	}
}

func (b *builder) span(page int, text string, size int) {
	b.touch(page)
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.doc.Spans = append(b.doc.Spans, doctree.Span{Text: text, FontSize: size, Page: page})
}

func (b *builder) block(page int, text string, box doctree.Rect) {
	b.touch(page)
	idx := b.next[page]
	b.next[page] = idx + 1
	b.doc.Blocks = append(b.doc.Blocks, doctree.Block{
		Text:  strings.TrimSpace(text),
		Page:  page,
		Index: idx,
		Box:   box,
	})
}

// paragraph records text as both a styled span and a block.
func (b *builder) paragraph(page int, text string, size int) {
	if strings.TrimSpace(text) == "" {
		return
	}
	b.span(page, text, size)
	b.block(page, text, doctree.Rect{})
}

func (b *builder) touch(page int) {
	if page > b.doc.PageCount {
		b.doc.PageCount = page
	}
}

func (b *builder) done() *doctree.Document {
	return b.doc
}
