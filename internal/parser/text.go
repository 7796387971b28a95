package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docsift/internal/doctree"
)

// TextParser handles plain text files. Form feeds separate pages and
// blank lines separate blocks. All text is body sized.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	b := newBuilder(filename)
	if err := splitText(r, func(page int, para string) {
		b.paragraph(page, para, plainBodySize)
	}); err != nil {
		return nil, err
	}
	return b.done(), nil
}

// splitText calls emit for each paragraph with its 1-based page.
func splitText(r io.Reader, emit func(page int, para string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	page := 1
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			emit(page, current.String())
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		for {
			before, after, found := strings.Cut(line, "\f")
			appendLine(&current, before, flush)
			if !found {
				break
			}
			flush()
			page++
			line = after
		}
	}
	flush()
	return scanner.Err()
}

func appendLine(current *strings.Builder, line string, flush func()) {
	if strings.TrimSpace(line) == "" {
		flush()
		return
	}
	if current.Len() > 0 {
		current.WriteString("\n")
	}
	current.WriteString(line)
}
