package parser

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dgallion1/docsift/internal/doctree"
	"github.com/fumiama/go-docx"
)

// Word's default sizes in points for the built-in paragraph styles.
var docxStyleSizes = map[string]int{
	"title":    28,
	"subtitle": 15,
	"heading1": 16,
	"heading2": 13,
	"heading3": 12,
	"heading4": 11,
	"heading5": 11,
	"heading6": 11,
}

const docxBodySize = 11

// DOCXParser handles .docx files. Explicit run sizes win over style
// defaults; the document is treated as a single page.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// go-docx needs a ReaderAt+size, so write to temp file.
	tmp, err := os.CreateTemp("", "docsift-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	b := newBuilder(filename)
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text, runSize := docxParagraphText(para)
		fontSize := runSize
		if fontSize == 0 {
			fontSize = docxStyleSize(para)
		}
		b.paragraph(1, text, fontSize)
	}
	return b.done(), nil
}

func docxStyleSize(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return docxBodySize
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if s, ok := docxStyleSizes[style]; ok {
		return s
	}
	return docxBodySize
}

// docxParagraphText returns the paragraph text and the largest explicit
// run size in points, or 0 when no run sets one.
func docxParagraphText(para *docx.Paragraph) (string, int) {
	var buf strings.Builder
	largest := 0
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		hasText := false
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
				hasText = hasText || strings.TrimSpace(t.Text) != ""
			}
		}
		if hasText && run.RunProperties != nil && run.RunProperties.Size != nil {
			// w:sz is in half points.
			if half, err := strconv.Atoi(run.RunProperties.Size.Val); err == nil {
				largest = max(largest, doctree.RoundSize(float64(half)/2))
			}
		}
	}
	return strings.TrimSpace(buf.String()), largest
}
