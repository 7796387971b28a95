package parser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/dgallion1/docsift/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrNoPages is returned for a PDF that validates but has no pages.
var ErrNoPages = errors.New("pdf has no pages")

// Layout thresholds, as fractions of the font size.
const (
	lineTolerance = 0.5 // baselines closer than this share a line
	wordGap       = 0.2 // horizontal gap that inserts a space
	blockGap      = 1.5 // baseline gap that starts a new block
)

// PDFParser handles PDF files. Glyph positions and sizes come from
// ledongthuc/pdf; pdfcpu validates the file first so a broken PDF fails
// loudly instead of yielding an empty document. With FallbackPdftotext,
// unreadable files are retried through pdftotext for blocks only. A page
// whose content cannot be decoded is skipped.
type PDFParser struct {
	FallbackPdftotext bool
	Logger            *slog.Logger
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// Both libraries want a seekable file.
	tmp, err := os.CreateTemp("", "docsift-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	doc, err := p.extract(tmpPath, filename)
	if err != nil && p.FallbackPdftotext {
		if fb, fbErr := extractPdftotext(tmpPath, filename); fbErr == nil {
			return fb, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf: %w", err)
	}
	return doc, nil
}

func pdfPageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(f, conf)
	if err != nil {
		return 0, fmt.Errorf("validate pdf: %w", err)
	}
	if n == 0 {
		return 0, ErrNoPages
	}
	return n, nil
}

func (p *PDFParser) extract(path, filename string) (*doctree.Document, error) {
	pages, err := pdfPageCount(path)
	if err != nil {
		return nil, err
	}

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	b := newBuilder(filename)
	b.touch(pages)
	for i := 1; i <= reader.NumPage(); i++ {
		glyphs, err := pageGlyphs(reader, i)
		if err != nil {
			if p.Logger != nil {
				p.Logger.Warn("skipping pdf page", "document", b.doc.Name, "page", i, "error", err)
			}
			continue
		}
		layoutPage(b, i, glyphs)
	}
	return b.done(), nil
}

// pageGlyphs reads the positioned text of one page. The content stream
// decoder panics on some malformed input, which is reported as an error.
func pageGlyphs(reader *pdflib.Reader, num int) (glyphs []pdflib.Text, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("decode content: %v", rec)
		}
	}()
	page := reader.Page(num)
	if page.V.IsNull() {
		return nil, nil
	}
	return page.Content().Text, nil
}

type pdfLine struct {
	y      float64
	size   float64
	glyphs []pdflib.Text
}

// layoutPage groups glyphs into lines, lines into blocks, and records one
// span per run of equal rounded size within a line.
func layoutPage(b *builder, page int, glyphs []pdflib.Text) {
	lines := groupLines(glyphs)

	var (
		blockText strings.Builder
		box       doctree.Rect
		open      bool
		prev      *pdfLine
	)
	flush := func() {
		if open {
			b.block(page, blockText.String(), box)
		}
		blockText.Reset()
		open = false
	}

	for i := range lines {
		ln := &lines[i]
		text, lineBox := emitLineSpans(b, page, ln)
		if text == "" {
			continue
		}
		if prev != nil && prev.y-ln.y > blockGap*math.Max(prev.size, ln.size) {
			flush()
		}
		if open {
			blockText.WriteString("\n")
			box = box.Union(lineBox)
		} else {
			box = lineBox
			open = true
		}
		blockText.WriteString(text)
		prev = ln
	}
	flush()
}

// groupLines sorts glyphs top to bottom and clusters them by baseline.
func groupLines(glyphs []pdflib.Text) []pdfLine {
	gs := make([]pdflib.Text, 0, len(glyphs))
	for _, g := range glyphs {
		if g.S != "" {
			gs = append(gs, g)
		}
	}
	sort.SliceStable(gs, func(i, j int) bool {
		if gs[i].Y != gs[j].Y {
			return gs[i].Y > gs[j].Y
		}
		return gs[i].X < gs[j].X
	})

	var lines []pdfLine
	for _, g := range gs {
		if n := len(lines); n > 0 {
			ln := &lines[n-1]
			if math.Abs(ln.y-g.Y) <= lineTolerance*math.Max(ln.size, g.FontSize) {
				ln.glyphs = append(ln.glyphs, g)
				ln.size = math.Max(ln.size, g.FontSize)
				continue
			}
		}
		lines = append(lines, pdfLine{y: g.Y, size: g.FontSize, glyphs: []pdflib.Text{g}})
	}
	for i := range lines {
		gl := lines[i].glyphs
		sort.SliceStable(gl, func(a, b int) bool { return gl[a].X < gl[b].X })
	}
	return lines
}

// emitLineSpans records the size runs of a line and returns its text and
// bounding box.
func emitLineSpans(b *builder, page int, ln *pdfLine) (string, doctree.Rect) {
	var (
		line    strings.Builder
		run     strings.Builder
		runSize int
		lastEnd = math.Inf(-1)
		box     = doctree.Rect{X0: math.Inf(1), Y0: ln.y, X1: math.Inf(-1), Y1: ln.y + ln.size}
	)
	flushRun := func() {
		b.span(page, run.String(), runSize)
		run.Reset()
	}

	for i, g := range ln.glyphs {
		size := doctree.RoundSize(g.FontSize)
		if i > 0 && size != runSize {
			flushRun()
		}
		runSize = size

		if i > 0 && g.X-lastEnd > wordGap*g.FontSize && !strings.HasPrefix(g.S, " ") && !strings.HasSuffix(line.String(), " ") {
			line.WriteByte(' ')
			run.WriteByte(' ')
		}
		line.WriteString(g.S)
		run.WriteString(g.S)
		lastEnd = g.X + g.W
		box.X0 = math.Min(box.X0, g.X)
		box.X1 = math.Max(box.X1, g.X+g.W)
	}
	flushRun()

	text := strings.Join(strings.Fields(line.String()), " ")
	return text, box
}

func extractPdftotext(path, filename string) (*doctree.Document, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	b := newBuilder(filename)
	err = splitText(strings.NewReader(string(out)), func(page int, para string) {
		b.block(page, para, doctree.Rect{})
	})
	if err != nil {
		return nil, err
	}
	return b.done(), nil
}
