package doctree

import "math"

// Document is everything an extractor yields for one input file.
type Document struct {
	Name      string  // Owning identifier, usually the base filename
	PageCount int     // Number of pages the extractor saw
	Spans     []Span  // Styled runs, in reading order
	Blocks    []Block // Coarse text regions, in reading order
}

// Span is one run of text rendered at a uniform font size.
type Span struct {
	Text     string
	FontSize int // Rendered size rounded to the nearest integer
	Page     int // 1-based
}

// Rect is an axis-aligned bounding region in page units.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Block is a contiguous region of body text on one page.
type Block struct {
	Text  string
	Page  int // 1-based
	Index int // Position in the page's block list, empty blocks included
	Box   Rect
}

// Chunk is a page-scoped unit of retrieval.
type Chunk struct {
	Title    string
	Text     string
	Page     int
	Document string
}

// RoundSize rounds a rendered font size to the integer unit used for
// size statistics. Halves round to even, so 10.5 and 11.5 both land on
// an even size.
func RoundSize(size float64) int {
	return int(math.RoundToEven(size))
}

// Union returns the smallest Rect covering both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, o.X0),
		Y0: math.Min(r.Y0, o.Y0),
		X1: math.Max(r.X1, o.X1),
		Y1: math.Max(r.Y1, o.Y1),
	}
}
