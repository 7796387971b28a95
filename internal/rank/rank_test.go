package rank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docsift/internal/doctree"
	"github.com/dgallion1/docsift/internal/embed"
	"github.com/dgallion1/docsift/internal/embed/embedtest"
)

func TestComposeQuery(t *testing.T) {
	q, err := ComposeQuery("Analyst", "find revenue")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q != "Analyst: find revenue" {
		t.Errorf("expected %q, got %q", "Analyst: find revenue", q)
	}

	if _, err := ComposeQuery("  ", "find revenue"); !errors.Is(err, ErrEmptyPersona) {
		t.Errorf("expected ErrEmptyPersona, got %v", err)
	}
	if _, err := ComposeQuery("Analyst", ""); !errors.Is(err, ErrEmptyJob) {
		t.Errorf("expected ErrEmptyJob, got %v", err)
	}
}

func TestComposeQueryKeepsInputVerbatim(t *testing.T) {
	q, _ := ComposeQuery(" HR lead", "Plan onboarding ")
	if q != " HR lead: Plan onboarding " {
		t.Errorf("expected untouched inputs, got %q", q)
	}
}

func chunks(n int) []doctree.Chunk {
	out := make([]doctree.Chunk, n)
	for i := range out {
		out[i] = doctree.Chunk{
			Title:    fmt.Sprintf("Page %d, Block 0", i+1),
			Text:     fmt.Sprintf("chunk %d", i),
			Page:     i + 1,
			Document: "report.pdf",
		}
	}
	return out
}

func TestRankScoresFloorAndOrder(t *testing.T) {
	cs := chunks(3)
	got := RankScores(cs, []float64{0.05, 0.4, 0.12}, DefaultFloor)
	if len(got) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(got))
	}
	if got[0].PageNumber != 2 || got[0].ImportanceRank != 1 {
		t.Errorf("expected chunk 1 at rank 1, got page %d rank %d", got[0].PageNumber, got[0].ImportanceRank)
	}
	if got[1].PageNumber != 3 || got[1].ImportanceRank != 2 {
		t.Errorf("expected chunk 2 at rank 2, got page %d rank %d", got[1].PageNumber, got[1].ImportanceRank)
	}
}

func TestRankScoresKeepsScoreAtFloor(t *testing.T) {
	got := RankScores(chunks(2), []float64{0.1, 0.0999}, DefaultFloor)
	if len(got) != 1 || got[0].PageNumber != 1 {
		t.Fatalf("expected only the chunk scoring exactly the floor, got %+v", got)
	}
}

func TestRankScoresStableForTies(t *testing.T) {
	cs := chunks(5)
	scores := []float64{0.5, 0.9, 0.5, 0.05, 0.5}
	got := RankScores(cs, scores, DefaultFloor)

	wantPages := []int{2, 1, 3, 5}
	if len(got) != len(wantPages) {
		t.Fatalf("expected %d sections, got %d", len(wantPages), len(got))
	}
	for i, s := range got {
		if s.PageNumber != wantPages[i] {
			t.Errorf("position %d: expected page %d, got %d", i, wantPages[i], s.PageNumber)
		}
		if s.ImportanceRank != i+1 {
			t.Errorf("position %d: expected rank %d, got %d", i, i+1, s.ImportanceRank)
		}
	}

	// Dropping the floor must not reorder survivors.
	all := RankScores(cs, scores, math.Inf(-1))
	var filtered []int
	for _, s := range all {
		if s.Score >= DefaultFloor {
			filtered = append(filtered, s.PageNumber)
		}
	}
	for i := range filtered {
		if filtered[i] != wantPages[i] {
			t.Errorf("unfiltered order differs at %d: expected page %d, got %d", i, wantPages[i], filtered[i])
		}
	}
}

// unit returns a 2-d vector whose cosine with [1, 0] is s.
func unit(s float64) []float32 {
	return []float32{float32(s), float32(math.Sqrt(1 - s*s))}
}

func TestRankerScenario(t *testing.T) {
	cs := chunks(3)
	fake := &embedtest.Fake{Vectors: map[string][]float32{
		"Analyst: find revenue": {1, 0},
		cs[0].Text:              unit(0.05),
		cs[1].Text:              unit(0.4),
		cs[2].Text:              unit(0.12),
	}}
	r := &Ranker{Provider: fake, Floor: DefaultFloor}

	got, err := r.Rank(context.Background(), "Analyst: find revenue", cs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(got))
	}
	if got[0].SectionTitle != cs[1].Title || got[1].SectionTitle != cs[2].Title {
		t.Errorf("unexpected order: %q, %q", got[0].SectionTitle, got[1].SectionTitle)
	}

	inputs := fake.Inputs()
	if len(inputs) != 2 {
		t.Fatalf("expected 2 embed calls, got %d", len(inputs))
	}
	if len(inputs[0]) != 1 || inputs[0][0] != "Analyst: find revenue" {
		t.Errorf("expected query embedded alone first, got %v", inputs[0])
	}
	for i, text := range inputs[1] {
		if text != cs[i].Text {
			t.Errorf("chunk %d embedded out of order: %q", i, text)
		}
	}
}

func TestRankerNoChunksSkipsProvider(t *testing.T) {
	fake := &embedtest.Fake{}
	r := &Ranker{Provider: fake, Floor: DefaultFloor}
	got, err := r.Rank(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no sections, got %d", len(got))
	}
	if fake.Calls() != 0 {
		t.Errorf("expected no provider calls, got %d", fake.Calls())
	}
}

func TestRankerPropagatesProviderError(t *testing.T) {
	down := errors.New("provider down")
	r := &Ranker{Provider: &embedtest.Fake{Err: down}, Floor: DefaultFloor}
	_, err := r.Rank(context.Background(), "q", chunks(2))
	if !errors.Is(err, down) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestRankerDimensionMismatch(t *testing.T) {
	cs := chunks(1)
	fake := &embedtest.Fake{Vectors: map[string][]float32{
		"q":        {1, 0},
		cs[0].Text: {1, 0, 0},
	}}
	r := &Ranker{Provider: fake, Floor: DefaultFloor}
	if _, err := r.Rank(context.Background(), "q", cs); !errors.Is(err, embed.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestAssemble(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 123456789, time.FixedZone("X", 3600))
	sections := RankScores(chunks(3), []float64{0.3, 0.9, 0.2}, DefaultFloor)

	res := Assemble([]string{"report.pdf"}, "Analyst", "find revenue", sections, now)

	if res.Metadata.ProcessingTimestamp != "2024-03-09T13:05:07.123456Z" {
		t.Errorf("unexpected timestamp %q", res.Metadata.ProcessingTimestamp)
	}
	if len(res.ExtractedSections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(res.ExtractedSections))
	}
	if len(res.SubSectionAnalysis) != 1 {
		t.Fatalf("expected 1 subsection entry, got %d", len(res.SubSectionAnalysis))
	}
	sub := res.SubSectionAnalysis[0]
	if sub.PageNumber != 2 || sub.Document != "report.pdf" {
		t.Errorf("expected subsection for top section, got %+v", sub)
	}
	if sub.Status != SubsectionNotImplemented {
		t.Errorf("expected not_implemented status, got %q", sub.Status)
	}
}

func TestAssembleEmptyRun(t *testing.T) {
	res := Assemble(nil, "Analyst", "find revenue", nil, time.Now())

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{
		`"input_documents":[]`,
		`"extracted_sections":[]`,
		`"sub_section_analysis":[]`,
		`"persona":"Analyst"`,
		`"job_to_be_done":"find revenue"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}
}

func TestSectionJSONOmitsScore(t *testing.T) {
	data, err := json.Marshal(Section{Document: "a.pdf", PageNumber: 1, SectionTitle: "Page 1, Block 0", ImportanceRank: 1, Score: 0.7})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"document":"a.pdf","page_number":1,"section_title":"Page 1, Block 0","importance_rank":1}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}
