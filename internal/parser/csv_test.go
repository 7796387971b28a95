package parser

import (
	"fmt"
	"strings"
	"testing"
)

func TestCSVParser_Batches(t *testing.T) {
	var in strings.Builder
	in.WriteString("name,amount\n")
	for i := range 45 {
		fmt.Fprintf(&in, "item%d,%d\n", i, i*10)
	}
	doc, err := (&CSVParser{}).Parse(strings.NewReader(in.String()), "ledger.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(doc.Blocks))
	}
	first := doc.Blocks[0].Text
	if !strings.HasPrefix(first, "Headers: name, amount") {
		t.Errorf("expected header prefix, got %q", first)
	}
	if !strings.Contains(first, "name: item0, amount: 0") {
		t.Errorf("expected labelled row, got %q", first)
	}
	if strings.Count(doc.Blocks[2].Text, "name: ") != 5 {
		t.Errorf("expected 5 rows in last block, got %q", doc.Blocks[2].Text)
	}
}

func TestCSVParser_HeaderOnly(t *testing.T) {
	doc, err := (&CSVParser{}).Parse(strings.NewReader("a,b,c\n"), "h.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Blocks) != 1 || doc.Blocks[0].Text != "a, b, c" {
		t.Errorf("expected single header block, got %+v", doc.Blocks)
	}
}

func TestCSVParser_RaggedRows(t *testing.T) {
	doc, err := (&CSVParser{}).Parse(strings.NewReader("a,b\n1,2,3\n4\n"), "r.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(doc.Blocks))
	}
	if !strings.Contains(doc.Blocks[0].Text, "a: 1, b: 2, 3") {
		t.Errorf("expected extra cell kept, got %q", doc.Blocks[0].Text)
	}
}
