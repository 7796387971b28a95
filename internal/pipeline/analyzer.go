package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docsift/internal/chunker"
	"github.com/dgallion1/docsift/internal/config"
	"github.com/dgallion1/docsift/internal/doctree"
	"github.com/dgallion1/docsift/internal/embed"
	"github.com/dgallion1/docsift/internal/outline"
	"github.com/dgallion1/docsift/internal/parser"
	"github.com/dgallion1/docsift/internal/rank"
)

// Analyzer runs persona driven ranking over a set of documents.
type Analyzer struct {
	Embedder      *embed.Lazy
	Parser        parser.Options
	Outline       outline.Config
	HeadingTitles bool
	Floor         float64
	MaxConcurrent int
	Log           *slog.Logger

	// Now stamps results; time.Now when nil.
	Now func() time.Time
}

// NewAnalyzer wires an Analyzer from configuration.
func NewAnalyzer(cfg config.Config, embedder *embed.Lazy, log *slog.Logger) *Analyzer {
	return &Analyzer{
		Embedder:      embedder,
		Parser:        parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext, Logger: log},
		Outline:       outline.DefaultConfig(),
		HeadingTitles: cfg.HeadingTitles,
		Floor:         cfg.RelevanceFloor,
		MaxConcurrent: cfg.MaxConcurrentParse,
		Log:           log,
	}
}

// tracker receives progress while a run advances. *Job implements it.
type tracker interface {
	SetStatus(status JobStatus, phase string)
	AddError(msg string)
	SetDocuments(total int)
	IncrDocumentsFailed()
	SetChunks(n int)
	SetSections(n int)
}

type nopTracker struct{}

func (nopTracker) SetStatus(JobStatus, string) {}
func (nopTracker) AddError(string)             {}
func (nopTracker) SetDocuments(int)            {}
func (nopTracker) IncrDocumentsFailed()        {}
func (nopTracker) SetChunks(int)               {}
func (nopTracker) SetSections(int)             {}

// Run parses, chunks and ranks inputs. Unreadable documents contribute no
// chunks; an embedding failure fails the whole run.
func (a *Analyzer) Run(ctx context.Context, inputs []Input, persona, job string) (rank.RunResult, error) {
	return a.run(ctx, inputs, persona, job, nopTracker{})
}

func (a *Analyzer) run(ctx context.Context, inputs []Input, persona, job string, t tracker) (rank.RunResult, error) {
	query, err := rank.ComposeQuery(persona, job)
	if err != nil {
		return rank.RunResult{}, err
	}

	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = parser.DocumentName(in.Name)
	}
	t.SetDocuments(len(inputs))

	t.SetStatus(StatusParsing, "parsing")
	parsed, errs := parseAll(ctx, inputs, a.Parser, a.MaxConcurrent)
	docs := make([]*doctree.Document, 0, len(parsed))
	for i, d := range parsed {
		if errs[i] != nil {
			a.Log.Warn("document open failed", "document", names[i], "error", errs[i])
			t.AddError(fmt.Sprintf("%s: %s", names[i], errs[i]))
			t.IncrDocumentsFailed()
			continue
		}
		docs = append(docs, d)
	}
	if err := ctx.Err(); err != nil {
		return rank.RunResult{}, err
	}

	t.SetStatus(StatusChunking, "chunking")
	chunks := chunker.ChunkAll(docs, a.chunkConfig)
	t.SetChunks(len(chunks))
	a.Log.Info("chunked documents", "documents", len(docs), "chunks", len(chunks))

	t.SetStatus(StatusRanking, "ranking")
	sections := []rank.Section{}
	if len(chunks) > 0 {
		provider, err := a.Embedder.Get(ctx)
		if err != nil {
			return rank.RunResult{}, fmt.Errorf("embedding provider: %w", err)
		}
		r := &rank.Ranker{Provider: provider, Floor: a.Floor, Logger: a.Log}
		sections, err = r.Rank(ctx, query, chunks)
		if err != nil {
			return rank.RunResult{}, err
		}
	}
	t.SetSections(len(sections))

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	return rank.Assemble(names, persona, job, sections, now()), nil
}

// chunkConfig titles chunks after outline headings when enabled.
func (a *Analyzer) chunkConfig(doc *doctree.Document) chunker.Config {
	cfg := chunker.DefaultConfig()
	if !a.HeadingTitles {
		return cfg
	}
	cfg.HeadingTitles = true
	cfg.Headings = outline.Build(doc.Spans, a.Outline).Outline
	return cfg
}
