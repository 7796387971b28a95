package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dgallion1/docsift/internal/config"
	"github.com/dgallion1/docsift/internal/outline"
	"github.com/dgallion1/docsift/internal/parser"
)

// Outliner turns documents into outlines. A document that cannot be read
// yields an empty outline and a warning, never an error.
type Outliner struct {
	Parser        parser.Options
	Outline       outline.Config
	MaxConcurrent int
	Log           *slog.Logger
}

// NewOutliner wires an Outliner from configuration.
func NewOutliner(cfg config.Config, log *slog.Logger) *Outliner {
	return &Outliner{
		Parser:        parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext, Logger: log},
		Outline:       outline.DefaultConfig(),
		MaxConcurrent: cfg.MaxConcurrentParse,
		Log:           log,
	}
}

func (o *Outliner) OutlineReader(r io.Reader, name string) outline.Result {
	doc, err := parseDocument(r, name, o.Parser)
	if err != nil {
		o.Log.Warn("document open failed", "document", name, "error", err)
		return outline.Empty()
	}
	res := outline.Build(doc.Spans, o.Outline)
	o.Log.Info("outlined document",
		"document", doc.Name,
		"pages", doc.PageCount,
		"spans", len(doc.Spans),
		"headings", len(res.Outline),
	)
	return res
}

func (o *Outliner) OutlineFile(path string) outline.Result {
	f, err := os.Open(path)
	if err != nil {
		o.Log.Warn("document open failed", "document", filepath.Base(path), "error", err)
		return outline.Empty()
	}
	defer f.Close()
	return o.OutlineReader(f, filepath.Base(path))
}

// OutlineAll outlines paths in parallel. Results are in input order.
func (o *Outliner) OutlineAll(ctx context.Context, paths []string) []outline.Result {
	limit := o.MaxConcurrent
	if limit <= 0 {
		limit = 1
	}
	out := make([]outline.Result, len(paths))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, p := range paths {
		if ctx.Err() != nil {
			out[i] = outline.Empty()
			continue
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = o.OutlineFile(p)
		}(i, p)
	}
	wg.Wait()
	return out
}
