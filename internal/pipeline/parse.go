package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dgallion1/docsift/internal/doctree"
	"github.com/dgallion1/docsift/internal/parser"
)

// Input is one document handed to a run.
type Input struct {
	Name string
	Data []byte
}

// parseDocument picks a parser by extension and runs it. Parser panics
// are returned as errors so one document cannot take down a batch.
func parseDocument(r io.Reader, name string, opts parser.Options) (doc *doctree.Document, err error) {
	p, err := parser.ForFile(name, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("parser panic: %v", rec)
		}
	}()
	doc, err = p.Parse(r, name)
	if err != nil {
		return nil, err
	}
	doc.Name = parser.DocumentName(name)
	return doc, nil
}

// parseAll parses inputs with at most limit in flight. Failed documents
// are nil in the result and their error is at the same index in errs.
func parseAll(ctx context.Context, inputs []Input, opts parser.Options, limit int) (docs []*doctree.Document, errs []error) {
	if limit <= 0 {
		limit = 1
	}
	docs = make([]*doctree.Document, len(inputs))
	errs = make([]error, len(inputs))

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, in Input) {
			defer wg.Done()
			defer func() { <-sem }()
			docs[i], errs[i] = parseDocument(bytes.NewReader(in.Data), in.Name, opts)
		}(i, in)
	}
	wg.Wait()
	return docs, errs
}

// ListDir returns the supported files directly inside dir, sorted by name.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !parser.IsSupportedExtension(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadDir reads every supported file in dir into memory.
func LoadDir(dir string) ([]Input, error) {
	paths, err := ListDir(dir)
	if err != nil {
		return nil, err
	}
	inputs := make([]Input, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(p), err)
		}
		inputs = append(inputs, Input{Name: filepath.Base(p), Data: data})
	}
	return inputs, nil
}
