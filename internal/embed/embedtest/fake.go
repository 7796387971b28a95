// Package embedtest provides an in-memory embedding provider for tests.
package embedtest

import (
	"context"
	"sync"
)

// Fake returns fixed vectors per input text. Unknown texts get Default.
type Fake struct {
	Vectors map[string][]float32
	Default []float32
	Err     error

	mu     sync.Mutex
	calls  int
	inputs [][]string
	closed bool
}

func (f *Fake) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	f.inputs = append(f.inputs, append([]string(nil), texts...))
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := f.Vectors[t]; ok {
			out[i] = v
			continue
		}
		out[i] = f.Default
	}
	return out, nil
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Calls reports how many times Embed ran.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Inputs returns the texts passed to each Embed call.
func (f *Fake) Inputs() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inputs
}

func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
