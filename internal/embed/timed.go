package embed

import (
	"context"
	"log/slog"
	"time"
)

// Timed records the latency of every Embed call into Stats.
type Timed struct {
	Provider
	Stats  *Stats
	Logger *slog.Logger
}

func (t *Timed) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vecs, err := t.Provider.Embed(ctx, texts)
	elapsed := time.Since(start)
	if t.Stats != nil {
		t.Stats.Record(elapsed, len(texts), err != nil)
	}
	if t.Logger != nil {
		if err != nil {
			t.Logger.Warn("embed failed", "provider", t.Provider.Name(), "texts", len(texts), "duration_ms", elapsed.Milliseconds(), "error", err)
		} else {
			t.Logger.Debug("embed", "provider", t.Provider.Name(), "texts", len(texts), "duration_ms", elapsed.Milliseconds())
		}
	}
	return vecs, err
}
