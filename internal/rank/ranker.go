package rank

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dgallion1/docsift/internal/doctree"
	"github.com/dgallion1/docsift/internal/embed"
)

// DefaultFloor is the minimum cosine similarity a chunk needs to be kept.
const DefaultFloor = 0.1

// Section is a chunk that survived the relevance floor.
type Section struct {
	Document       string  `json:"document"`
	PageNumber     int     `json:"page_number"`
	SectionTitle   string  `json:"section_title"`
	ImportanceRank int     `json:"importance_rank"`
	Score          float64 `json:"-"`
}

// Ranker scores chunks against a query with an embedding provider.
type Ranker struct {
	Provider embed.Provider
	Floor    float64
	Logger   *slog.Logger
}

// Rank embeds the query and every chunk, then returns the chunks whose
// similarity is at least the floor, most relevant first. Provider errors
// are returned unchanged in meaning; nothing is retried.
func (r *Ranker) Rank(ctx context.Context, query string, chunks []doctree.Chunk) ([]Section, error) {
	if len(chunks) == 0 {
		return []Section{}, nil
	}

	qv, err := r.Provider.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(qv) != 1 {
		return nil, fmt.Errorf("embed query: expected 1 vector, got %d", len(qv))
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vecs, err := r.Provider.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vecs) != len(chunks) {
		return nil, fmt.Errorf("embed chunks: expected %d vectors, got %d", len(chunks), len(vecs))
	}

	scores := make([]float64, len(chunks))
	for i, v := range vecs {
		s, err := embed.Cosine(qv[0], v)
		if err != nil {
			return nil, fmt.Errorf("score chunk %d: %w", i, err)
		}
		scores[i] = s
	}

	sections := RankScores(chunks, scores, r.Floor)
	if r.Logger != nil {
		r.Logger.Info("ranked chunks",
			"provider", r.Provider.Name(),
			"chunks", len(chunks),
			"kept", len(sections),
			"floor", r.Floor,
		)
	}
	return sections, nil
}

// RankScores sorts chunks by score, highest first, keeping input order for
// equal scores, drops those below floor and numbers the rest from 1.
// scores[i] belongs to chunks[i].
func RankScores(chunks []doctree.Chunk, scores []float64, floor float64) []Section {
	n := min(len(chunks), len(scores))
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	out := make([]Section, 0, n)
	for _, i := range idx {
		if scores[i] < floor {
			continue
		}
		c := chunks[i]
		out = append(out, Section{
			Document:       c.Document,
			PageNumber:     c.Page,
			SectionTitle:   c.Title,
			ImportanceRank: len(out) + 1,
			Score:          scores[i],
		})
	}
	return out
}
