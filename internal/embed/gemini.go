package embed

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	genai "google.golang.org/genai"
)

const geminiDefaultModel = "text-embedding-004"

// Gemini embeds text with the Gemini API.
type Gemini struct {
	client    *genai.Client
	model     string
	batchSize int
}

func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	model := cfg.Model
	if model == "" {
		model = geminiDefaultModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.GeminiAPIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	// The batch endpoint accepts at most 100 inputs.
	batch := cfg.BatchSize
	if batch > 100 {
		batch = 100
	}
	return &Gemini{client: c, model: model, batchSize: batch}, nil
}

func (g *Gemini) Name() string { return "gemini/" + g.model }

func (g *Gemini) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, batch := range batches(texts, g.batchSize) {
		contents := make([]*genai.Content, len(batch))
		for i, t := range batch {
			contents[i] = genai.NewContentFromText(t, genai.RoleUser)
		}
		res, err := g.client.Models.EmbedContent(ctx, g.model, contents, nil)
		if err != nil {
			return nil, fmt.Errorf("gemini embed: %w", err)
		}
		if err := checkCount("gemini", len(batch), len(res.Embeddings)); err != nil {
			return nil, err
		}
		for _, e := range res.Embeddings {
			out = append(out, e.Values)
		}
	}
	return out, nil
}

func (g *Gemini) Close() error { return nil }
