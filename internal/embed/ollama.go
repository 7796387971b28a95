package embed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

const ollamaDefaultModel = "all-minilm"

// Ollama embeds text through a local Ollama server.
type Ollama struct {
	client     *api.Client
	httpClient *http.Client
	model      string
	batchSize  int
}

func NewOllama(cfg Config) (*Ollama, error) {
	host := cfg.OllamaHost
	if host == "" {
		host = "http://localhost:11434"
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = ollamaDefaultModel
	}
	hc := &http.Client{Timeout: cfg.Timeout}
	return &Ollama{
		client:     api.NewClient(u, hc),
		httpClient: hc,
		model:      model,
		batchSize:  cfg.BatchSize,
	}, nil
}

func (o *Ollama) Name() string { return "ollama/" + o.model }

func (o *Ollama) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, batch := range batches(texts, o.batchSize) {
		resp, err := o.client.Embed(ctx, &api.EmbedRequest{
			Model: o.model,
			Input: batch,
		})
		if err != nil {
			return nil, fmt.Errorf("ollama embed: %w", err)
		}
		if err := checkCount("ollama", len(batch), len(resp.Embeddings)); err != nil {
			return nil, err
		}
		out = append(out, resp.Embeddings...)
	}
	return out, nil
}

// Close releases idle connections.
func (o *Ollama) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}
