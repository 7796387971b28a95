package embed

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const openAIDefaultModel = "text-embedding-3-small"

// OpenAI embeds text with the OpenAI embeddings API or any server that
// speaks it.
type OpenAI struct {
	client     openai.Client
	httpClient *http.Client
	model      string
	batchSize  int
}

func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
		return nil, errors.New("missing OPENAI_API_KEY")
	}
	model := cfg.Model
	if model == "" {
		model = openAIDefaultModel
	}
	hc := &http.Client{Timeout: cfg.Timeout}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAIAPIKey),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(0),
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	return &OpenAI{
		client:     openai.NewClient(opts...),
		httpClient: hc,
		model:      model,
		batchSize:  cfg.BatchSize,
	}, nil
}

func (o *OpenAI) Name() string { return "openai/" + o.model }

func (o *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, batch := range batches(texts, o.batchSize) {
		resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: batch},
			Model: openai.EmbeddingModel(o.model),
		})
		if err != nil {
			return nil, fmt.Errorf("openai embed: %w", err)
		}
		if err := checkCount("openai", len(batch), len(resp.Data)); err != nil {
			return nil, err
		}
		// Data is not guaranteed to come back in request order.
		vecs := make([][]float32, len(batch))
		for _, d := range resp.Data {
			i := int(d.Index)
			if i < 0 || i >= len(batch) {
				return nil, fmt.Errorf("openai embed: index %d out of range", i)
			}
			vecs[i] = toFloat32(d.Embedding)
		}
		for i, v := range vecs {
			if v == nil {
				return nil, fmt.Errorf("openai embed: missing embedding %d", i)
			}
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (o *OpenAI) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
