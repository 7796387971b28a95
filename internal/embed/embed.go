package embed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUnknownProvider is returned by New for an unrecognized provider name.
	ErrUnknownProvider = errors.New("unknown embedding provider")
	// ErrDimensionMismatch is returned when two vectors cannot be compared.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Provider maps strings to fixed-length vectors. Output i always belongs
// to input i.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
	Close() error
}

// Config selects and configures a provider.
type Config struct {
	Provider  string // ollama | gemini | openai
	Model     string
	BatchSize int
	Timeout   time.Duration

	OllamaHost    string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

// New builds the provider named by cfg.Provider.
func New(ctx context.Context, cfg Config) (Provider, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	switch strings.ToLower(cfg.Provider) {
	case "ollama", "":
		return NewOllama(cfg)
	case "gemini":
		return NewGemini(ctx, cfg)
	case "openai":
		return NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// batches splits texts into consecutive slices of at most n items.
func batches(texts []string, n int) [][]string {
	if n <= 0 {
		n = len(texts)
	}
	var out [][]string
	for i := 0; i < len(texts); i += n {
		end := min(i+n, len(texts))
		out = append(out, texts[i:end])
	}
	return out
}

func checkCount(name string, want, got int) error {
	if want != got {
		return fmt.Errorf("%s: expected %d embeddings, got %d", name, want, got)
	}
	return nil
}
