package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/docsift/internal/embed"
)

type Config struct {
	Port string

	// Auth
	DocsiftAPIKey string

	// Embedding provider
	EmbedProvider  string
	EmbedModel     string
	EmbedBatchSize int
	EmbedTimeout   time.Duration
	OllamaHost     string
	GeminiAPIKey   string
	OpenAIAPIKey   string
	OpenAIBaseURL  string

	// Worker pool
	WorkerCount        int
	MaxQueueSize       int
	MaxConcurrentParse int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Ranking
	RelevanceFloor float64
	HeadingTitles  bool

	// Embedding latency window
	StatsWindow time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DocsiftAPIKey: os.Getenv("DOCSIFT_API_KEY"),

		EmbedProvider:  strings.ToLower(envOr("EMBED_PROVIDER", "ollama")),
		EmbedModel:     os.Getenv("EMBED_MODEL"),
		EmbedBatchSize: envInt("EMBED_BATCH_SIZE", 64),
		EmbedTimeout:   envDuration("EMBED_TIMEOUT", 2*time.Minute),
		OllamaHost:     envOr("OLLAMA_HOST", "http://localhost:11434"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),

		WorkerCount:        envInt("WORKER_COUNT", 4),
		MaxQueueSize:       envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentParse: envInt("MAX_CONCURRENT_PARSE", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		RelevanceFloor: envFloat("RELEVANCE_FLOOR", 0.1),
		HeadingTitles:  envBool("HEADING_TITLES", false),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 64
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = 2 * time.Minute
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentParse <= 0 {
		cfg.MaxConcurrentParse = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

// Validate checks what every entry point needs: a usable embedding
// provider and a sane relevance floor.
func (c Config) Validate() error {
	switch c.EmbedProvider {
	case "ollama":
		if c.OllamaHost == "" {
			return fmt.Errorf("OLLAMA_HOST is required")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required")
		}
	case "openai":
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			return fmt.Errorf("OPENAI_API_KEY or OPENAI_BASE_URL is required")
		}
	default:
		return fmt.Errorf("EMBED_PROVIDER must be ollama, gemini or openai, got %q", c.EmbedProvider)
	}
	if c.RelevanceFloor < -1 || c.RelevanceFloor > 1 {
		return fmt.Errorf("RELEVANCE_FLOOR must be within [-1, 1], got %g", c.RelevanceFloor)
	}
	return nil
}

// ValidateServer adds the checks only the HTTP service needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DocsiftAPIKey == "" {
		return fmt.Errorf("DOCSIFT_API_KEY is required")
	}
	return nil
}

// Embed returns the embedding provider settings.
func (c Config) Embed() embed.Config {
	return embed.Config{
		Provider:      c.EmbedProvider,
		Model:         c.EmbedModel,
		BatchSize:     c.EmbedBatchSize,
		Timeout:       c.EmbedTimeout,
		OllamaHost:    c.OllamaHost,
		GeminiAPIKey:  c.GeminiAPIKey,
		OpenAIAPIKey:  c.OpenAIAPIKey,
		OpenAIBaseURL: c.OpenAIBaseURL,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
