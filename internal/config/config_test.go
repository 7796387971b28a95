package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "EMBED_PROVIDER", "RELEVANCE_FLOOR", "WORKER_COUNT", "JOB_TTL", "HEADING_TITLES"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %s", cfg.Port)
	}
	if cfg.EmbedProvider != "ollama" {
		t.Errorf("expected ollama provider, got %s", cfg.EmbedProvider)
	}
	if cfg.RelevanceFloor != 0.1 {
		t.Errorf("expected floor 0.1, got %g", cfg.RelevanceFloor)
	}
	if cfg.HeadingTitles {
		t.Error("expected heading titles off by default")
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected 1h job TTL, got %s", cfg.JobTTL)
	}
}

func TestLoadOverridesAndClamps(t *testing.T) {
	t.Setenv("EMBED_PROVIDER", "OpenAI")
	t.Setenv("RELEVANCE_FLOOR", "0.25")
	t.Setenv("WORKER_COUNT", "-3")
	t.Setenv("EMBED_TIMEOUT", "not-a-duration")
	t.Setenv("HEADING_TITLES", "true")

	cfg := Load()
	if cfg.EmbedProvider != "openai" {
		t.Errorf("expected lowercased provider, got %s", cfg.EmbedProvider)
	}
	if cfg.RelevanceFloor != 0.25 {
		t.Errorf("expected floor 0.25, got %g", cfg.RelevanceFloor)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected clamped worker count 4, got %d", cfg.WorkerCount)
	}
	if cfg.EmbedTimeout != 2*time.Minute {
		t.Errorf("expected default timeout, got %s", cfg.EmbedTimeout)
	}
	if !cfg.HeadingTitles {
		t.Error("expected heading titles on")
	}
}

func TestValidate(t *testing.T) {
	base := Config{EmbedProvider: "ollama", OllamaHost: "http://localhost:11434", RelevanceFloor: 0.1}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"unknown provider", func(c *Config) { c.EmbedProvider = "bert" }, "EMBED_PROVIDER"},
		{"gemini without key", func(c *Config) { c.EmbedProvider = "gemini" }, "GEMINI_API_KEY"},
		{"openai with base url", func(c *Config) { c.EmbedProvider = "openai"; c.OpenAIBaseURL = "http://vllm:8000/v1" }, ""},
		{"openai without key", func(c *Config) { c.EmbedProvider = "openai" }, "OPENAI_API_KEY"},
		{"floor too high", func(c *Config) { c.RelevanceFloor = 1.5 }, "RELEVANCE_FLOOR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateServerNeedsAPIKey(t *testing.T) {
	c := Config{EmbedProvider: "ollama", OllamaHost: "http://localhost:11434", RelevanceFloor: 0.1}
	if err := c.ValidateServer(); err == nil || !strings.Contains(err.Error(), "DOCSIFT_API_KEY") {
		t.Fatalf("expected DOCSIFT_API_KEY error, got %v", err)
	}
	c.DocsiftAPIKey = "secret"
	if err := c.ValidateServer(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
