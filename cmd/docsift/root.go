package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsift/internal/config"
)

var (
	logLevel string
	workers  int
	noPdftotext bool
)

var rootCmd = &cobra.Command{
	Use:   "docsift",
	Short: "Outline documents and rank their sections for a persona",
	Long: `docsift reads PDF, DOCX, HTML, Markdown, CSV and text documents.

  outline   infers a title and H1-H3 headings from font sizes
  analyze   ranks every text block against a persona and a task

Settings come from the same environment variables as the server;
flags override them.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "documents parsed in parallel (default: MAX_CONCURRENT_PARSE)")
	rootCmd.PersistentFlags().BoolVar(&noPdftotext, "no-pdftotext", false, "never fall back to pdftotext")

	rootCmd.AddCommand(outlineCmd, analyzeCmd)
}

// setup loads configuration, applies global flags and builds the logger.
func setup() (config.Config, *slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Load()
	if workers > 0 {
		cfg.MaxConcurrentParse = workers
	}
	if noPdftotext {
		cfg.PDFFallbackPdftotext = false
	}
	return cfg, log, nil
}

// writeJSONFile writes v as indented JSON, creating parent directories.
func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
