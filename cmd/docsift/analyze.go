package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsift/internal/embed"
	"github.com/dgallion1/docsift/internal/pipeline"
)

var (
	analyzeIn      string
	analyzeOut     string
	analyzePersona string
	analyzeJob     string
	analyzeFloor   float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Rank document sections by relevance to a persona and task",
	Long: `Rank every text block of the documents in --in against
"<persona>: <job>" and write one result file.

Blocks scoring below the relevance floor are left out. An empty input
directory produces a result with no sections.

Examples:
  docsift analyze --in ./input --out ./output/result.json \
    --persona "Investment Analyst" --job "Compare revenue trends"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("floor") {
			cfg.RelevanceFloor = analyzeFloor
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		inputs, err := pipeline.LoadDir(analyzeIn)
		if err != nil {
			return err
		}

		stats := embed.NewStats(cfg.StatsWindow)
		embedder := embed.NewLazy(func(ctx context.Context) (embed.Provider, error) {
			p, err := embed.New(ctx, cfg.Embed())
			if err != nil {
				return nil, err
			}
			return &embed.Timed{Provider: p, Stats: stats, Logger: log}, nil
		})
		defer embedder.Close()

		res, err := pipeline.NewAnalyzer(cfg, embedder, log).Run(cmd.Context(), inputs, analyzePersona, analyzeJob)
		if err != nil {
			log.Error("analysis failed", "error", err)
			return err
		}
		if err := writeJSONFile(analyzeOut, res); err != nil {
			return err
		}

		snap := stats.Snapshot()
		log.Info("analysis complete",
			"documents", len(inputs),
			"sections", len(res.ExtractedSections),
			"embed_calls", snap.Calls,
			"embed_p95_ms", snap.P95Ms,
			"out", analyzeOut,
		)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeIn, "in", "input", "directory of documents to rank")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "output/result.json", "result file")
	analyzeCmd.Flags().StringVar(&analyzePersona, "persona", "", "who is reading (required)")
	analyzeCmd.Flags().StringVar(&analyzeJob, "job", "", "what they need to get done (required)")
	analyzeCmd.Flags().Float64Var(&analyzeFloor, "floor", 0.1, "minimum cosine similarity (default: RELEVANCE_FLOOR)")
	analyzeCmd.MarkFlagRequired("persona")
	analyzeCmd.MarkFlagRequired("job")
}
