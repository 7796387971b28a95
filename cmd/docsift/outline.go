package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsift/internal/pipeline"
)

var (
	outlineIn  string
	outlineOut string
)

var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "Write a title and heading outline for every document in a directory",
	Long: `Outline every supported document in --in and write <name>.json to --out.

A document that cannot be read still gets a file with an empty title and
outline.

Examples:
  docsift outline --in ./input --out ./output`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		paths, err := pipeline.ListDir(outlineIn)
		if err != nil {
			return err
		}
		results := pipeline.NewOutliner(cfg, log).OutlineAll(cmd.Context(), paths)

		for i, p := range paths {
			base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
			if err := writeJSONFile(filepath.Join(outlineOut, base+".json"), results[i]); err != nil {
				return err
			}
		}
		log.Info("outline complete", "documents", len(paths), "out", outlineOut)
		return cmd.Context().Err()
	},
}

func init() {
	outlineCmd.Flags().StringVar(&outlineIn, "in", "input", "directory of documents to outline")
	outlineCmd.Flags().StringVar(&outlineOut, "out", "output", "directory for outline JSON files")
}
