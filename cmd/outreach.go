package main

import (
	"github.com/spf13/cobra"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/config"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/pipeline"
)

func createOutreachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outreach",
		Short: "Export apartment and condo parcels with mailing addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			load := pipeline.CSVOutreachLoader(cfg.DataDir)
			if cfg.Source == config.SourceSQL {
				load = pipeline.SQLOutreachLoader(cfg.DB)
			}
			_, err := pipeline.Outreach{
				Load:       load,
				OutputDir:  cfg.OutputDir,
				SQLitePath: cfg.SQLiteExport,
			}.Run(cmd.Context())
			return err
		},
	}
	cmd.Flags().StringVar(&cfg.Source, "source", cfg.Source, "input source: csv (data directory) or sql (DB_* settings)")
	cmd.Flags().StringVar(&cfg.SQLiteExport, "sqlite", cfg.SQLiteExport, "also write the list to this SQLite database")
	return cmd
}
