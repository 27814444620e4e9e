package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/config"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/occupancy"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/pipeline"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/zoning"
)

func newClassifier() (*occupancy.Classifier, error) {
	tagger, err := newTagger(cfg.Parser)
	if err != nil {
		return nil, err
	}
	c := occupancy.NewClassifier(tagger)
	c.Threshold = cfg.Threshold
	c.HouseNumberTolerance = cfg.HouseNumberTolerance
	return c, nil
}

func loader() pipeline.Loader {
	if cfg.Source == config.SourceSQL {
		return pipeline.SQLLoader(cfg.DB)
	}
	return pipeline.CSVLoader(cfg.DataDir)
}

func analyze(ctx context.Context, zoningFlags []string) error {
	sources := cfg.ZoningLayers
	if len(zoningFlags) > 0 {
		sources = nil
		for _, s := range zoningFlags {
			src, err := zoning.ParseSource(s)
			if err != nil {
				return fmt.Errorf("--zoning: %w", err)
			}
			sources = append(sources, src)
		}
	}
	layers, err := zoning.Load(sources...)
	if err != nil {
		return err
	}

	classifier, err := newClassifier()
	if err != nil {
		return err
	}

	_, err = pipeline.Analysis{
		Load:       loader(),
		Classifier: classifier,
		Zoning:     layers,
		Workers:    cfg.Workers,
		OutputDir:  cfg.OutputDir,
		SQLitePath: cfg.SQLiteExport,
	}.Run(ctx)
	return err
}

func addAnalyzeFlags(cmd *cobra.Command, zoningFlags *[]string) {
	f := cmd.Flags()
	f.StringVar(&cfg.Source, "source", cfg.Source, "input source: csv (data directory) or sql (DB_* settings)")
	f.StringVar(&cfg.SQLiteExport, "sqlite", cfg.SQLiteExport, "also write the results to this SQLite database")
	f.StringSliceVar(zoningFlags, "zoning", nil, "zoning shapefile as path[:wgs84|il-east]; replaces ZONING_LAYERS")
}

func createAnalyzeCmd() *cobra.Command {
	var zoningFlags []string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Classify parcels and rank landlords",
		Long:  `Join the downloaded extracts, decide which housing parcels are renter-occupied and write the ownership, rental housing and grouped landlord exports.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyze(cmd.Context(), zoningFlags)
		},
	}
	addAnalyzeFlags(cmd, &zoningFlags)
	return cmd
}

func createRunCmd() *cobra.Command {
	var zoningFlags []string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Download the datasets, then analyze them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := download(cmd.Context()); err != nil {
				return err
			}
			return analyze(cmd.Context(), zoningFlags)
		},
	}
	addQueryFlags(cmd)
	addAnalyzeFlags(cmd, &zoningFlags)
	return cmd
}
