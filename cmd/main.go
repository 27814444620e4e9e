package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/config"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/metrics"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/observability"
)

// cfg is loaded from .env and the environment before flags are parsed, so
// flag defaults show the effective configuration.
var cfg config.Config

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := createRootCmd()
	rootCmd.AddCommand(createDownloadCmd())
	rootCmd.AddCommand(createAnalyzeCmd())
	rootCmd.AddCommand(createOutreachCmd())
	rootCmd.AddCommand(createRunCmd())
	rootCmd.AddCommand(createClassifyCmd())

	if err := execute(ctx, rootCmd); err != nil {
		log.Error().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

// execute runs the command tree and flushes metrics whether or not it failed.
// The flush outlives an interrupt so a cancelled run still reports.
func execute(ctx context.Context, rootCmd *cobra.Command) error {
	err := rootCmd.ExecuteContext(ctx)
	flushErr := metrics.Flush(context.WithoutCancel(ctx), cfg.MetricsTextfile, cfg.PushgatewayURL)
	return errors.Join(err, flushErr)
}

func createRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ownership-analysis",
		Short: "Cook County rental ownership analysis",
		Long: `Downloads Cook County assessor extracts, decides which residential parcels
are renter-occupied and ranks taxpayer mailing addresses by the units they hold.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			if runtime.GOOS == "windows" {
				enableVT()
			}
			logger, err := observability.NewLogger(cfg.LogFormat, cfg.LogLevel)
			if err != nil {
				return err
			}
			log.Logger = logger
			return nil
		},
	}

	f := rootCmd.PersistentFlags()
	f.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory holding the downloaded CSV extracts")
	f.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "directory for the exported CSV files")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: auto, console or json")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "classification goroutines")
	f.StringVar(&cfg.Parser, "parser", cfg.Parser, "address parser: us or libpostal")
	f.Float64Var(&cfg.Threshold, "threshold", cfg.Threshold, "minimum address similarity score (0-100) for owner occupancy")
	f.IntVar(&cfg.HouseNumberTolerance, "tolerance", cfg.HouseNumberTolerance, "largest house number gap still compared")
	f.StringVar(&cfg.MetricsTextfile, "metrics-textfile", cfg.MetricsTextfile, "write run metrics to this node-exporter textfile")
	f.StringVar(&cfg.PushgatewayURL, "pushgateway", cfg.PushgatewayURL, "push run metrics to this Pushgateway")

	return rootCmd
}
