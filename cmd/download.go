package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/cache"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/socrata"
)

// openCache connects to Redis when configured. An unreachable server is
// logged and the download proceeds uncached.
func openCache(ctx context.Context) (cache.Cache, func()) {
	if cfg.Redis.Addr == "" {
		return cache.Nop{}, func() {}
	}
	r := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("download cache unavailable, continuing without it")
		r.Close()
		return cache.Nop{}, func() {}
	}
	log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.TTL).Msg("download cache enabled")
	return r, func() { r.Close() }
}

func download(ctx context.Context) error {
	c, closeCache := openCache(ctx)
	defer closeCache()

	client := socrata.NewClient(cfg.Socrata.BaseURL, cfg.Socrata.AppToken, cfg.Socrata.RPS, cfg.Socrata.Timeout, c)
	datasets := socrata.Datasets(cfg.Query)

	log.Info().
		Int("year", cfg.Query.Year).
		Str("township", cfg.Query.TownshipName).
		Strs("zip_codes", cfg.Query.ZipCodes).
		Str("dir", cfg.DataDir).
		Msg("downloading datasets")
	return client.Fetch(ctx, cfg.DataDir, datasets, cfg.Socrata.SkipExisting)
}

func addQueryFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&cfg.Query.Year, "year", cfg.Query.Year, "tax year to download")
	f.StringVar(&cfg.Query.TownshipCode, "township-code", cfg.Query.TownshipCode, "assessor township code")
	f.StringVar(&cfg.Query.TownshipName, "township-name", cfg.Query.TownshipName, "assessor township name")
	f.StringSliceVar(&cfg.Query.ZipCodes, "zip", cfg.Query.ZipCodes, "property zip codes to keep")
	f.BoolVar(&cfg.Socrata.SkipExisting, "skip-existing", cfg.Socrata.SkipExisting, "keep datasets already present in the data directory")
}

func createDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the four assessor datasets",
		Long:  `Query the Cook County open data portal and save the multi-family characteristics, commercial valuation, parcel address and parcel universe extracts as CSV.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return download(cmd.Context())
		},
	}
	addQueryFlags(cmd)
	return cmd
}
