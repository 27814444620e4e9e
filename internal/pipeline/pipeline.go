// Package pipeline runs the analysis as a fixed sequence of stages:
// load, reconcile units, join, annotate zoning, classify, aggregate, export.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/database"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/dataset"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/metrics"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/types"
)

// Loader produces the input tables of one run.
type Loader func(ctx context.Context) (*types.Bundle, error)

func recordStats(stats []dataset.TableStats) {
	for _, s := range stats {
		metrics.AddRows(s.Table, s.Rows)
		metrics.AddDropped(s.Table, "malformed_cell", s.Malformed)
		log.Info().Str("table", s.Table).Int("rows", s.Rows).Int("malformed_cells", s.Malformed).Msg("table loaded")
	}
}

func recordRows(table string, n int) {
	metrics.AddRows(table, n)
	log.Info().Str("table", table).Int("rows", n).Msg("table loaded")
}

// CSVLoader reads the four extracts from dir.
func CSVLoader(dir string) Loader {
	return func(context.Context) (*types.Bundle, error) {
		b, stats, err := dataset.LoadDir(dir)
		if err != nil {
			return nil, err
		}
		recordStats(stats)
		return b, nil
	}
}

// CSVOutreachLoader reads only the address and universe extracts from dir.
func CSVOutreachLoader(dir string) Loader {
	return func(context.Context) (*types.Bundle, error) {
		b, stats, err := dataset.LoadOutreach(dir)
		if err != nil {
			return nil, err
		}
		recordStats(stats)
		return b, nil
	}
}

// SQLLoader reads all four tables from a database.
func SQLLoader(config database.DBConfig) Loader {
	return func(ctx context.Context) (*types.Bundle, error) {
		db, err := database.NewDatabase(config)
		if err != nil {
			return nil, err
		}
		defer db.Close()

		b, err := db.LoadBundle(ctx)
		if err != nil {
			return nil, err
		}
		recordRows("characteristics", len(b.Characteristics))
		recordRows("valuations", len(b.Valuations))
		recordRows("addresses", len(b.Addresses))
		recordRows("parcel_universe", len(b.Universe))
		return b, nil
	}
}

// SQLOutreachLoader reads the address and universe tables from a database.
func SQLOutreachLoader(config database.DBConfig) Loader {
	return func(ctx context.Context) (*types.Bundle, error) {
		db, err := database.NewDatabase(config)
		if err != nil {
			return nil, err
		}
		defer db.Close()

		var b types.Bundle
		if b.Addresses, err = db.QueryAddresses(ctx); err != nil {
			return nil, err
		}
		if b.Universe, err = db.QueryParcelUniverse(ctx); err != nil {
			return nil, err
		}
		recordRows("addresses", len(b.Addresses))
		recordRows("parcel_universe", len(b.Universe))
		return &b, nil
	}
}

// stage times fn and records the duration under name.
func stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	took := time.Since(start)
	metrics.ObserveStage(name, took)
	if err != nil {
		log.Error().Err(err).Str("stage", name).Dur("took", took).Msg("stage failed")
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Debug().Str("stage", name).Dur("took", took).Msg("stage done")
	return nil
}

// step is stage for work that cannot fail.
func step(name string, fn func()) {
	_ = stage(name, func() error {
		fn()
		return nil
	})
}
