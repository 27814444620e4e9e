package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/export"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/landlord"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/metrics"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/occupancy"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/parcel"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/types"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/units"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/zoning"
)

// Analysis configures the ownership run.
type Analysis struct {
	Load       Loader
	Classifier *occupancy.Classifier
	Zoning     zoning.Layers
	Workers    int

	OutputDir  string
	SQLitePath string
}

// Result is everything the ownership run produced.
type Result struct {
	Parcels   []types.ClassifiedParcel
	Rentals   []types.ClassifiedParcel
	Landlords []types.LandlordAggregate
}

// ReconcileUnits merges the two unit-count sources.
func ReconcileUnits(b *types.Bundle) units.Counts {
	counts, s := units.Reconcile(b.Characteristics, b.Valuations)
	metrics.AddDropped("characteristics", "no_unit_count", s.CharacteristicsUnusable)
	metrics.AddDropped("valuations", "no_unit_count", s.ValuationUnusable)
	metrics.AddDropped("valuations", "superseded_by_characteristics", s.Collisions)
	log.Info().
		Int("characteristics_usable", s.CharacteristicsUsable).
		Int("valuation_usable", s.ValuationUsable).
		Int("collisions", s.Collisions).
		Int("pins", len(counts)).
		Msg("unit counts reconciled")
	return counts
}

// JoinParcels joins addresses to the parcel universe and attaches unit counts.
func JoinParcels(b *types.Bundle, counts units.Counts) []types.Parcel {
	parcels, js := parcel.Join(b.Addresses, b.Universe)
	us := parcel.AttachUnits(parcels, counts)
	metrics.AddDropped("addresses", "no_universe_match", js.UnmatchedAddresses)
	metrics.AddDropped("parcel_universe", "no_address_match", js.UnmatchedUniverse)
	log.Info().
		Int("parcels", js.Joined).
		Int("unmatched_addresses", js.UnmatchedAddresses).
		Int("unmatched_universe", js.UnmatchedUniverse).
		Int("units_matched", us.Matched).
		Int("units_defaulted", us.Defaulted).
		Msg("parcels joined")
	return parcels
}

// AnnotateZoning sets zoning codes from the configured layers.
func AnnotateZoning(layers zoning.Layers, parcels []types.Parcel) {
	if len(layers) == 0 {
		return
	}
	features := 0
	for _, l := range layers {
		features += l.Len()
	}
	n := layers.Annotate(parcels)
	log.Info().
		Int("matched", n).
		Int("parcels", len(parcels)).
		Int("layers", len(layers)).
		Int("polygons", features).
		Msg("zoning annotated")
}

// Aggregate filters rental housing and ranks landlords.
func Aggregate(parcels []types.ClassifiedParcel) ([]types.ClassifiedParcel, []types.LandlordAggregate) {
	rentals := landlord.RentalHousing(parcels)
	landlords := landlord.Aggregate(rentals)
	metrics.Landlords.Set(float64(len(landlords)))
	log.Info().Int("rental_parcels", len(rentals)).Int("landlords", len(landlords)).Msg("landlords aggregated")
	return rentals, landlords
}

// Run executes every stage in order. Only a failed load, a cancelled context
// or a failed write stops it.
func (a Analysis) Run(ctx context.Context) (*Result, error) {
	if a.Load == nil || a.Classifier == nil {
		return nil, errors.New("analysis needs a loader and a classifier")
	}
	start := time.Now()

	var (
		bundle  *types.Bundle
		counts  units.Counts
		parcels []types.Parcel
		res     Result
	)

	if err := stage("load", func() (err error) {
		bundle, err = a.Load(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	step("reconcile_units", func() {
		counts = ReconcileUnits(bundle)
	})
	step("join", func() {
		parcels = JoinParcels(bundle, counts)
	})
	step("zoning", func() {
		AnnotateZoning(a.Zoning, parcels)
	})
	if err := stage("classify", func() (err error) {
		res.Parcels, err = a.Classifier.ClassifyAll(ctx, parcels, a.Workers)
		return err
	}); err != nil {
		return nil, err
	}
	metrics.ObserveClassification(res.Parcels)

	step("aggregate", func() {
		res.Rentals, res.Landlords = Aggregate(res.Parcels)
	})
	if err := stage("export", func() error {
		return a.export(ctx, &res)
	}); err != nil {
		return nil, err
	}

	log.Info().
		Int("parcels", len(res.Parcels)).
		Int("rentals", len(res.Rentals)).
		Int("landlords", len(res.Landlords)).
		Dur("took", time.Since(start)).
		Msg("analysis complete")
	return &res, nil
}

func (a Analysis) export(ctx context.Context, res *Result) error {
	if err := export.Ownership(a.OutputDir, res.Parcels, res.Rentals, res.Landlords); err != nil {
		return err
	}
	if a.SQLitePath == "" {
		return nil
	}
	return export.WriteSQLite(ctx, a.SQLitePath,
		export.ParcelsTable(res.Parcels),
		export.RentalHousingTable(res.Rentals),
		export.LandlordsTable(res.Landlords),
	)
}

// Outreach configures the apartment and condo list run.
type Outreach struct {
	Load Loader

	OutputDir  string
	SQLitePath string
}

// Run loads addresses and the universe, keeps apartment and condo classes and
// writes the mailing list.
func (o Outreach) Run(ctx context.Context) ([]types.OutreachParcel, error) {
	if o.Load == nil {
		return nil, errors.New("outreach needs a loader")
	}

	var (
		bundle *types.Bundle
		rows   []types.OutreachParcel
	)
	if err := stage("load", func() (err error) {
		bundle, err = o.Load(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	step("join", func() {
		apartments := parcel.FilterApartments(bundle.Universe)
		var js parcel.JoinStats
		rows, js = parcel.JoinOutreach(bundle.Addresses, apartments)
		metrics.AddDropped("parcel_universe", "not_apartment", len(bundle.Universe)-len(apartments))
		log.Info().
			Int("apartment_parcels", len(apartments)).
			Int("rows", js.Joined).
			Int("unmatched_addresses", js.UnmatchedAddresses).
			Msg("outreach list joined")
	})
	if err := stage("export", func() error {
		if err := export.Outreach(o.OutputDir, rows); err != nil {
			return err
		}
		if o.SQLitePath == "" {
			return nil
		}
		return export.WriteSQLite(ctx, o.SQLitePath, export.OutreachTable(rows))
	}); err != nil {
		return nil, err
	}
	return rows, nil
}
