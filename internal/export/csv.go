package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/types"
)

// Output file names, relative to the output directory.
const (
	OwnershipFile = "local_property_ownership_data.csv"
	RentalFile    = "local_rental_housing.csv"
	GroupedFile   = "local_rental_housing_grouped.csv"
	OutreachFile  = "local_apartments-condos.csv"
)

// WriteCSV writes t with a header row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			rec[i] = cell(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile replaces path with the CSV rendering of t. The file is written
// next to its destination and renamed, so readers never see a partial file.
func WriteFile(path string, t Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, t); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	log.Info().Str("file", path).Int("rows", len(t.Rows)).Msg("export written")
	return nil
}

// Ownership writes the three ownership exports into dir.
func Ownership(dir string, parcels, rentals []types.ClassifiedParcel, landlords []types.LandlordAggregate) error {
	files := []struct {
		name  string
		table Table
	}{
		{OwnershipFile, ParcelsTable(parcels)},
		{RentalFile, RentalHousingTable(rentals)},
		{GroupedFile, LandlordsTable(landlords)},
	}
	for _, f := range files {
		if err := WriteFile(filepath.Join(dir, f.name), f.table); err != nil {
			return err
		}
	}
	return nil
}

// Outreach writes the apartment and condo list into dir.
func Outreach(dir string, rows []types.OutreachParcel) error {
	return WriteFile(filepath.Join(dir, OutreachFile), OutreachTable(rows))
}
