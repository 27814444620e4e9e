// Package dataset reads the four assessor CSV extracts into typed records.
package dataset

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/types"
)

// Standard file names written by the download command.
const (
	CharacteristicsFile = "Multi_Family_Improvement_Characteristics.csv"
	ValuationsFile      = "Apartment_Commercial_Valuation_Data.csv"
	AddressesFile       = "Parcel_Addresses.csv"
	UniverseFile        = "Parcel_Universe_Current_Year_Only.csv"
)

// ErrMissingColumn is returned when a required column is not in the header.
var ErrMissingColumn = errors.New("missing required column")

// TableStats counts what was read from one table.
type TableStats struct {
	Table     string
	Rows      int
	Malformed int
}

// table gives header-driven access to a CSV stream. An empty cell is absent.
type table struct {
	name  string
	r     *csv.Reader
	cols  map[string]int
	row   []string
	stats TableStats
}

func newTable(name string, r io.Reader, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty file", name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	for _, req := range required {
		if _, ok := cols[req]; !ok {
			return nil, fmt.Errorf("%s: %w %q", name, ErrMissingColumn, req)
		}
	}
	return &table{name: name, r: cr, cols: cols, stats: TableStats{Table: name}}, nil
}

// next advances to the next row. It returns false at EOF.
func (t *table) next() (bool, error) {
	row, err := t.r.Read()
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: row %d: %w", t.name, t.stats.Rows+2, err)
	}
	t.row = row
	t.stats.Rows++
	return true, nil
}

func (t *table) cell(col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(t.row) {
		return ""
	}
	return t.row[i]
}

// raw is a trimmed cell, for keys and numbers.
func (t *table) raw(col string) string {
	return strings.TrimSpace(t.cell(col))
}

// nullString keeps text as written; a blank cell is absent.
func (t *table) nullString(col string) sql.NullString {
	v := t.cell(col)
	if strings.TrimSpace(v) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func (t *table) nullFloat(col string) sql.NullFloat64 {
	v := t.raw(col)
	if v == "" {
		return sql.NullFloat64{}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		t.stats.Malformed++
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

// nullInt accepts "12" and integral floats such as "12.0".
func (t *table) nullInt(col string) sql.NullInt64 {
	v := t.raw(col)
	if v == "" {
		return sql.NullInt64{}
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return sql.NullInt64{Int64: n, Valid: true}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		t.stats.Malformed++
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(f), Valid: true}
}

// ReadAddresses reads the parcel address extract.
func ReadAddresses(r io.Reader) ([]types.AddressRecord, TableStats, error) {
	t, err := newTable("addresses", r, "pin", "pin10", "property_address", "mailing_address")
	if err != nil {
		return nil, TableStats{}, err
	}
	var out []types.AddressRecord
	for {
		ok, err := t.next()
		if err != nil {
			return nil, t.stats, err
		}
		if !ok {
			break
		}
		out = append(out, types.AddressRecord{
			PIN:             t.raw("pin"),
			PIN10:           t.raw("pin10"),
			PropertyAddress: t.nullString("property_address"),
			PropertyCity:    t.nullString("property_city"),
			PropertyState:   t.nullString("property_state"),
			PropertyZip:     t.nullString("property_zip"),
			MailingName:     t.nullString("mailing_name"),
			MailingAddress:  t.nullString("mailing_address"),
			MailingCity:     t.nullString("mailing_city"),
			MailingState:    t.nullString("mailing_state"),
			MailingZip:      t.nullString("mailing_zip"),
			TaxYear:         t.nullInt("tax_year"),
		})
	}
	return out, t.stats, nil
}

// ReadParcelUniverse reads the parcel universe extract.
func ReadParcelUniverse(r io.Reader) ([]types.ParcelUniverseRecord, TableStats, error) {
	t, err := newTable("parcel_universe", r, "pin", "pin10", "class")
	if err != nil {
		return nil, TableStats{}, err
	}
	var out []types.ParcelUniverseRecord
	for {
		ok, err := t.next()
		if err != nil {
			return nil, t.stats, err
		}
		if !ok {
			break
		}
		out = append(out, types.ParcelUniverseRecord{
			PIN:               t.raw("pin"),
			PIN10:             t.raw("pin10"),
			Class:             t.raw("class"),
			Latitude:          t.nullFloat("latitude"),
			Longitude:         t.nullFloat("longitude"),
			WardNum:           t.nullString("ward_num"),
			CommunityAreaName: t.nullString("chicago_community_area_name"),
		})
	}
	return out, t.stats, nil
}

// ReadUnitCharacteristics reads the multi-family characteristics extract.
func ReadUnitCharacteristics(r io.Reader) ([]types.UnitCharacteristicsRecord, TableStats, error) {
	t, err := newTable("characteristics", r, "pin", "num_apartments")
	if err != nil {
		return nil, TableStats{}, err
	}
	var out []types.UnitCharacteristicsRecord
	for {
		ok, err := t.next()
		if err != nil {
			return nil, t.stats, err
		}
		if !ok {
			break
		}
		out = append(out, types.UnitCharacteristicsRecord{
			PIN:           t.raw("pin"),
			NumApartments: t.nullString("num_apartments"),
		})
	}
	return out, t.stats, nil
}

// ReadValuations reads the commercial valuation extract.
func ReadValuations(r io.Reader) ([]types.ValuationRecord, TableStats, error) {
	t, err := newTable("valuations", r, "keypin", "tot_units")
	if err != nil {
		return nil, TableStats{}, err
	}
	var out []types.ValuationRecord
	for {
		ok, err := t.next()
		if err != nil {
			return nil, t.stats, err
		}
		if !ok {
			break
		}
		out = append(out, types.ValuationRecord{
			KeyPIN:   t.raw("keypin"),
			Year:     t.nullInt("year"),
			TotUnits: t.nullInt("tot_units"),
		})
	}
	return out, t.stats, nil
}

func readFile[T any](path string, read func(io.Reader) ([]T, TableStats, error)) ([]T, TableStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, TableStats{}, err
	}
	defer f.Close()
	return read(f)
}

// LoadDir reads the four standard extracts from dir.
func LoadDir(dir string) (*types.Bundle, []TableStats, error) {
	var (
		b     types.Bundle
		stats = make([]TableStats, 0, 4)
		s     TableStats
		err   error
	)

	if b.Characteristics, s, err = readFile(filepath.Join(dir, CharacteristicsFile), ReadUnitCharacteristics); err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", CharacteristicsFile, err)
	}
	stats = append(stats, s)
	if b.Valuations, s, err = readFile(filepath.Join(dir, ValuationsFile), ReadValuations); err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", ValuationsFile, err)
	}
	stats = append(stats, s)
	if b.Addresses, s, err = readFile(filepath.Join(dir, AddressesFile), ReadAddresses); err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", AddressesFile, err)
	}
	stats = append(stats, s)
	if b.Universe, s, err = readFile(filepath.Join(dir, UniverseFile), ReadParcelUniverse); err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", UniverseFile, err)
	}
	stats = append(stats, s)

	return &b, stats, nil
}

// LoadOutreach reads only the address and universe extracts, which is all the
// apartment outreach list needs.
func LoadOutreach(dir string) (*types.Bundle, []TableStats, error) {
	var b types.Bundle
	addrs, as, err := readFile(filepath.Join(dir, AddressesFile), ReadAddresses)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", AddressesFile, err)
	}
	universe, us, err := readFile(filepath.Join(dir, UniverseFile), ReadParcelUniverse)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", UniverseFile, err)
	}
	b.Addresses, b.Universe = addrs, universe
	return &b, []TableStats{as, us}, nil
}
