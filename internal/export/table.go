// Package export writes analysis results as CSV files and, optionally, as
// tables in a SQLite database.
package export

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/types"
)

// column describes one output field. value returns nil for an absent value,
// otherwise a string, int, float64 or bool.
type column[T any] struct {
	name    string
	sqlType string
	value   func(T) any
}

// Table is a named, typed set of rows ready to be written.
type Table struct {
	Name     string
	Columns  []string
	SQLTypes []string
	Rows     [][]any
}

func newTable[T any](name string, cols []column[T], rows []T) Table {
	t := Table{
		Name:     name,
		Columns:  make([]string, len(cols)),
		SQLTypes: make([]string, len(cols)),
		Rows:     make([][]any, len(rows)),
	}
	for i, c := range cols {
		t.Columns[i] = c.name
		t.SQLTypes[i] = c.sqlType
	}
	for i, r := range rows {
		vals := make([]any, len(cols))
		for j, c := range cols {
			vals[j] = c.value(r)
		}
		t.Rows[i] = vals
	}
	return t
}

func nullString(ns sql.NullString) any {
	if !ns.Valid {
		return nil
	}
	return ns.String
}

func nullFloat(nf sql.NullFloat64) any {
	if !nf.Valid {
		return nil
	}
	return nf.Float64
}

func text[T any](name string, f func(T) sql.NullString) column[T] {
	return column[T]{name, "TEXT", func(r T) any { return nullString(f(r)) }}
}

func num[T any](name string, f func(T) sql.NullFloat64) column[T] {
	return column[T]{name, "REAL", func(r T) any { return nullFloat(f(r)) }}
}

func flag[T any](name string, f func(T) bool) column[T] {
	return column[T]{name, "INTEGER", func(r T) any { return f(r) }}
}

type cp = types.ClassifiedParcel

var parcelColumns = []column[cp]{
	{"pin", "TEXT", func(p cp) any { return p.PIN }},
	{"class", "TEXT", func(p cp) any { return p.Class }},
	num("latitude", func(p cp) sql.NullFloat64 { return p.Latitude }),
	num("longitude", func(p cp) sql.NullFloat64 { return p.Longitude }),
	text("ward_num", func(p cp) sql.NullString { return p.WardNum }),
	text("chicago_community_area_name", func(p cp) sql.NullString { return p.CommunityAreaName }),
	text("property_address", func(p cp) sql.NullString { return p.PropertyAddress }),
	text("property_city", func(p cp) sql.NullString { return p.PropertyCity }),
	text("property_state", func(p cp) sql.NullString { return p.PropertyState }),
	text("property_zip", func(p cp) sql.NullString { return p.PropertyZip }),
	text("taxpayer_name", func(p cp) sql.NullString { return p.TaxpayerName }),
	text("taxpayer_address", func(p cp) sql.NullString { return p.TaxpayerAddress }),
	text("taxpayer_city", func(p cp) sql.NullString { return p.TaxpayerCity }),
	text("taxpayer_state", func(p cp) sql.NullString { return p.TaxpayerState }),
	text("taxpayer_zip", func(p cp) sql.NullString { return p.TaxpayerZip }),
	{"total_units", "INTEGER", func(p cp) any { return p.TotalUnits }},
	text("zoning", func(p cp) sql.NullString { return p.Zoning }),
	flag("is_corporate_owned", func(p cp) bool { return p.IsCorporateOwned }),
	flag("is_housing", func(p cp) bool { return p.IsHousing }),
	flag("is_apartment", func(p cp) bool { return p.IsApartment }),
	flag("is_owner_occupied", func(p cp) bool { return p.IsOwnerOccupied }),
	{"address_similarity_score", "REAL", func(p cp) any { return p.AddressSimilarityScore }},
	flag("has_tenants", func(p cp) bool { return p.HasTenants }),
}

// rentalColumns drops the two flags every rental row shares.
var rentalColumns = func() []column[cp] {
	var cols []column[cp]
	for _, c := range parcelColumns {
		if c.name == "is_housing" || c.name == "is_owner_occupied" {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}()

type la = types.LandlordAggregate

var landlordColumns = []column[la]{
	{"taxpayer_address", "TEXT", func(l la) any { return l.TaxpayerAddress }},
	{"taxpayer_city", "TEXT", func(l la) any { return l.TaxpayerCity }},
	{"total_units_count", "INTEGER", func(l la) any { return l.TotalUnitsCount }},
	{"parcel_count", "INTEGER", func(l la) any { return l.ParcelCount }},
}

type op = types.OutreachParcel

var outreachColumns = []column[op]{
	{"pin", "TEXT", func(p op) any { return p.PIN }},
	{"class", "TEXT", func(p op) any { return p.Class }},
	num("latitude", func(p op) sql.NullFloat64 { return p.Latitude }),
	num("longitude", func(p op) sql.NullFloat64 { return p.Longitude }),
	text("ward_num", func(p op) sql.NullString { return p.WardNum }),
	text("chicago_community_area_name", func(p op) sql.NullString { return p.CommunityAreaName }),
	text("property_address", func(p op) sql.NullString { return p.PropertyAddress }),
	text("property_city", func(p op) sql.NullString { return p.PropertyCity }),
	text("property_state", func(p op) sql.NullString { return p.PropertyState }),
	text("property_zip", func(p op) sql.NullString { return p.PropertyZip }),
	text("mailing_name", func(p op) sql.NullString { return p.MailingName }),
	text("mailing_address", func(p op) sql.NullString { return p.MailingAddress }),
	text("mailing_city", func(p op) sql.NullString { return p.MailingCity }),
	text("mailing_state", func(p op) sql.NullString { return p.MailingState }),
	text("mailing_zip", func(p op) sql.NullString { return p.MailingZip }),
}

// ParcelsTable holds every classified parcel.
func ParcelsTable(parcels []types.ClassifiedParcel) Table {
	return newTable("parcels", parcelColumns, parcels)
}

// RentalHousingTable expects rows already filtered to rental housing.
func RentalHousingTable(rentals []types.ClassifiedParcel) Table {
	return newTable("rental_housing", rentalColumns, rentals)
}

func LandlordsTable(landlords []types.LandlordAggregate) Table {
	return newTable("landlords", landlordColumns, landlords)
}

func OutreachTable(rows []types.OutreachParcel) Table {
	return newTable("outreach", outreachColumns, rows)
}

// cell renders v the way the published CSVs do: empty for absent values,
// True/False for booleans and floats always with a decimal point.
func cell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case bool:
		if v {
			return "True"
		}
		return "False"
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.ContainsAny(s, ".NI") {
			s += ".0"
		}
		return s
	}
	return ""
}
