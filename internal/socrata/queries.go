package socrata

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/dataset"
)

// DefaultBaseURL is the Cook County open data portal.
const DefaultBaseURL = "https://datacatalog.cookcountyil.gov"

// QueryParams scopes the four extracts to one tax year and area.
type QueryParams struct {
	Year         int
	TownshipCode string
	TownshipName string
	ZipCodes     []string
}

// DefaultQueryParams covers Jefferson township on the northwest side.
func DefaultQueryParams() QueryParams {
	return QueryParams{
		Year:         2025,
		TownshipCode: "71",
		TownshipName: "Jefferson",
		ZipCodes:     []string{"60618", "60639", "60641", "60647"},
	}
}

// Dataset is one SoQL extract and the file it is saved as.
type Dataset struct {
	Name     string
	Resource string
	Query    string
	FileName string
}

// URL is the CSV export endpoint for the dataset's query.
func (d Dataset) URL(base string) string {
	return fmt.Sprintf("%s/resource/%s.csv?$query=%s",
		strings.TrimRight(base, "/"), d.Resource, url.QueryEscape(d.Query))
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}

// Datasets returns the characteristics, valuation, address and parcel
// universe queries in that order.
func Datasets(p QueryParams) []Dataset {
	zips := quoteList(p.ZipCodes)
	return []Dataset{
		{
			Name:     "characteristics",
			Resource: "x54s-btds",
			FileName: dataset.CharacteristicsFile,
			Query: fmt.Sprintf(`SELECT
  pin,
  class,
  township_code,
  char_beds AS num_bedrooms,
  char_type_resd AS type_of_residence,
  char_apts AS num_apartments,
  char_ncu AS num_commercial_units
WHERE
  (year = %d)
  AND caseless_eq(township_code, %q)
  AND caseless_ne(char_use, "Single-Family")
LIMIT 100000`, p.Year, p.TownshipCode),
		},
		{
			Name:     "valuations",
			Resource: "csik-bsws",
			FileName: dataset.ValuationsFile,
			Query: fmt.Sprintf(`SELECT
  keypin,
  year,
  tot_units
WHERE (year > %d)
  AND caseless_eq(township, %q)
LIMIT 100000`, p.Year-4, p.TownshipName),
		},
		{
			Name:     "addresses",
			Resource: "3723-97qp",
			FileName: dataset.AddressesFile,
			Query: fmt.Sprintf(`SELECT
  pin,
  pin10,
  year AS tax_year,
  prop_address_full AS property_address,
  prop_address_city_name AS property_city,
  prop_address_state AS property_state,
  prop_address_zipcode_1 AS property_zip,
  mail_address_name AS mailing_name,
  mail_address_full AS mailing_address,
  mail_address_city_name AS mailing_city,
  mail_address_state AS mailing_state,
  mail_address_zipcode_1 AS mailing_zip
WHERE
  year IN ("%d")
  AND caseless_one_of(prop_address_zipcode_1, %s)
LIMIT 100000`, p.Year, zips),
		},
		{
			Name:     "parcel_universe",
			Resource: "pabr-t5kh",
			FileName: dataset.UniverseFile,
			Query: fmt.Sprintf(`SELECT
  pin,
  pin10,
  class,
  lon AS longitude,
  lat AS latitude,
  ward_num,
  chicago_community_area_num,
  chicago_community_area_name
WHERE caseless_one_of(zip_code, %s)
LIMIT 150000`, zips),
		},
	}
}
