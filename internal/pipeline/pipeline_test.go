package pipeline

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/address"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/database"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/dataset"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/export"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/occupancy"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/types"
)

var fixtures = map[string]string{
	dataset.AddressesFile: `pin,pin10,tax_year,property_address,property_city,property_state,property_zip,mailing_name,mailing_address,mailing_city,mailing_state,mailing_zip
13261000010000,1326100001,2025,123 N MAIN ST,CHICAGO,IL,60618,JANE DOE,123 N MAIN ST,CHICAGO,IL,60618
13261000020000,1326100002,2025,200 W ELM ST,CHICAGO,IL,60618,ELM PROPERTIES LLC,1 LAKE ST,CHICAGO,IL,60601
13261000030000,1326100003,2025,300 W ELM ST,CHICAGO,IL,60618,JOHN SMITH,1 LAKE ST,CHICAGO,IL,60601
13261000040000,1326100004,2025,400 W OAK ST,CHICAGO,IL,60618,BOB JONES,400 W OAK ST,CHICAGO,IL,60618
13261000050000,1326100005,2025,500 W OAK ST,CHICAGO,IL,60618,NO MATCH,500 W OAK ST,CHICAGO,IL,60618
`,
	dataset.UniverseFile: `pin,pin10,class,latitude,longitude,ward_num,chicago_community_area_name
13261000010000,1326100001,203,41.95,-87.70,35,AVONDALE
13261000020000,1326100002,313,41.95,-87.71,35,AVONDALE
13261000030000,1326100003,211,,,35,AVONDALE
13261000040000,1326100004,590,41.96,-87.72,33,IRVING PARK
13261000060000,1326100006,299,41.96,-87.73,33,IRVING PARK
`,
	dataset.CharacteristicsFile: `pin,num_apartments
13261000030000,Two
`,
	dataset.ValuationsFile: `keypin,year,tot_units
13-26-100-002-0000,2024,12
`,
}

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range fixtures {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func checkResult(t *testing.T, res *Result) {
	t.Helper()
	if len(res.Parcels) != 4 {
		t.Fatalf("got %d parcels, want 4 (one address and one universe row unmatched)", len(res.Parcels))
	}
	if len(res.Rentals) != 2 {
		t.Fatalf("got %d rentals, want 2", len(res.Rentals))
	}
	if got := res.Parcels[0]; !got.IsOwnerOccupied || got.AddressSimilarityScore != 100 || got.TotalUnits != 1 {
		t.Errorf("owner-occupied parcel = %+v", got)
	}
	if got := res.Parcels[1]; !got.IsCorporateOwned || got.TotalUnits != 12 {
		t.Errorf("corporate parcel = %+v", got)
	}
	if got := res.Parcels[2]; got.TotalUnits != 2 || got.IsOwnerOccupied {
		t.Errorf("two-flat = %+v", got)
	}
	want := types.LandlordAggregate{TaxpayerAddress: "1 LAKE ST", TaxpayerCity: "CHICAGO", TotalUnitsCount: 14, ParcelCount: 2}
	if len(res.Landlords) != 1 || res.Landlords[0] != want {
		t.Errorf("landlords = %+v, want [%+v]", res.Landlords, want)
	}
}

func TestAnalysis_CSV(t *testing.T) {
	dataDir := writeFixtures(t)
	outDir := filepath.Join(t.TempDir(), "output")
	dbPath := filepath.Join(t.TempDir(), "ownership.db")

	a := Analysis{
		Load:       CSVLoader(dataDir),
		Classifier: occupancy.NewClassifier(address.USTagger{}),
		Workers:    2,
		OutputDir:  outDir,
		SQLitePath: dbPath,
	}
	res, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	checkResult(t, res)

	for _, name := range []string{export.OwnershipFile, export.RentalFile, export.GroupedFile} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing export %s: %v", name, err)
		}
	}
	grouped, err := os.ReadFile(filepath.Join(outDir, export.GroupedFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(grouped), "1 LAKE ST,CHICAGO,14,2") {
		t.Errorf("grouped export = %q", grouped)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM landlords`).Scan(&n); err != nil || n != 1 {
		t.Errorf("landlords table rows = %d (%v), want 1", n, err)
	}
}

func TestAnalysis_MissingInput(t *testing.T) {
	dataDir := writeFixtures(t)
	if err := os.Remove(filepath.Join(dataDir, dataset.ValuationsFile)); err != nil {
		t.Fatal(err)
	}
	a := Analysis{
		Load:       CSVLoader(dataDir),
		Classifier: occupancy.NewClassifier(address.USTagger{}),
		OutputDir:  t.TempDir(),
	}
	if _, err := a.Run(context.Background()); err == nil {
		t.Error("expected an error when an input table is missing")
	}
}

func TestAnalysis_SQL(t *testing.T) {
	dataDir := writeFixtures(t)
	bundle, _, err := dataset.LoadDir(dataDir)
	if err != nil {
		t.Fatal(err)
	}

	config := database.DBConfig{
		Driver: database.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "source.db"),
		Tables: database.DefaultTables(),
	}
	seed(t, config, bundle)

	res, err := Analysis{
		Load:       SQLLoader(config),
		Classifier: occupancy.NewClassifier(address.USTagger{}),
		OutputDir:  t.TempDir(),
	}.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	checkResult(t, res)
}

// seed copies a bundle into SQLite tables named like the defaults.
func seed(t *testing.T, config database.DBConfig, b *types.Bundle) {
	t.Helper()
	d, err := database.NewDatabase(config)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	db := d.DB()

	stmts := []string{
		`CREATE TABLE parcel_addresses (pin TEXT, pin10 TEXT, tax_year INTEGER,
			property_address TEXT, property_city TEXT, property_state TEXT, property_zip TEXT,
			mailing_name TEXT, mailing_address TEXT, mailing_city TEXT, mailing_state TEXT, mailing_zip TEXT)`,
		`CREATE TABLE parcel_universe (pin TEXT, pin10 TEXT, class TEXT, latitude REAL, longitude REAL,
			ward_num TEXT, chicago_community_area_name TEXT)`,
		`CREATE TABLE multi_family_improvement_characteristics (pin TEXT, num_apartments TEXT)`,
		`CREATE TABLE apartment_commercial_valuation_data (keypin TEXT, year INTEGER, tot_units INTEGER)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatal(err)
		}
	}
	for _, a := range b.Addresses {
		_, err := db.Exec(`INSERT INTO parcel_addresses VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
			a.PIN, a.PIN10, a.TaxYear, a.PropertyAddress, a.PropertyCity, a.PropertyState, a.PropertyZip,
			a.MailingName, a.MailingAddress, a.MailingCity, a.MailingState, a.MailingZip)
		if err != nil {
			t.Fatal(err)
		}
	}
	for _, u := range b.Universe {
		_, err := db.Exec(`INSERT INTO parcel_universe VALUES (?,?,?,?,?,?,?)`,
			u.PIN, u.PIN10, u.Class, u.Latitude, u.Longitude, u.WardNum, u.CommunityAreaName)
		if err != nil {
			t.Fatal(err)
		}
	}
	for _, c := range b.Characteristics {
		if _, err := db.Exec(`INSERT INTO multi_family_improvement_characteristics VALUES (?,?)`, c.PIN, c.NumApartments); err != nil {
			t.Fatal(err)
		}
	}
	for _, v := range b.Valuations {
		if _, err := db.Exec(`INSERT INTO apartment_commercial_valuation_data VALUES (?,?,?)`, v.KeyPIN, v.Year, v.TotUnits); err != nil {
			t.Fatal(err)
		}
	}
}

func TestOutreach(t *testing.T) {
	dataDir := writeFixtures(t)
	outDir := t.TempDir()

	rows, err := Outreach{Load: CSVOutreachLoader(dataDir), OutputDir: outDir}.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 313 joins; 299 has no address row; 203, 211 and 590 are not apartment classes.
	if len(rows) != 1 || rows[0].PIN != "13261000020000" || rows[0].MailingName.String != "ELM PROPERTIES LLC" {
		t.Errorf("outreach rows = %+v", rows)
	}
	if _, err := os.Stat(filepath.Join(outDir, export.OutreachFile)); err != nil {
		t.Errorf("missing outreach export: %v", err)
	}
}
