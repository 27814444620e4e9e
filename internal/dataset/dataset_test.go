package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const addressesCSV = `pin,pin10,tax_year,property_address,property_city,property_state,property_zip,mailing_name,mailing_address,mailing_city,mailing_state,mailing_zip
13261000010000,1326100001,2025,"2800 N KEDZIE AVE",CHICAGO,IL,60618,"SMITH, JOHN",2800 N KEDZIE AVE,CHICAGO,IL,60618
01011000020000,0101100002,2025,,,,,,,,,
`

func TestReadAddresses(t *testing.T) {
	recs, stats, err := ReadAddresses(strings.NewReader(addressesCSV))
	if err != nil {
		t.Fatalf("ReadAddresses: %v", err)
	}
	if len(recs) != 2 || stats.Rows != 2 {
		t.Fatalf("got %d records (%d rows), want 2", len(recs), stats.Rows)
	}

	first := recs[0]
	if first.PIN != "13261000010000" || first.PIN10 != "1326100001" {
		t.Errorf("pins = %q/%q", first.PIN, first.PIN10)
	}
	if first.MailingName.String != "SMITH, JOHN" || !first.MailingName.Valid {
		t.Errorf("MailingName = %+v", first.MailingName)
	}
	if !first.TaxYear.Valid || first.TaxYear.Int64 != 2025 {
		t.Errorf("TaxYear = %+v", first.TaxYear)
	}

	second := recs[1]
	if second.PIN != "01011000020000" {
		t.Errorf("leading zeros lost: %q", second.PIN)
	}
	if second.PropertyAddress.Valid || second.MailingAddress.Valid {
		t.Errorf("empty cells should be absent: %+v", second)
	}
}

func TestReadAddresses_TextKeptAsWritten(t *testing.T) {
	const in = "pin,pin10,property_address,mailing_address\n" +
		" 13261000010000 ,1326100001,123 MAIN ST ,123 MAIN ST\n" +
		"13261000020000,1326100002,   ,\n"
	recs, _, err := ReadAddresses(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadAddresses: %v", err)
	}
	if recs[0].PIN != "13261000010000" {
		t.Errorf("PIN = %q, want trimmed key", recs[0].PIN)
	}
	if got := recs[0].PropertyAddress.String; got != "123 MAIN ST " {
		t.Errorf("PropertyAddress = %q, want trailing space kept", got)
	}
	if recs[1].PropertyAddress.Valid || recs[1].MailingAddress.Valid {
		t.Errorf("blank cells should be absent: %+v", recs[1])
	}
}

func TestReadParcelUniverse(t *testing.T) {
	in := "pin,pin10,class,longitude,latitude,ward_num,chicago_community_area_num,chicago_community_area_name\n" +
		"13261000010000,1326100001,211,-87.7,41.93,35,22,LOGAN SQUARE\n" +
		"13261000020000,1326100002,090,not-a-number,,,,\n"

	recs, stats, err := ReadParcelUniverse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadParcelUniverse: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Latitude.Float64 != 41.93 || recs[0].Longitude.Float64 != -87.7 {
		t.Errorf("coords = %+v %+v", recs[0].Latitude, recs[0].Longitude)
	}
	if recs[0].CommunityAreaName.String != "LOGAN SQUARE" {
		t.Errorf("community area = %+v", recs[0].CommunityAreaName)
	}
	if recs[1].Class != "090" {
		t.Errorf("class = %q, want 090", recs[1].Class)
	}
	if recs[1].Longitude.Valid {
		t.Error("malformed longitude should be absent")
	}
	if stats.Malformed != 1 {
		t.Errorf("Malformed = %d, want 1", stats.Malformed)
	}
}

func TestReadValuations(t *testing.T) {
	in := "keypin,year,tot_units\n" +
		"13-26-100-001-0000,2024,12\n" +
		"13-26-100-002-0000,2023,\n" +
		"13-26-100-003-0000,2022,8.0\n"

	recs, _, err := ReadValuations(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadValuations: %v", err)
	}
	if recs[0].KeyPIN != "13-26-100-001-0000" || recs[0].TotUnits.Int64 != 12 {
		t.Errorf("first = %+v", recs[0])
	}
	if recs[1].TotUnits.Valid {
		t.Errorf("empty tot_units should be absent: %+v", recs[1])
	}
	if !recs[2].TotUnits.Valid || recs[2].TotUnits.Int64 != 8 {
		t.Errorf("integral float not accepted: %+v", recs[2])
	}
}

func TestMissingColumn(t *testing.T) {
	_, _, err := ReadUnitCharacteristics(strings.NewReader("pin,class\n1,211\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
	if !strings.Contains(err.Error(), "num_apartments") {
		t.Errorf("error should name the column: %v", err)
	}
}

func TestEmptyFile(t *testing.T) {
	if _, _, err := ReadValuations(strings.NewReader("")); err == nil {
		t.Fatal("expected an error for an empty file")
	}
}

func TestByteOrderMark(t *testing.T) {
	recs, _, err := ReadUnitCharacteristics(strings.NewReader("\ufeffpin,num_apartments\n1,Two\n"))
	if err != nil {
		t.Fatalf("ReadUnitCharacteristics: %v", err)
	}
	if recs[0].PIN != "1" || recs[0].NumApartments.String != "Two" {
		t.Errorf("got %+v", recs[0])
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, CharacteristicsFile, "pin,num_apartments\n1,Two\n")
	writeFile(t, dir, ValuationsFile, "keypin,year,tot_units\n1,2024,3\n")
	writeFile(t, dir, AddressesFile, addressesCSV)
	writeFile(t, dir, UniverseFile, "pin,pin10,class\n13261000010000,1326100001,211\n")

	b, stats, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(b.Characteristics) != 1 || len(b.Valuations) != 1 || len(b.Addresses) != 2 || len(b.Universe) != 1 {
		t.Errorf("unexpected bundle sizes: %d %d %d %d", len(b.Characteristics), len(b.Valuations), len(b.Addresses), len(b.Universe))
	}
	if len(stats) != 4 {
		t.Errorf("got %d table stats, want 4", len(stats))
	}
}

func TestLoadDirMissingTable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, CharacteristicsFile, "pin,num_apartments\n")
	if _, _, err := LoadDir(dir); err == nil {
		t.Fatal("expected an error when a table is missing")
	}
}
