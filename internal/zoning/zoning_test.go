package zoning

import (
	"database/sql"
	"math"
	"path/filepath"
	"testing"

	shp "github.com/jonas-p/go-shp"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/types"
)

func TestWGS84ToILEast(t *testing.T) {
	tests := []struct {
		name         string
		lat, lon     float64
		wantN, wantE float64
	}{
		{"origin", phi0Deg, lon0Deg, 0, 984250},
		{"chicago loop", 41.8781, -87.6298, 1898954.88, 1175844.40},
	}
	for _, tt := range tests {
		n, e := wgs84ToILEast(tt.lat, tt.lon)
		if math.Abs(n-tt.wantN) > 1 || math.Abs(e-tt.wantE) > 1 {
			t.Errorf("%s: got (%.2f, %.2f), want (%.2f, %.2f)", tt.name, n, e, tt.wantN, tt.wantE)
		}
	}
}

func TestPointInPolygon(t *testing.T) {
	square := [][2]float64{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}
	tests := []struct {
		lat, lon float64
		want     bool
	}{
		{5, 5, true},
		{0.5, 9.5, true},
		{11, 5, false},
		{5, -1, false},
	}
	for _, tt := range tests {
		if got := pointInPolygon(tt.lat, tt.lon, square); got != tt.want {
			t.Errorf("pointInPolygon(%v, %v) = %v, want %v", tt.lat, tt.lon, got, tt.want)
		}
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		in      string
		want    Source
		wantErr bool
	}{
		{"zoning.shp", Source{Path: "zoning.shp", CRS: WGS84}, false},
		{"data/zoning.shp:il-east", Source{Path: "data/zoning.shp", CRS: ILEast}, false},
		{"data/zoning.shp:WGS84", Source{Path: "data/zoning.shp", CRS: WGS84}, false},
		{`C:\gis\zoning.shp`, Source{Path: `C:\gis\zoning.shp`, CRS: WGS84}, false},
		{"zoning.shp:mercator", Source{}, true},
		{"", Source{}, true},
	}
	for _, tt := range tests {
		got, err := ParseSource(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSource(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSource(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

// writeSquare writes a one-polygon shapefile with a ZONE_CLASS attribute.
func writeSquare(t *testing.T, path string, minY, minX, maxY, maxX float64, zone string) {
	t.Helper()
	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		t.Fatalf("create shapefile: %v", err)
	}
	defer w.Close()

	if err := w.SetFields([]shp.Field{shp.StringField("ZONE_CLASS", 16)}); err != nil {
		t.Fatalf("set fields: %v", err)
	}
	ring := []shp.Point{
		{X: minX, Y: minY}, {X: minX, Y: maxY}, {X: maxX, Y: maxY}, {X: maxX, Y: minY}, {X: minX, Y: minY},
	}
	poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{ring}))
	row := w.Write(&poly)
	if err := w.WriteAttribute(int(row), 0, zone); err != nil {
		t.Fatalf("write attribute: %v", err)
	}
}

func TestLayersAnnotate(t *testing.T) {
	dir := t.TempDir()
	degrees := filepath.Join(dir, "logan.shp")
	writeSquare(t, degrees, 41.94, -87.71, 41.95, -87.70, "RS-3")

	feet := filepath.Join(dir, "loop.shp")
	writeSquare(t, feet, 1898000, 1175000, 1900000, 1177000, "DC-16")

	layers, err := Load(Source{Path: degrees, CRS: WGS84}, Source{Path: feet, CRS: ILEast})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(layers) != 2 || layers[0].Len() != 1 {
		t.Fatalf("unexpected layers: %d", len(layers))
	}

	coord := func(v float64) sql.NullFloat64 { return sql.NullFloat64{Float64: v, Valid: true} }
	parcels := []types.Parcel{
		{PIN: "logan", Latitude: coord(41.945), Longitude: coord(-87.705)},
		{PIN: "loop", Latitude: coord(41.8781), Longitude: coord(-87.6298)},
		{PIN: "elsewhere", Latitude: coord(41.70), Longitude: coord(-87.60)},
		{PIN: "no coords"},
	}

	if n := layers.Annotate(parcels); n != 2 {
		t.Errorf("Annotate matched %d, want 2", n)
	}
	want := map[string]string{"logan": "RS-3", "loop": "DC-16"}
	for _, p := range parcels {
		if got := p.Zoning.String; got != want[p.PIN] || p.Zoning.Valid != (want[p.PIN] != "") {
			t.Errorf("%s: zoning = %+v, want %q", p.PIN, p.Zoning, want[p.PIN])
		}
	}
}

func TestZoneCodeFallback(t *testing.T) {
	if code, ok := ZoneCode(map[string]string{"ZONING": "B3-2", "ZONE": "X"}); !ok || code != "B3-2" {
		t.Errorf("ZoneCode = %q, %v", code, ok)
	}
	if _, ok := ZoneCode(map[string]string{"OTHER": "x"}); ok {
		t.Error("ZoneCode should fail without a zoning field")
	}
}
