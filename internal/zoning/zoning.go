// Package zoning annotates parcels with the zoning district that contains
// them, read from polygon shapefiles.
package zoning

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	shp "github.com/jonas-p/go-shp"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/types"
)

// CRS names the coordinate system a layer's polygons are stored in.
type CRS string

const (
	// WGS84 layers store longitude/latitude degrees.
	WGS84 CRS = "wgs84"
	// ILEast layers store NAD83 Illinois East state plane feet.
	ILEast CRS = "il-east"
)

// zoneFields are the attribute names tried, in order, for the zoning code.
var zoneFields = []string{"ZONE_CLASS", "ZONING", "ZONE"}

// Source is a shapefile path and the CRS of its geometry.
type Source struct {
	Path string
	CRS  CRS
}

// ParseSource parses "path[:crs]". Without a suffix the layer is WGS84.
func ParseSource(s string) (Source, error) {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, ":"); i > 0 {
		switch crs := CRS(strings.ToLower(s[i+1:])); crs {
		case WGS84, ILEast:
			return Source{Path: s[:i], CRS: crs}, nil
		}
	}
	if s == "" {
		return Source{}, fmt.Errorf("empty zoning layer")
	}
	if !strings.EqualFold(filepath.Ext(s), ".shp") {
		return Source{}, fmt.Errorf("zoning layer %q: want a .shp path with optional :wgs84 or :il-east", s)
	}
	return Source{Path: s, CRS: WGS84}, nil
}

// feature is a polygon (possibly multi-part) with its attribute values.
type feature struct {
	Parts  [][][2]float64 // Each part is a closed ring of [y, x] points
	Attrs  map[string]string
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Layer is one loaded shapefile.
type Layer struct {
	Source
	features []feature
}

// Len is the number of polygons in the layer.
func (l *Layer) Len() int { return len(l.features) }

// LoadLayer reads every polygon of the shapefile at src.Path. Other geometry
// types are skipped.
func LoadLayer(src Source) (*Layer, error) {
	r, err := shp.Open(src.Path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	fields := r.Fields()

	layer := &Layer{Source: src}
	for r.Next() {
		idx, shape := r.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}

		attrs := make(map[string]string, len(fields))
		for i, f := range fields {
			attrs[f.String()] = strings.TrimSpace(strings.TrimRight(r.ReadAttribute(idx, i), "\x00"))
		}
		layer.features = append(layer.features, newFeature(poly.Parts, poly.Points, attrs))
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Path, err)
	}
	return layer, nil
}

// newFeature splits the flat point slice into rings and records the bbox.
func newFeature(partStarts []int32, points []shp.Point, attrs map[string]string) feature {
	numParts := len(partStarts)
	parts := make([][][2]float64, numParts)

	minLat, minLon := math.MaxFloat64, math.MaxFloat64
	maxLat, maxLon := -math.MaxFloat64, -math.MaxFloat64

	for partIdx := 0; partIdx < numParts; partIdx++ {
		start := partStarts[partIdx]
		end := int32(len(points))
		if partIdx+1 < numParts {
			end = partStarts[partIdx+1]
		}
		ring := make([][2]float64, 0, int(end-start))
		for i := start; i < end; i++ {
			pt := points[i]
			ring = append(ring, [2]float64{pt.Y, pt.X})
			minLat = math.Min(minLat, pt.Y)
			maxLat = math.Max(maxLat, pt.Y)
			minLon = math.Min(minLon, pt.X)
			maxLon = math.Max(maxLon, pt.X)
		}
		parts[partIdx] = ring
	}

	return feature{
		Parts:  parts,
		Attrs:  attrs,
		MinLat: minLat,
		MinLon: minLon,
		MaxLat: maxLat,
		MaxLon: maxLon,
	}
}

// Lookup returns the attributes of the first polygon containing the WGS84
// point. Points are projected when the layer is in state plane feet.
func (l *Layer) Lookup(lat, lon float64) (map[string]string, bool) {
	y, x := lat, lon
	if l.CRS == ILEast {
		y, x = wgs84ToILEast(lat, lon)
	}
	for _, z := range l.features {
		if y < z.MinLat || y > z.MaxLat || x < z.MinLon || x > z.MaxLon {
			continue
		}
		for _, ring := range z.Parts {
			if pointInPolygon(y, x, ring) {
				return z.Attrs, true
			}
		}
	}
	return nil, false
}

// pointInPolygon is the ray-casting test. Shapefile rings are closed.
func pointInPolygon(lat, lon float64, ring [][2]float64) bool {
	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		yi, xi := ring[i][0], ring[i][1]
		yj, xj := ring[j][0], ring[j][1]
		if ((yi > lat) != (yj > lat)) && (lon < (xj-xi)*(lat-yi)/(yj-yi)+xi) {
			inside = !inside
		}
		j = i
	}
	return inside
}

// ZoneCode picks the zoning code out of a feature's attributes.
func ZoneCode(attrs map[string]string) (string, bool) {
	for _, f := range zoneFields {
		if v := attrs[f]; v != "" {
			return v, true
		}
	}
	return "", false
}

// Layers is searched in order; the first layer with a match wins.
type Layers []*Layer

// Load reads each source in order.
func Load(sources ...Source) (Layers, error) {
	layers := make(Layers, 0, len(sources))
	for _, src := range sources {
		l, err := LoadLayer(src)
		if err != nil {
			return nil, fmt.Errorf("load zoning shapefile %s: %w", src.Path, err)
		}
		layers = append(layers, l)
	}
	return layers, nil
}

// Zone returns the zoning code for a WGS84 point.
func (ls Layers) Zone(lat, lon float64) (string, bool) {
	for _, l := range ls {
		if attrs, ok := l.Lookup(lat, lon); ok {
			if code, ok := ZoneCode(attrs); ok {
				return code, true
			}
		}
	}
	return "", false
}

// Annotate sets Zoning on every parcel with coordinates inside a layer and
// returns how many were matched.
func (ls Layers) Annotate(parcels []types.Parcel) int {
	if len(ls) == 0 {
		return 0
	}
	matched := 0
	for i := range parcels {
		p := &parcels[i]
		if !p.Latitude.Valid || !p.Longitude.Valid {
			continue
		}
		if code, ok := ls.Zone(p.Latitude.Float64, p.Longitude.Float64); ok {
			p.Zoning.String, p.Zoning.Valid = code, true
			matched++
		}
	}
	return matched
}
