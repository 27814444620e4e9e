package zoning

// WGS-84 → NAD83 Illinois East (EPSG:3435) transverse Mercator, US feet.
// Chicago's zoning layers are published in this CRS; parcel lat/lon is
// projected before point-in-polygon testing.

import "math"

const (
	spFalseEasting  = 984250.0 // 300000 m
	spFalseNorthing = 0.0
	phi0Deg         = 36.66666666666667  // latitude of origin
	lon0Deg         = -88.33333333333333 // central meridian
	k0              = 0.999975           // scale factor on the central meridian

	ftPerMeter = 3.2808333333333334 // US survey foot
	semiMajorM = 6378137.0          // GRS80 semi-major axis (metres)
	e2         = 0.00669438002290   // GRS80 eccentricity squared
)

var (
	ep2 = e2 / (1 - e2)
	m0  = meridianArc(phi0Deg * math.Pi / 180)
)

// meridianArc is the distance in metres along the meridian from the equator
// to latitude phi.
func meridianArc(phi float64) float64 {
	e4 := e2 * e2
	e6 := e4 * e2
	return semiMajorM * ((1-e2/4-3*e4/64-5*e6/256)*phi -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*phi) +
		(15*e4/256+45*e6/1024)*math.Sin(4*phi) -
		(35*e6/3072)*math.Sin(6*phi))
}

// wgs84ToILEast converts latitude/longitude in decimal degrees to Illinois
// East state plane feet. It returns (northingFt, eastingFt), the (lat, lon)
// ordering used by feature rings.
func wgs84ToILEast(latDeg, lonDeg float64) (northingFt, eastingFt float64) {
	phi := latDeg * math.Pi / 180
	lambda := lonDeg * math.Pi / 180
	lambda0 := lon0Deg * math.Pi / 180

	sin, cos, tan := math.Sin(phi), math.Cos(phi), math.Tan(phi)
	n := semiMajorM / math.Sqrt(1-e2*sin*sin)
	t := tan * tan
	c := ep2 * cos * cos
	a := (lambda - lambda0) * cos

	x := k0 * n * (a +
		(1-t+c)*math.Pow(a, 3)/6 +
		(5-18*t+t*t+72*c-58*ep2)*math.Pow(a, 5)/120)
	y := k0 * (meridianArc(phi) - m0 + n*tan*(a*a/2+
		(5-t+9*c+4*c*c)*math.Pow(a, 4)/24+
		(61-58*t+t*t+600*c-330*ep2)*math.Pow(a, 6)/720))

	eastingFt = x*ftPerMeter + spFalseEasting
	northingFt = y*ftPerMeter + spFalseNorthing
	return
}
