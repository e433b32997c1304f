// Package proj converts between UTM zone 33N (EPSG:25833, the projection of
// Geonorge GML extracts) and WGS84 geographic coordinates.
package proj

import "math"

// WGS84 ellipsoid and UTM parameters.
const (
	semiMajor    = 6378137.0
	flattening   = 1 / 298.257223563
	scaleFactor  = 0.9996
	falseEasting = 500000.0
	// Central meridian of UTM zone 33, degrees.
	zone33Meridian = 15.0
)

var (
	e2 = flattening * (2 - flattening) // first eccentricity squared
	ep = e2 / (1 - e2)                 // second eccentricity squared
	e1 = (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
)

// UTM33ToLatLon converts UTM zone 33N easting/northing to latitude and
// longitude in degrees. Transverse Mercator inverse series (Snyder, Map
// Projections - A Working Manual, eq. 8-17..8-25) extended with the
// seventh- and eighth-order terms; Norway spans 15 degrees east of the
// zone meridian, where the sixth-order truncation drifts tens of metres.
func UTM33ToLatLon(easting, northing float64) (lat, lon float64) {
	x := easting - falseEasting
	m := northing / scaleFactor

	mu := m / (semiMajor * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	phi1 := mu +
		(3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu) +
		(1097*e1*e1*e1*e1/512)*math.Sin(8*mu)

	sin1 := math.Sin(phi1)
	cos1 := math.Cos(phi1)
	tan1 := math.Tan(phi1)

	c1 := ep * cos1 * cos1
	t1 := tan1 * tan1
	n1 := semiMajor / math.Sqrt(1-e2*sin1*sin1)
	r1 := semiMajor * (1 - e2) / math.Pow(1-e2*sin1*sin1, 1.5)

	d := x / (n1 * scaleFactor)
	d2 := d * d
	d3 := d2 * d
	d4 := d2 * d2
	d5 := d4 * d
	d6 := d4 * d2
	d7 := d6 * d
	d8 := d4 * d4

	latRad := phi1 - (n1*tan1/r1)*(d2/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep)*d4/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep-3*c1*c1)*d6/720-
		(1385+3633*t1+4095*t1*t1+1575*t1*t1*t1)*d8/40320)

	lonRad := (d -
		(1+2*t1+c1)*d3/6 +
		(5-2*c1+28*t1-3*c1*c1+8*ep+24*t1*t1)*d5/120 -
		(61+662*t1+1320*t1*t1+720*t1*t1*t1)*d7/5040) / cos1

	lat = latRad * 180 / math.Pi
	lon = zone33Meridian + lonRad*180/math.Pi
	return lat, lon
}

// LatLonToUTM33 converts latitude/longitude in degrees to UTM zone 33N
// easting/northing. Forward Transverse Mercator series with the matching
// seventh- and eighth-order terms; used for round-trip verification.
func LatLonToUTM33(lat, lon float64) (easting, northing float64) {
	phi := lat * math.Pi / 180
	dLon := (lon - zone33Meridian) * math.Pi / 180

	sinP := math.Sin(phi)
	cosP := math.Cos(phi)
	tanP := math.Tan(phi)

	n := semiMajor / math.Sqrt(1-e2*sinP*sinP)
	t := tanP * tanP
	c := ep * cosP * cosP

	a := cosP * dLon
	a2 := a * a
	a3 := a2 * a
	a4 := a2 * a2
	a5 := a4 * a
	a6 := a4 * a2
	a7 := a6 * a
	a8 := a4 * a4

	m := semiMajor * ((1-e2/4-3*e2*e2/64-5*e2*e2*e2/256)*phi -
		(3*e2/8+3*e2*e2/32+45*e2*e2*e2/1024)*math.Sin(2*phi) +
		(15*e2*e2/256+45*e2*e2*e2/1024)*math.Sin(4*phi) -
		(35*e2*e2*e2/3072)*math.Sin(6*phi))

	easting = falseEasting + scaleFactor*n*(a+
		(1-t+c)*a3/6+
		(5-18*t+t*t+72*c-58*ep)*a5/120+
		(61-479*t+179*t*t-t*t*t)*a7/5040)

	northing = scaleFactor * (m + n*tanP*(a2/2+
		(5-t+9*c+4*c*c)*a4/24+
		(61-58*t+t*t+600*c-330*ep)*a6/720+
		(1385-3111*t+543*t*t-t*t*t)*a8/40320))

	return easting, northing
}
