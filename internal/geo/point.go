// Package geo holds the planar Mercator primitives used by the pre-ranker:
// points, axis-aligned rectangles and great-circle distance between points.
package geo

import "math"

const (
	earthRadiusMeters = 6378000.0

	// Bounds of the Mercator plane.
	MinX = -180.0
	MaxX = 180.0
	MinY = -180.0
	MaxY = 180.0
)

// Point is a position on the Mercator plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FromLatLon projects geographic coordinates onto the Mercator plane.
func FromLatLon(lat, lon float64) Point {
	lat = clamp(lat, -86.0, 86.0)
	rad := lat * math.Pi / 180
	y := 180 / math.Pi * math.Log(math.Tan(math.Pi/4+rad/2))
	return Point{X: clamp(lon, MinX, MaxX), Y: clamp(y, MinY, MaxY)}
}

// LatLon returns the geographic coordinates of p.
func (p Point) LatLon() (lat, lon float64) {
	lat = 180 / math.Pi * (2*math.Atan(math.Exp(p.Y*math.Pi/180)) - math.Pi/2)
	return lat, p.X
}

// DistanceOnEarth returns the great-circle distance in meters between two
// Mercator points.
func DistanceOnEarth(a, b Point) float64 {
	lat1, lon1 := a.LatLon()
	lat2, lon2 := b.LatLon()
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := phi2 - phi1
	dLambda := (lon2 - lon1) * math.Pi / 180
	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
