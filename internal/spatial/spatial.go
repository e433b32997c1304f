// Package spatial provides R-tree indexes and planar predicates for the
// auxiliary datasets: point proximity lookup for the N50/N100 name layers
// and containment/boundary math for building footprints.
package spatial

import (
	"math"

	"github.com/tidwall/rtree"
	"github.com/twpayne/go-geom"
)

// earthRadiusM is the mean Earth radius used by the distance approximation.
const earthRadiusM = 6371000.0

// DistanceM returns the approximate distance in meters between two lon/lat
// coordinates. Equirectangular approximation; accurate well below 1% at
// the sub-kilometer ranges this tool works with.
func DistanceM(a, b geom.Coord) float64 {
	latRad := (a[1] + b[1]) / 2 * math.Pi / 180
	dx := (b[0] - a[0]) * math.Pi / 180 * math.Cos(latRad)
	dy := (b[1] - a[1]) * math.Pi / 180
	return earthRadiusM * math.Sqrt(dx*dx+dy*dy)
}

// degreesForMeters returns a latitude/longitude search radius in degrees
// covering m meters around the given latitude.
func degreesForMeters(m, lat float64) (dLon, dLat float64) {
	dLat = m / earthRadiusM * 180 / math.Pi
	cos := math.Cos(lat * math.Pi / 180)
	if cos < 0.1 {
		cos = 0.1 // far arctic; overshoot rather than undershoot
	}
	dLon = dLat / cos
	return dLon, dLat
}

// PointIndex is an R-tree over point payloads.
type PointIndex[T any] struct {
	tree rtree.RTreeG[T]
	pos  func(T) geom.Coord
}

// NewPointIndex builds an index over items located by pos.
func NewPointIndex[T any](items []T, pos func(T) geom.Coord) *PointIndex[T] {
	idx := &PointIndex[T]{pos: pos}
	for _, item := range items {
		c := pos(item)
		p := [2]float64{c[0], c[1]}
		idx.tree.Insert(p, p, item)
	}
	return idx
}

// Len returns the number of indexed points.
func (idx *PointIndex[T]) Len() int {
	return idx.tree.Len()
}

// Nearest returns the closest item within maxDistM meters of c for which
// match returns true. found is false when nothing qualifies.
func (idx *PointIndex[T]) Nearest(c geom.Coord, maxDistM float64, match func(T) bool) (best T, bestDist float64, found bool) {
	dLon, dLat := degreesForMeters(maxDistM, c[1])
	min := [2]float64{c[0] - dLon, c[1] - dLat}
	max := [2]float64{c[0] + dLon, c[1] + dLat}

	bestDist = math.MaxFloat64
	idx.tree.Search(min, max, func(_, _ [2]float64, item T) bool {
		if !match(item) {
			return true
		}
		d := DistanceM(c, idx.pos(item))
		if d <= maxDistM && d < bestDist {
			best = item
			bestDist = d
			found = true
		}
		return true
	})
	return best, bestDist, found
}

// Polygon is a closed footprint: exterior ring first, optional holes after.
// Rings repeat their first vertex at the end.
type Polygon struct {
	Rings [][]geom.Coord
}

// Valid reports whether the polygon has a usable exterior ring.
func (p *Polygon) Valid() bool {
	return len(p.Rings) > 0 && len(p.Rings[0]) >= 4
}

// Bounds returns the bounding box of the exterior ring.
func (p *Polygon) Bounds() (min, max [2]float64) {
	min = [2]float64{math.MaxFloat64, math.MaxFloat64}
	max = [2]float64{-math.MaxFloat64, -math.MaxFloat64}
	for _, c := range p.Rings[0] {
		min[0] = math.Min(min[0], c[0])
		min[1] = math.Min(min[1], c[1])
		max[0] = math.Max(max[0], c[0])
		max[1] = math.Max(max[1], c[1])
	}
	return min, max
}

// Contains reports whether c lies inside the polygon (even-odd rule across
// all rings, so holes are excluded).
func (p *Polygon) Contains(c geom.Coord) bool {
	if !p.Valid() {
		return false
	}
	inside := false
	for _, ring := range p.Rings {
		if rayCast(ring, c) {
			inside = !inside
		}
	}
	return inside
}

// rayCast runs the even-odd crossing test for one ring.
func rayCast(ring []geom.Coord, c geom.Coord) bool {
	crossed := false
	n := len(ring)
	for i := 0; i < n-1; i++ {
		a, b := ring[i], ring[i+1]
		if (a[1] > c[1]) != (b[1] > c[1]) {
			x := a[0] + (c[1]-a[1])/(b[1]-a[1])*(b[0]-a[0])
			if c[0] < x {
				crossed = !crossed
			}
		}
	}
	return crossed
}

// NearestBoundary returns the closest point to c on the exterior ring.
// ok is false for degenerate rings or when c coincides with the boundary.
func (p *Polygon) NearestBoundary(c geom.Coord) (geom.Coord, bool) {
	if !p.Valid() {
		return nil, false
	}

	best := geom.Coord{0, 0}
	bestDist := math.MaxFloat64
	ring := p.Rings[0]
	for i := 0; i < len(ring)-1; i++ {
		q := nearestOnSegment(ring[i], ring[i+1], c)
		d := DistanceM(c, q)
		if d < bestDist {
			bestDist = d
			best = q
		}
	}

	if bestDist == math.MaxFloat64 || bestDist == 0 {
		return nil, false
	}
	return best, true
}

// nearestOnSegment projects c onto segment ab, clamped to the endpoints.
func nearestOnSegment(a, b, c geom.Coord) geom.Coord {
	abx := b[0] - a[0]
	aby := b[1] - a[1]
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return geom.Coord{a[0], a[1]}
	}
	t := ((c[0]-a[0])*abx + (c[1]-a[1])*aby) / lenSq
	t = math.Max(0, math.Min(1, t))
	return geom.Coord{a[0] + t*abx, a[1] + t*aby}
}

// PolygonIndex is an R-tree over footprint polygons.
type PolygonIndex struct {
	tree rtree.RTreeG[*Polygon]
	size int
}

// NewPolygonIndex builds an index over the given polygons, skipping
// degenerate ones.
func NewPolygonIndex(polygons []*Polygon) *PolygonIndex {
	idx := &PolygonIndex{}
	for _, p := range polygons {
		if !p.Valid() {
			continue
		}
		min, max := p.Bounds()
		idx.tree.Insert(min, max, p)
		idx.size++
	}
	return idx
}

// Len returns the number of indexed polygons.
func (idx *PolygonIndex) Len() int {
	return idx.size
}

// Containing returns the first polygon containing c, or nil.
func (idx *PolygonIndex) Containing(c geom.Coord) *Polygon {
	var hit *Polygon
	p := [2]float64{c[0], c[1]}
	idx.tree.Search(p, p, func(_, _ [2]float64, poly *Polygon) bool {
		if poly.Contains(c) {
			hit = poly
			return false
		}
		return true
	})
	return hit
}

// ContainsAny reports whether any indexed polygon contains c.
func (idx *PolygonIndex) ContainsAny(c geom.Coord) bool {
	return idx.Containing(c) != nil
}

// OffsetM returns the coordinate m meters from origin in the direction of
// toward (which must differ from origin).
func OffsetM(origin, toward geom.Coord, m float64) geom.Coord {
	dLonM := (toward[0] - origin[0]) * math.Cos(origin[1]*math.Pi/180)
	dLatM := toward[1] - origin[1]
	norm := math.Sqrt(dLonM*dLonM + dLatM*dLatM)
	if norm == 0 {
		return geom.Coord{toward[0], toward[1]}
	}
	scaleLat := m / earthRadiusM * 180 / math.Pi / norm
	cos := math.Cos(origin[1] * math.Pi / 180)
	if cos < 0.1 {
		cos = 0.1
	}
	return geom.Coord{
		toward[0] + dLonM*scaleLat/cos,
		toward[1] + dLatM*scaleLat,
	}
}
