package dataset

import (
	"fmt"
	"os"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/osmno/ssr2osm/internal/spatial"
)

// LoadBuildings reads one municipality's building footprints from a polygon
// shapefile path template. A missing file or empty template disables
// relocation (nil index, no error).
func LoadBuildings(pathTemplate, municipality string) (*spatial.PolygonIndex, error) {
	if pathTemplate == "" {
		return nil, nil
	}
	path := fmt.Sprintf(pathTemplate, municipality)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		zap.L().Debug("building layer not present",
			zap.String("component", "dataset"),
			zap.String("path", path),
		)
		return nil, nil
	}

	r, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer r.Close() //nolint:errcheck

	var polygons []*spatial.Polygon
	for r.Next() {
		_, shape := r.Shape()

		switch p := shape.(type) {
		case *shp.Polygon:
			polygons = append(polygons, polygonRings(p.Parts, p.Points))
		case *shp.PolygonZ:
			polygons = append(polygons, polygonRings(p.Parts, p.Points))
		}
	}

	zap.L().Debug("building layer loaded",
		zap.String("component", "dataset"),
		zap.String("path", path),
		zap.Int("footprints", len(polygons)),
	)
	return spatial.NewPolygonIndex(polygons), nil
}

// polygonRings splits a shapefile part table into rings, converting each
// vertex to lon/lat.
func polygonRings(parts []int32, points []shp.Point) *spatial.Polygon {
	poly := &spatial.Polygon{}
	for i, start := range parts {
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		ring := make([]geom.Coord, 0, end-int(start))
		for _, pt := range points[start:end] {
			ring = append(ring, toLonLat(pt.X, pt.Y))
		}
		poly.Rings = append(poly.Rings, ring)
	}
	return poly
}
