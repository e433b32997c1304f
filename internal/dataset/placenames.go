// Package dataset loads the auxiliary Kartverket map products: the N50 and
// N100 place-name point layers and building footprint polygons, read from
// shapefiles into spatial indexes.
package dataset

import (
	"fmt"
	"os"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/osmno/ssr2osm/internal/proj"
	"github.com/osmno/ssr2osm/internal/spatial"
)

// NamePoint is one named settlement point from an N50 or N100 layer.
type NamePoint struct {
	Coord geom.Coord
	Name  string
	Rank  string // place=* value mapped from the layer's settlement class
}

// nameFields are attribute names that may carry the place name, checked in
// order. Kartverket products have renamed this column across releases.
var nameFields = []string{"navn", "fulltekst", "streng", "stedsnavn", "name"}

// classFields are attribute names that may carry the settlement class.
var classFields = []string{"navnetype", "byggtyp", "objtype", "typ"}

// settlementClass maps Kartverket settlement classes to place=* values.
// Classes without a mapping are indexed with an empty rank and still count
// as nearby named points.
var settlementClass = map[string]string{
	"by":              "town",
	"bydel":           "suburb",
	"tettsted":        "village",
	"tettbebyggelse":  "hamlet",
	"bygdelagBygd":    "village",
	"bygdelag":        "village",
	"grend":           "hamlet",
	"boligfelt":       "quarter",
	"borettslag":      "quarter",
	"industriområde":  "quarter",
	"gard":            "farm",
	"bruk":            "isolated_dwelling",
	"enebolig":        "isolated_dwelling",
}

// LoadPlaceNames reads one municipality's point layer from a shapefile path
// template. A missing file or empty template disables the dataset (nil
// index, no error); other read failures are reported.
func LoadPlaceNames(pathTemplate, municipality string) (*spatial.PointIndex[NamePoint], error) {
	if pathTemplate == "" {
		return nil, nil
	}
	path := fmt.Sprintf(pathTemplate, municipality)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		zap.L().Debug("place-name layer not present",
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

	nameIdx := fieldIndex(r.Fields(), nameFields)
	classIdx := fieldIndex(r.Fields(), classFields)
	if nameIdx < 0 {
		return nil, eris.Errorf("dataset: no name attribute in %s", path)
	}

	var points []NamePoint
	for r.Next() {
		row, shape := r.Shape()

		var x, y float64
		switch p := shape.(type) {
		case *shp.Point:
			x, y = p.X, p.Y
		case *shp.PointZ:
			x, y = p.X, p.Y
		case *shp.PointM:
			x, y = p.X, p.Y
		default:
			continue
		}

		name := cleanAttribute(r.ReadAttribute(row, nameIdx))
		if name == "" {
			continue
		}
		var rank string
		if classIdx >= 0 {
			rank = settlementClass[cleanAttribute(r.ReadAttribute(row, classIdx))]
		}
		points = append(points, NamePoint{Coord: toLonLat(x, y), Name: name, Rank: rank})
	}

	zap.L().Debug("place-name layer loaded",
		zap.String("component", "dataset"),
		zap.String("path", path),
		zap.Int("points", len(points)),
	)
	return spatial.NewPointIndex(points, func(p NamePoint) geom.Coord { return p.Coord }), nil
}

// fieldIndex returns the index of the first attribute whose name matches one
// of the candidates, case-insensitively, or -1.
func fieldIndex(fields []shp.Field, candidates []string) int {
	for _, want := range candidates {
		for i, f := range fields {
			if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), want) {
				return i
			}
		}
	}
	return -1
}

// cleanAttribute strips DBF padding from an attribute value.
func cleanAttribute(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

// toLonLat converts a shapefile vertex to lon/lat. Kartverket distributes
// these products in EPSG:25833; coordinates already inside the geographic
// range pass through unchanged.
func toLonLat(x, y float64) geom.Coord {
	if x >= -180 && x <= 180 && y >= -90 && y <= 90 {
		return geom.Coord{x, y}
	}
	lat, lon := proj.UTM33ToLatLon(x, y)
	return geom.Coord{lon, lat}
}
