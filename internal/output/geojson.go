// Package output serializes converted features to GeoJSON for import
// review, and compares outputs across runs.
package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/osmno/ssr2osm/internal/kommune"
)

// Feature is one output unit: the resolved tag mapping and its point.
type Feature struct {
	Tags  map[string]string
	Point geom.Coord
}

// ID returns the registry identifier of the feature.
func (f Feature) ID() string {
	return f.Tags["ssr:stedsnr"]
}

// Filename builds the output file name for one scope, e.g.
// "stedsnavn_4204_Kristiansand.geojson". Modifiers reflect the run options
// so different runs do not overwrite each other.
func Filename(code, name, typeFilter string, wfs, all bool) string {
	base := "stedsnavn_" + code + "_" + kommune.CleanFilename(name)
	if typeFilter != "" {
		base += "_" + typeFilter
	}
	if wfs {
		base += "_wfs"
	}
	if all {
		base += "_all"
	}
	return base + ".geojson"
}

// WriteGeoJSON writes the features as a GeoJSON FeatureCollection.
func WriteGeoJSON(path string, feats []Feature) error {
	fc := geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(feats))}
	for _, f := range feats {
		props := make(map[string]interface{}, len(f.Tags))
		for k, v := range f.Tags {
			props[k] = v
		}
		point := geom.NewPointFlat(geom.XY, []float64{f.Point[0], f.Point[1]})
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   point,
			Properties: props,
		})
	}

	data, err := json.MarshalIndent(&fc, "", "  ")
	if err != nil {
		return eris.Wrap(err, "output: marshal feature collection")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "output: write %s", path)
	}
	return nil
}

// ReadGeoJSON reads a previously written feature collection. Non-point
// geometries and non-string properties are not produced by this tool and
// are coerced or skipped.
func ReadGeoJSON(path string) ([]Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "output: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "output: decode %s", path)
	}

	feats := make([]Feature, 0, len(fc.Features))
	for _, gf := range fc.Features {
		point, ok := gf.Geometry.(*geom.Point)
		if !ok {
			continue
		}
		tags := make(map[string]string, len(gf.Properties))
		for k, v := range gf.Properties {
			if s, ok := v.(string); ok {
				tags[k] = s
			} else {
				tags[k] = fmt.Sprint(v)
			}
		}
		c := point.Coords()
		feats = append(feats, Feature{Tags: tags, Point: geom.Coord{c[0], c[1]}})
	}
	return feats, nil
}
