// Package ssr loads raw place-name records from the national registry,
// either from Geonorge GML extracts or from the Kartverket WFS service.
package ssr

import "github.com/twpayne/go-geom"

// GeomKind classifies the raw registry geometry.
type GeomKind int

const (
	GeomNone GeomKind = iota
	GeomPoint
	GeomMultiPoint
	GeomLine
	GeomArea
)

// Geometry is the raw geometry of a registry record: a vertex sequence
// (lon, lat) whose interpretation depends on the kind.
type Geometry struct {
	Kind   GeomKind
	Coords []geom.Coord
}

// RepresentativePoint reduces the geometry to a single point: first vertex
// for points and multipoints, midpoint for lines, vertex average of the
// exterior ring for areas. Returns false when no point can be derived.
func (g Geometry) RepresentativePoint() (geom.Coord, bool) {
	if len(g.Coords) == 0 || g.Kind == GeomNone {
		return nil, false
	}

	switch g.Kind {
	case GeomPoint, GeomMultiPoint:
		return g.Coords[0], true

	case GeomArea:
		// Average of the ring vertices; the closing vertex repeats the
		// first and is dropped.
		coords := g.Coords
		if len(coords) > 1 && coords[0][0] == coords[len(coords)-1][0] && coords[0][1] == coords[len(coords)-1][1] {
			coords = coords[:len(coords)-1]
		}
		var sumX, sumY float64
		for _, c := range coords {
			sumX += c[0]
			sumY += c[1]
		}
		n := float64(len(coords))
		return geom.Coord{sumX / n, sumY / n}, true

	default: // GeomLine
		mid := len(g.Coords) / 2
		if len(g.Coords)%2 == 0 {
			a, b := g.Coords[mid-1], g.Coords[mid]
			return geom.Coord{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}, true
		}
		return g.Coords[mid], true
	}
}

// RawName is one name entry of a registry record, prior to normalization.
type RawName struct {
	Text        string
	Lang        string // source language code, not yet canonical
	NameStatus  string // navnestatus: hovednavn, undernavn, historisk, ...
	SpellStatus string // skrivemåtestatus: vedtatt, foreslått, historisk, ...
	Priority    bool   // prioritized spelling
	Public      bool   // offentligBruk (extracts carry it, WFS filters upstream)
}

// RawRecord is one SSR entry as fetched. Immutable once built.
type RawRecord struct {
	ID           string // stedsnummer
	Type         string // navneobjekttype code
	Group        string
	MainGroup    string
	Municipality string
	LangPriority string // språkprioritering, e.g. "nor-sme"; may be empty
	Geometry     Geometry
	Names        []RawName
}
