package ssr

import (
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"

	"github.com/osmno/ssr2osm/internal/place"
	"github.com/osmno/ssr2osm/internal/proj"
)

// gmlSted mirrors one app:Sted feature of a Basisdata Stedsnavn GML
// extract. Struct tags use local names only; the decoder ignores the
// schema namespace, which differs between product versions.
type gmlSted struct {
	ID           string `xml:"stedsnummer"`
	Type         string `xml:"navneobjekttype"`
	Group        string `xml:"navneobjektgruppe"`
	MainGroup    string `xml:"navneobjekthovedgruppe"`
	LangPriority string `xml:"språkprioritering"`
	Municipality string `xml:"kommune>Kommune>kommunenummer"`

	Position   *gmlPos        `xml:"posisjon"`
	MultiPoint *gmlMultiPoint `xml:"multipunkt"`
	CenterLine *gmlLine       `xml:"senterlinje"`
	Area       *gmlArea       `xml:"område"`

	Names []gmlStedsnavn `xml:"stedsnavn"`
}

type gmlPos struct {
	Pos string `xml:"Point>pos"`
}

type gmlMultiPoint struct {
	Pos []string `xml:"MultiPoint>pointMember>Point>pos"`
}

type gmlLine struct {
	PosList string `xml:"LineString>posList"`
	Curve   string `xml:"Curve>segments>LineStringSegment>posList"`
}

type gmlArea struct {
	PosList string `xml:"Polygon>exterior>LinearRing>posList"`
}

type gmlStedsnavn struct {
	Public     string          `xml:"Stedsnavn>offentligBruk"`
	NameStatus string          `xml:"Stedsnavn>navnestatus"`
	Lang       string          `xml:"Stedsnavn>språk"`
	Spellings  []gmlSkrivemate `xml:"Stedsnavn>skrivemåte"`
	Others     []gmlSkrivemate `xml:"Stedsnavn>annenSkrivemåte"`
}

type gmlSkrivemate struct {
	Text   string `xml:"Skrivemåte>komplettskrivemåte"`
	Status string `xml:"Skrivemåte>skrivemåtestatus"`
}

// parsePosList parses a GML coordinate string. utm selects conversion from
// EPSG:25833 (file extracts); otherwise pairs are already lon/lat.
func parsePosList(text string, utm bool) []geom.Coord {
	fields := strings.Fields(text)
	coords := make([]geom.Coord, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		x, errX := strconv.ParseFloat(fields[i], 64)
		y, errY := strconv.ParseFloat(fields[i+1], 64)
		if errX != nil || errY != nil {
			continue
		}
		if utm {
			lat, lon := proj.UTM33ToLatLon(x, y)
			coords = append(coords, geom.Coord{lon, lat})
		} else {
			coords = append(coords, geom.Coord{x, y})
		}
	}
	return coords
}

// toRecord converts a parsed GML feature into a RawRecord.
func (s gmlSted) toRecord() RawRecord {
	rec := RawRecord{
		ID:           s.ID,
		Type:         s.Type,
		Group:        s.Group,
		MainGroup:    s.MainGroup,
		Municipality: s.Municipality,
		LangPriority: s.LangPriority,
	}

	switch {
	case s.MultiPoint != nil && len(s.MultiPoint.Pos) > 0:
		rec.Geometry.Kind = GeomMultiPoint
		for _, p := range s.MultiPoint.Pos {
			rec.Geometry.Coords = append(rec.Geometry.Coords, parsePosList(p, true)...)
		}
	case s.Position != nil && s.Position.Pos != "":
		rec.Geometry.Kind = GeomPoint
		rec.Geometry.Coords = parsePosList(s.Position.Pos, true)
	case s.CenterLine != nil && (s.CenterLine.PosList != "" || s.CenterLine.Curve != ""):
		rec.Geometry.Kind = GeomLine
		posList := s.CenterLine.PosList
		if posList == "" {
			posList = s.CenterLine.Curve
		}
		rec.Geometry.Coords = parsePosList(posList, true)
	case s.Area != nil && s.Area.PosList != "":
		rec.Geometry.Kind = GeomArea
		rec.Geometry.Coords = parsePosList(s.Area.PosList, true)
	}
	if len(rec.Geometry.Coords) == 0 {
		rec.Geometry.Kind = GeomNone
	}

	for _, sn := range s.Names {
		public := sn.Public == "true"
		lang := place.NormalizeLang(sn.Lang)
		for _, sp := range sn.Spellings {
			rec.Names = append(rec.Names, RawName{
				Text:        collapseSpaces(sp.Text),
				Lang:        lang,
				NameStatus:  sn.NameStatus,
				SpellStatus: sp.Status,
				Priority:    true, // skrivemåte is the prioritized element
				Public:      public,
			})
		}
		for _, sp := range sn.Others {
			rec.Names = append(rec.Names, RawName{
				Text:        collapseSpaces(sp.Text),
				Lang:        lang,
				NameStatus:  sn.NameStatus,
				SpellStatus: sp.Status,
				Priority:    false,
				Public:      public,
			})
		}
	}

	return rec
}

// collapseSpaces normalizes whitespace runs inside registry names.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
