package ssr

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/osmno/ssr2osm/internal/fetcher"
	"github.com/osmno/ssr2osm/internal/kommune"
	"github.com/osmno/ssr2osm/internal/place"
)

const wfsAppSchema = "http://skjema.geonorge.no/SOSI/produktspesifikasjon/Stedsnavn/5.0"

// Place statuses served by the WFS that are worth converting.
var activeStatuses = map[string]bool{
	"aktiv":  true,
	"relikt": true,
}

// Name and spelling statuses that are rejected registry decisions.
var rejectedNameStatuses = map[string]bool{
	"feilført":         true,
	"avslåttNavnevalg": true,
}

var rejectedSpellStatuses = map[string]bool{
	"avslått":          true,
	"avslåttNavneledd": true,
	"feilført":         true,
}

// WFSSource queries the live Kartverket place-name WFS in EPSG:4326.
type WFSSource struct {
	fetcher *fetcher.HTTPFetcher
	baseURL string
	// TypeFilter, when set, queries by name type instead of municipality.
	TypeFilter string
}

// NewWFSSource creates a WFSSource against the given service URL.
func NewWFSSource(f *fetcher.HTTPFetcher, baseURL string) *WFSSource {
	return &WFSSource{fetcher: f, baseURL: baseURL}
}

// Records queries the WFS for one municipality (4-digit), county (2-digit)
// or, with a type filter, the whole country.
func (s *WFSSource) Records(ctx context.Context, code string) ([]RawRecord, error) {
	property, literal := s.filterFor(code)

	filter := fmt.Sprintf(
		`<Filter><PropertyIsEqualTo><ValueReference xmlns:app=%q>%s</ValueReference><Literal>%s</Literal></PropertyIsEqualTo></Filter>`,
		wfsAppSchema, property, literal,
	)
	queryURL := s.baseURL +
		"?VERSION=2.0.0&SERVICE=WFS&srsName=EPSG:4326&REQUEST=GetFeature&TYPENAME=Sted&resultType=results&Filter=" +
		url.QueryEscape(filter)

	log := zap.L().With(
		zap.String("component", "ssr.wfs"),
		zap.String("filter", literal),
	)
	log.Debug("querying WFS")

	body, err := s.fetcher.Download(ctx, queryURL)
	if err != nil {
		return nil, eris.Wrapf(err, "ssr: wfs query for %s", literal)
	}
	defer body.Close() //nolint:errcheck

	var records []RawRecord
	err = fetcher.StreamXML(ctx, body, "Sted", func(sted wfsSted) error {
		rec, ok := sted.toRecord(code)
		if ok {
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "ssr: parse wfs response for %s", literal)
	}

	log.Debug("wfs response parsed", zap.Int("records", len(records)))
	return records, nil
}

func (s *WFSSource) filterFor(code string) (property, literal string) {
	switch {
	case s.TypeFilter != "":
		return "app:navneobjekttype", s.TypeFilter
	case len(code) == 4:
		return "app:kommune/app:Kommune/app:kommunenummer", code
	default:
		return "app:kommune/app:Kommune/app:fylkesnummer", code
	}
}

// wfsSted mirrors one Sted feature of the WFS 5.0 schema. It differs from
// the extract schema: stedstatus is present, spellings carry langnavn and
// an explicit priority flag, and coordinates are geographic.
type wfsSted struct {
	ID           string `xml:"stedsnummer"`
	Status       string `xml:"stedstatus"`
	Type         string `xml:"navneobjekttype"`
	Group        string `xml:"navneobjektgruppe"`
	MainGroup    string `xml:"navneobjekthovedgruppe"`
	LangPriority string `xml:"språkprioritering"`
	Municipality string `xml:"kommune>Kommune>kommunenummer"`

	Position wfsPosition `xml:"posisjon"`

	Names []wfsStedsnavn `xml:"stedsnavn"`
}

type wfsPosition struct {
	Point      string   `xml:"Point>pos"`
	MultiPoint []string `xml:"MultiPoint>pointMember>Point>pos"`
	Line       string   `xml:"LineString>posList"`
	Curve      string   `xml:"MultiCurve>curveMember>LineString>posList"`
	Polygon    string   `xml:"Polygon>exterior>LinearRing>posList"`
}

type wfsStedsnavn struct {
	NameStatus string          `xml:"Stedsnavn>navnestatus"`
	Lang       string          `xml:"Stedsnavn>språk"`
	Spellings  []wfsSkrivemate `xml:"Stedsnavn>skrivemåte"`
}

type wfsSkrivemate struct {
	Text     string `xml:"Skrivemåte>langnavn"`
	Status   string `xml:"Skrivemåte>skrivemåtestatus"`
	Priority string `xml:"Skrivemåte>prioritertSkrivemåte"`
}

// toRecord converts a WFS feature, applying the scope and status filters
// the file extracts apply upstream. ok is false when the feature is out of
// scope or carries a non-active status.
func (s wfsSted) toRecord(scopeCode string) (RawRecord, bool) {
	if !activeStatuses[s.Status] {
		return RawRecord{}, false
	}
	// A county query also returns neighbours near the boundary.
	if scopeCode != kommune.NorwayCode && len(s.Municipality) >= len(scopeCode) &&
		s.Municipality[:len(scopeCode)] != scopeCode {
		return RawRecord{}, false
	}

	rec := RawRecord{
		ID:           s.ID,
		Type:         s.Type,
		Group:        s.Group,
		MainGroup:    s.MainGroup,
		Municipality: s.Municipality,
		LangPriority: s.LangPriority, // empty at Svalbard
	}

	switch {
	case len(s.Position.MultiPoint) > 0:
		rec.Geometry.Kind = GeomMultiPoint
		for _, p := range s.Position.MultiPoint {
			rec.Geometry.Coords = append(rec.Geometry.Coords, parsePosList(p, false)...)
		}
	case s.Position.Point != "":
		rec.Geometry.Kind = GeomPoint
		rec.Geometry.Coords = parsePosList(s.Position.Point, false)
	case s.Position.Line != "":
		rec.Geometry.Kind = GeomLine
		rec.Geometry.Coords = parsePosList(s.Position.Line, false)
	case s.Position.Curve != "":
		rec.Geometry.Kind = GeomLine
		rec.Geometry.Coords = parsePosList(s.Position.Curve, false)
	case s.Position.Polygon != "":
		rec.Geometry.Kind = GeomArea
		rec.Geometry.Coords = parsePosList(s.Position.Polygon, false)
	}
	if len(rec.Geometry.Coords) == 0 {
		rec.Geometry.Kind = GeomNone
	}

	for _, sn := range s.Names {
		if rejectedNameStatuses[sn.NameStatus] {
			continue
		}
		lang := place.NormalizeLang(sn.Lang)
		for _, sp := range sn.Spellings {
			if rejectedSpellStatuses[sp.Status] {
				continue
			}
			rec.Names = append(rec.Names, RawName{
				Text:        collapseSpaces(sp.Text),
				Lang:        lang,
				NameStatus:  sn.NameStatus,
				SpellStatus: sp.Status,
				Priority:    sp.Priority == "true" || sp.Status == "vedtatt",
				Public:      true, // the WFS serves public names only
			})
		}
	}

	return rec, true
}
