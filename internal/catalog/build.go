package catalog

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/osmno/ssr2osm/internal/fetcher"
)

// Geonorge SOSI codelists for the SSR name-type hierarchy.
const (
	typeCodelistURL      = "https://register.geonorge.no/sosi-kodelister/stedsnavn/navneobjekttype.json"
	groupCodelistURL     = "https://register.geonorge.no/sosi-kodelister/stedsnavn/navneobjektgruppe.json"
	mainGroupCodelistURL = "https://register.geonorge.no/sosi-kodelister/stedsnavn/navneobjekthovedgruppe.json"
)

// tableColumns are the required headers of the maintained tagging table.
var tableColumns = []string{"Hovedgruppe", "Gruppe", "SSR2 navnetype", "OSM tags"}

type codelist struct {
	Items []struct {
		CodeValue   string `json:"codevalue"`
		Description string `json:"description"`
	} `json:"containeditems"`
}

// outType/outGroup/outMainGroup build the navnetyper_tagged.json shape.
type outType struct {
	Name        string            `json:"navn"`
	Description string            `json:"beskrivelse,omitempty"`
	Tags        map[string]string `json:"tags"`
}

type outGroup struct {
	Name  string    `json:"navn"`
	Types []outType `json:"navnetyper"`
}

type outMainGroup struct {
	Name   string     `json:"navn"`
	Groups []outGroup `json:"navnetypeGrupper"`
}

type outFile struct {
	MainGroups []outMainGroup `json:"navnetypeHovedgrupper"`
}

// BuildTagged regenerates navnetyper_tagged.json content from the Geonorge
// codelists and the maintained tagging table (.xlsx or .csv). Name types in
// the table but absent from the official codelist are kept with a warning,
// since the codelist occasionally lags the registry.
func BuildTagged(ctx context.Context, f *fetcher.HTTPFetcher, tablePath string) ([]byte, error) {
	types, err := fetchCodelist(ctx, f, typeCodelistURL)
	if err != nil {
		return nil, err
	}
	groups, err := fetchCodelist(ctx, f, groupCodelistURL)
	if err != nil {
		return nil, err
	}
	mainGroups, err := fetchCodelist(ctx, f, mainGroupCodelistURL)
	if err != nil {
		return nil, err
	}

	rows, err := readTable(tablePath)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("component", "catalog.build"))

	doc := outFile{}
	mainIdx := map[string]int{}
	groupIdx := map[string]int{}

	for _, row := range rows {
		typeCode := row["SSR2 navnetype"]
		if typeCode == "" {
			continue
		}
		desc, known := types[typeCode]
		if !known {
			log.Warn("name type not in official codelist", zap.String("type", typeCode))
		}

		tags, err := parseTagList(row["OSM tags"])
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: row for %q", typeCode)
		}
		if fixme := row["FIXME"]; fixme != "" {
			tags["fixme"] = fixme
		}

		mainName := row["Hovedgruppe"]
		groupName := row["Gruppe"]
		if _, ok := mainGroups[mainName]; !ok {
			log.Warn("main group not in official codelist", zap.String("main_group", mainName))
		}
		if _, ok := groups[groupName]; !ok {
			log.Warn("group not in official codelist", zap.String("group", groupName))
		}

		mi, ok := mainIdx[mainName]
		if !ok {
			mi = len(doc.MainGroups)
			mainIdx[mainName] = mi
			doc.MainGroups = append(doc.MainGroups, outMainGroup{Name: mainName})
		}
		gKey := mainName + "\x00" + groupName
		gi, ok := groupIdx[gKey]
		if !ok {
			gi = len(doc.MainGroups[mi].Groups)
			groupIdx[gKey] = gi
			doc.MainGroups[mi].Groups = append(doc.MainGroups[mi].Groups, outGroup{Name: groupName})
		}

		doc.MainGroups[mi].Groups[gi].Types = append(doc.MainGroups[mi].Groups[gi].Types, outType{
			Name:        typeCode,
			Description: desc,
			Tags:        tags,
		})
	}

	if len(doc.MainGroups) == 0 {
		return nil, eris.New("catalog: tagging table produced no name types")
	}

	return json.MarshalIndent(doc, "", "  ")
}

func fetchCodelist(ctx context.Context, f *fetcher.HTTPFetcher, url string) (map[string]string, error) {
	body, err := f.Download(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: fetch codelist %s", url)
	}
	defer body.Close() //nolint:errcheck

	list, err := fetcher.DecodeJSON[codelist](body)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: decode codelist %s", url)
	}

	out := make(map[string]string, len(list.Items))
	for _, item := range list.Items {
		out[item.CodeValue] = strings.ReplaceAll(strings.ReplaceAll(item.Description, `""`, "'"), `"`, "")
	}
	return out, nil
}

// readTable reads the tagging table rows as column-name → value maps.
func readTable(path string) ([]map[string]string, error) {
	var raw [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		raw, err = readXLSX(path)
	case ".csv":
		raw, err = readCSV(path)
	default:
		return nil, eris.Errorf("catalog: unsupported table format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if len(raw) < 2 {
		return nil, eris.New("catalog: tagging table has no data rows")
	}

	header := raw[0]
	colIdx := map[string]int{}
	for i, h := range header {
		colIdx[strings.TrimSpace(h)] = i
	}
	for _, required := range tableColumns {
		if _, ok := colIdx[required]; !ok {
			return nil, eris.Errorf("catalog: tagging table missing column %q", required)
		}
	}

	var rows []map[string]string
	for _, cells := range raw[1:] {
		row := map[string]string{}
		for name, i := range colIdx {
			if i < len(cells) {
				row[name] = strings.TrimSpace(cells[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("catalog: xlsx has no sheets")
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: open csv")
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read csv")
	}
	return rows, nil
}

// parseTagList parses "key=value; key=value" into a tag map.
func parseTagList(s string) (map[string]string, error) {
	tags := map[string]string{}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return nil, eris.Errorf("catalog: malformed tag %q", part)
		}
		tags[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return tags, nil
}
