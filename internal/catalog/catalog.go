// Package catalog holds the static mapping from SSR name-type codes to OSM
// tagging templates (navnetyper_tagged.json) and its maintenance tooling.
package catalog

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/osmno/ssr2osm/internal/config"
	"github.com/osmno/ssr2osm/internal/fetcher"
)

// Category is the closed name-type classification driving the optional
// pipeline stages.
type Category int

const (
	CategoryOther Category = iota
	CategorySettlement
	CategoryWaterway
	CategoryBuilding
)

// Rule is the tagging template for one SSR name type.
type Rule struct {
	Type      string            // SSR name type code, e.g. "gard"
	Group     string            // navneobjektgruppe
	MainGroup string            // navneobjekthovedgruppe
	Tags      map[string]string // OSM feature tags; may include place=*
	Fixme     string            // predefined review note, optional
	Category  Category
	// Priority ranks name types for duplicate adjudication; lower wins.
	Priority int
}

// Tagged reports whether the rule emits any OSM feature tags. Untagged
// types are only included in -all mode.
func (r Rule) Tagged() bool {
	return len(r.Tags) > 0
}

// Catalog is the read-only name-type rule set.
type Catalog struct {
	rules map[string]Rule
}

// Rule returns the rule for a name-type code.
func (c *Catalog) Rule(typeCode string) (Rule, bool) {
	r, ok := c.rules[typeCode]
	return r, ok
}

// Has reports whether the catalog knows the name-type code.
func (c *Catalog) Has(typeCode string) bool {
	_, ok := c.rules[typeCode]
	return ok
}

// Len returns the number of name types.
func (c *Catalog) Len() int {
	return len(c.rules)
}

// Types returns all name-type codes, sorted.
func (c *Catalog) Types() []string {
	types := make([]string, 0, len(c.rules))
	for t := range c.rules {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// taggedFile mirrors the navnetyper_tagged.json structure.
type taggedFile struct {
	MainGroups []struct {
		Name   string `json:"navn"`
		Groups []struct {
			Name  string `json:"navn"`
			Types []struct {
				Name string            `json:"navn"`
				Tags map[string]string `json:"tags"`
			} `json:"navnetyper"`
		} `json:"navnetypeGrupper"`
	} `json:"navnetypeHovedgrupper"`
}

// settlementPriority ranks place=* values for duplicate adjudication and
// marks the settlement category. The village/hamlet/quarter band is the one
// the rank adjuster may refine from N50/N100.
var settlementPriority = map[string]int{
	"city":              1,
	"town":              2,
	"village":           3,
	"suburb":            4,
	"quarter":           5,
	"hamlet":            6,
	"neighbourhood":     7,
	"farm":              8,
	"isolated_dwelling": 9,
}

// buildingPlaces are the homestead-class values whose points may sit inside
// a building footprint.
var buildingPlaces = map[string]bool{
	"farm":              true,
	"isolated_dwelling": true,
}

// Parse reads a navnetyper_tagged.json document.
func Parse(r io.Reader) (*Catalog, error) {
	var doc taggedFile
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, eris.Wrap(err, "catalog: decode tagged json")
	}

	rules := make(map[string]Rule)
	for _, mg := range doc.MainGroups {
		for _, g := range mg.Groups {
			for _, t := range g.Types {
				rule := Rule{
					Type:      t.Name,
					Group:     g.Name,
					MainGroup: mg.Name,
					Tags:      map[string]string{},
				}
				for k, v := range t.Tags {
					if k == "fixme" || k == "FIXME" {
						rule.Fixme = v
						continue
					}
					if v == "" {
						continue
					}
					rule.Tags[k] = v
				}
				rule.Category = categoryOf(rule.Tags)
				rule.Priority = priorityOf(rule.Tags)
				if _, dup := rules[t.Name]; dup {
					return nil, eris.Errorf("catalog: duplicate name type %q", t.Name)
				}
				rules[t.Name] = rule
			}
		}
	}

	if len(rules) == 0 {
		return nil, eris.New("catalog: no name types found")
	}

	return &Catalog{rules: rules}, nil
}

func categoryOf(tags map[string]string) Category {
	if pl, ok := tags["place"]; ok {
		if buildingPlaces[pl] {
			return CategoryBuilding
		}
		if _, ok := settlementPriority[pl]; ok {
			return CategorySettlement
		}
	}
	if _, ok := tags["waterway"]; ok {
		return CategoryWaterway
	}
	return CategoryOther
}

func priorityOf(tags map[string]string) int {
	if pl, ok := tags["place"]; ok {
		if p, ok := settlementPriority[pl]; ok {
			return p
		}
	}
	if len(tags) > 0 {
		return 50
	}
	return 100
}

// Load reads the catalog from the configured local path, or fetches it from
// the upstream URL, and applies the optional YAML override file.
func Load(ctx context.Context, f *fetcher.HTTPFetcher, cfg config.CatalogConfig) (*Catalog, error) {
	var r io.ReadCloser
	var err error

	if cfg.Path != "" {
		r, err = os.Open(cfg.Path)
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: open %s", cfg.Path)
		}
	} else {
		r, err = f.Download(ctx, cfg.URL)
		if err != nil {
			return nil, eris.Wrap(err, "catalog: fetch tagged json")
		}
	}
	defer r.Close() //nolint:errcheck

	cat, err := Parse(r)
	if err != nil {
		return nil, err
	}

	if cfg.OverridePath != "" {
		o, err := os.Open(cfg.OverridePath)
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: open overrides %s", cfg.OverridePath)
		}
		defer o.Close() //nolint:errcheck
		if err := cat.ApplyOverrides(o); err != nil {
			return nil, err
		}
	}

	return cat, nil
}

// ApplyOverrides merges a YAML document of name-type → tags on top of the
// loaded rules. An override may add types unknown to the upstream catalog.
func (c *Catalog) ApplyOverrides(r io.Reader) error {
	var overrides map[string]map[string]string
	if err := yaml.NewDecoder(r).Decode(&overrides); err != nil {
		return eris.Wrap(err, "catalog: decode overrides yaml")
	}

	for typeCode, tags := range overrides {
		rule, ok := c.rules[typeCode]
		if !ok {
			rule = Rule{Type: typeCode, Tags: map[string]string{}}
		}
		for k, v := range tags {
			switch {
			case k == "fixme" || k == "FIXME":
				rule.Fixme = v
			case v == "":
				delete(rule.Tags, k)
			default:
				rule.Tags[k] = v
			}
		}
		rule.Category = categoryOf(rule.Tags)
		rule.Priority = priorityOf(rule.Tags)
		c.rules[typeCode] = rule
	}

	return nil
}
