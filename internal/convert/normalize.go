// Package convert implements the conversion pipeline from raw registry
// records to tagged output features: normalization, name resolution,
// duplicate detection, rank adjustment, relocation and tag emission.
package convert

import (
	"strings"

	"go.uber.org/zap"

	"github.com/osmno/ssr2osm/internal/catalog"
	"github.com/osmno/ssr2osm/internal/place"
	"github.com/osmno/ssr2osm/internal/ssr"
)

// Normalizer turns raw registry records into place candidates: records
// sharing a stedsnummer are merged into one candidate, unusable records are
// skipped and counted. One Normalizer serves one scope; it is not safe for
// concurrent use.
type Normalizer struct {
	catalog      *catalog.Catalog
	defaultLangs []string
	includeAll   bool

	SkippedUnknownType int
	SkippedNoGeometry  int
	SkippedNoNames     int
}

// NewNormalizer creates a Normalizer. defaultPriority is the fallback
// language order ("nor-sme-..."), used when a record carries none. With
// includeAll set, name types missing from the catalog pass through instead
// of being skipped.
func NewNormalizer(cat *catalog.Catalog, defaultPriority string, includeAll bool) *Normalizer {
	return &Normalizer{
		catalog:      cat,
		defaultLangs: splitLangPriority(defaultPriority),
		includeAll:   includeAll,
	}
}

// Normalize converts a batch of raw records into candidates, preserving the
// order of first appearance per stedsnummer.
func (n *Normalizer) Normalize(records []ssr.RawRecord) []*place.Candidate {
	byID := make(map[string]*place.Candidate)
	var out []*place.Candidate

	for _, rec := range records {
		if !n.catalog.Has(rec.Type) && !n.includeAll {
			n.SkippedUnknownType++
			continue
		}

		point, ok := rec.Geometry.RepresentativePoint()
		if !ok {
			n.SkippedNoGeometry++
			zap.L().Debug("record without usable geometry skipped",
				zap.String("component", "convert.normalize"),
				zap.String("stedsnummer", rec.ID),
			)
			continue
		}

		c, seen := byID[rec.ID]
		if !seen {
			c = &place.Candidate{
				ID:           rec.ID,
				Municipality: rec.Municipality,
				Type:         rec.Type,
				Group:        rec.Group,
				MainGroup:    rec.MainGroup,
				LangPriority: n.langPriority(rec.LangPriority),
				Point:        point,
			}
			if rec.Geometry.Kind == ssr.GeomMultiPoint && len(rec.Geometry.Coords) > 1 {
				c.Extra = rec.Geometry.Coords[1:]
			}
			byID[rec.ID] = c
			out = append(out, c)
		}

		for _, raw := range rec.Names {
			if raw.Text == "" {
				continue
			}
			c.Names = append(c.Names, place.NameEntry{
				Text:     raw.Text,
				Lang:     raw.Lang,
				Status:   classify(raw),
				Priority: raw.Priority,
				RegOrder: len(c.Names),
			})
		}
	}

	// Candidates whose every spelling was empty carry nothing to tag and
	// are dropped here rather than in the resolver.
	kept := out[:0]
	for _, c := range out {
		if len(c.Names) == 0 {
			n.SkippedNoNames++
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// classify maps the registry's navnestatus/skrivemåtestatus pair onto the
// tagging classification.
func classify(raw ssr.RawName) place.NameStatus {
	if raw.NameStatus == "historisk" || raw.SpellStatus == "historisk" {
		return place.StatusHistoric
	}
	switch raw.SpellStatus {
	case "foreslått", "uvurdert":
		return place.StatusProposed
	}
	// Subsidiary names and names not in public use stay out of name=*
	// whatever their spelling decision says.
	if raw.NameStatus == "undernavn" || !raw.Public {
		return place.StatusSecondary
	}
	if raw.Priority || raw.SpellStatus == "vedtatt" {
		return place.StatusPrimary
	}
	return place.StatusSecondary
}

// langPriority parses a språkprioritering string, falling back to the
// configured default order.
func (n *Normalizer) langPriority(raw string) []string {
	langs := splitLangPriority(raw)
	if len(langs) == 0 {
		return n.defaultLangs
	}
	return langs
}

func splitLangPriority(raw string) []string {
	if raw == "" {
		return nil
	}
	var langs []string
	for _, code := range strings.Split(raw, "-") {
		if code == "" {
			continue
		}
		langs = append(langs, place.NormalizeLang(code))
	}
	return langs
}
