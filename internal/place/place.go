// Package place defines the working unit of the conversion pipeline: the
// place candidate with its competing name entries and resolved tagging.
package place

import "github.com/twpayne/go-geom"

// NameStatus classifies a name entry for tagging purposes.
type NameStatus int

const (
	// StatusPrimary entries compete for the name=* tag.
	StatusPrimary NameStatus = iota
	// StatusSecondary entries become alt_name=*.
	StatusSecondary
	// StatusProposed entries (foreslått/uvurdert) become loc_name=*.
	StatusProposed
	// StatusHistoric entries become old_name=*.
	StatusHistoric
)

// NameEntry is one spelling of a place name in one language.
type NameEntry struct {
	Text     string
	Lang     string // canonical SSR language code, see NormalizeLang
	Status   NameStatus
	Priority bool // registry priority spelling
	RegOrder int  // registration order within the candidate
}

// RankSource records which dataset supplied the settlement rank.
type RankSource int

const (
	RankNone RankSource = iota
	RankRegistry
	RankN50
	RankN100
)

func (r RankSource) String() string {
	switch r {
	case RankRegistry:
		return "registry"
	case RankN50:
		return "N50"
	case RankN100:
		return "N100"
	default:
		return "none"
	}
}

// LangNames holds the resolved name tags for one language. Name carries at
// most one spelling; losing tie candidates are demoted to Alt with a review
// flag on the candidate.
type LangNames struct {
	Lang string
	Name string
	Alt  []string
	Loc  []string
	Old  []string
}

// Candidate is a place flowing through the pipeline. Created by the
// normalizer, mutated by the resolver, rank adjuster and relocator, and
// read-only for the emitter.
type Candidate struct {
	ID           string // stedsnummer
	Municipality string
	Type         string // SSR name type code
	Group        string
	MainGroup    string

	// LangPriority is the registry's språkprioritering, canonical codes in
	// order. Empty when the registry did not supply one.
	LangPriority []string

	Point geom.Coord // lon, lat; owned and mutable (relocation)

	// Extra holds the remaining vertices of a multipoint geometry. Only
	// waterway candidates emit them, and only on request.
	Extra []geom.Coord

	Names []NameEntry

	// Filled by the resolver.
	Resolved []LangNames // ordered by language priority
	Fixme    []string
	NameTie  bool

	// Filled by the rank adjuster.
	PlaceRank  string // overrides the catalog's place=* value when set
	RankSource RankSource

	// Filled by duplicate detection; monotonic within a run.
	Duplicate bool

	// Filled by the relocator.
	Relocated bool
}

// PrimaryName returns the resolved name=* value: per-language main names in
// priority order joined with " - ", mirroring the registry convention for
// multilingual places. Empty when no primary name resolved.
func (c *Candidate) PrimaryName() string {
	var parts []string
	for _, ln := range c.Resolved {
		if ln.Name != "" {
			parts = append(parts, ln.Name)
		}
	}
	return joinWith(parts, " - ")
}

// HasPrimaryName reports whether any language resolved a name=* entry.
func (c *Candidate) HasPrimaryName() bool {
	for _, ln := range c.Resolved {
		if ln.Name != "" {
			return true
		}
	}
	return false
}

// Multilingual reports whether the candidate carries more than one
// language, or a single non-Norwegian one; such candidates get name:xx=*
// suffixed tags.
func (c *Candidate) Multilingual() bool {
	if len(c.Resolved) > 1 {
		return true
	}
	return len(c.Resolved) == 1 && !IsNorwegian(c.Resolved[0].Lang)
}

func joinWith(parts []string, sep string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += sep + p
	}
	return out
}
