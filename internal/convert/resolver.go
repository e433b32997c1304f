package convert

import (
	"sort"

	"github.com/osmno/ssr2osm/internal/place"
)

// tieFixme is the review note attached when several spellings compete for
// the name tag in one language.
const tieFixme = "Velg én skrivemåte i name=* og legg resten i alt_name=*"

// Resolver selects the tagging-visible names of a candidate: one primary
// spelling per language, the rest demoted to alt/loc/old name tags.
type Resolver struct{}

// ResolveAll resolves every candidate in the batch.
func (r Resolver) ResolveAll(cands []*place.Candidate) {
	for _, c := range cands {
		r.Resolve(c)
	}
}

// Resolve fills c.Resolved from c.Names. Languages appear in the
// candidate's priority order; languages present in the entries but absent
// from the priority list follow in order of first appearance.
func (r Resolver) Resolve(c *place.Candidate) {
	buckets := make(map[string][]place.NameEntry)
	var langOrder []string

	seen := make(map[string]bool)
	for _, lang := range c.LangPriority {
		if !seen[lang] {
			seen[lang] = true
			langOrder = append(langOrder, lang)
		}
	}
	for _, e := range c.Names {
		if !seen[e.Lang] {
			seen[e.Lang] = true
			langOrder = append(langOrder, e.Lang)
		}
		buckets[e.Lang] = append(buckets[e.Lang], e)
	}

	c.Resolved = c.Resolved[:0]
	for _, lang := range langOrder {
		entries := buckets[lang]
		if len(entries) == 0 {
			continue
		}
		ln := r.resolveLang(c, lang, entries)
		if ln.Name != "" || len(ln.Alt) > 0 || len(ln.Loc) > 0 || len(ln.Old) > 0 {
			c.Resolved = append(c.Resolved, ln)
		}
	}
}

// resolveLang picks the names of one language bucket. Primary entries are
// ordered by registry priority flag then registration order; the first
// becomes the name, further ones become alt names with a review flag.
func (r Resolver) resolveLang(c *place.Candidate, lang string, entries []place.NameEntry) place.LangNames {
	ln := place.LangNames{Lang: lang}

	var primaries []place.NameEntry
	for _, e := range entries {
		switch e.Status {
		case place.StatusHistoric:
			ln.Old = appendUnique(ln.Old, e.Text)
		case place.StatusProposed:
			ln.Loc = appendUnique(ln.Loc, e.Text)
		case place.StatusSecondary:
			ln.Alt = appendUnique(ln.Alt, e.Text)
		default:
			primaries = append(primaries, e)
		}
	}

	sort.SliceStable(primaries, func(i, j int) bool {
		if primaries[i].Priority != primaries[j].Priority {
			return primaries[i].Priority
		}
		return primaries[i].RegOrder < primaries[j].RegOrder
	})

	// Only the registry-prioritized spellings compete for the name when any
	// exist; the rest demote to alternatives without a review flag. Distinct
	// spellings only, since the registry repeats a spelling across decisions.
	var competing, demoted []string
	anyFlagged := len(primaries) > 0 && primaries[0].Priority
	for _, e := range primaries {
		if e.Priority == anyFlagged {
			competing = appendUnique(competing, e.Text)
		} else {
			demoted = appendUnique(demoted, e.Text)
		}
	}

	if len(competing) > 0 {
		ln.Name = competing[0]
		for _, text := range competing[1:] {
			ln.Alt = appendUnique(ln.Alt, text)
		}
		if len(competing) > 1 {
			c.NameTie = true
			c.Fixme = appendUnique(c.Fixme, tieFixme)
		}
	}
	for _, text := range demoted {
		ln.Alt = appendUnique(ln.Alt, text)
	}

	// A spelling never doubles as both the name and an alternative.
	ln.Alt = removeValue(ln.Alt, ln.Name)
	ln.Loc = removeValue(ln.Loc, ln.Name)
	return ln
}

func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, have := range list {
		if have == v {
			return list
		}
	}
	return append(list, v)
}

func removeValue(list []string, v string) []string {
	if v == "" {
		return list
	}
	out := list[:0]
	for _, have := range list {
		if have != v {
			out = append(out, have)
		}
	}
	return out
}
