package convert

import (
	"strconv"

	"github.com/osmno/ssr2osm/internal/catalog"
	"github.com/osmno/ssr2osm/internal/place"
)

// MarkDuplicates flags candidates whose resolved name collides with another
// candidate's in the same municipality. One candidate per collision group is
// kept unflagged: the one with the highest name-type priority, tie-broken by
// earliest registration (lowest stedsnummer). Returns the number flagged.
func MarkDuplicates(cands []*place.Candidate, cat *catalog.Catalog) int {
	groups := make(map[[2]string][]*place.Candidate)
	for _, c := range cands {
		name := c.PrimaryName()
		if name == "" {
			continue
		}
		key := [2]string{c.Municipality, name}
		groups[key] = append(groups[key], c)
	}

	flagged := 0
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		keeper := group[0]
		for _, c := range group[1:] {
			if beats(c, keeper, cat) {
				keeper = c
			}
		}
		for _, c := range group {
			if c != keeper {
				c.Duplicate = true
				flagged++
			}
		}
	}
	return flagged
}

// beats reports whether a should be kept over b.
func beats(a, b *place.Candidate, cat *catalog.Catalog) bool {
	pa, pb := typePriority(a, cat), typePriority(b, cat)
	if pa != pb {
		return pa < pb
	}
	return registeredBefore(a.ID, b.ID)
}

func typePriority(c *place.Candidate, cat *catalog.Catalog) int {
	if rule, ok := cat.Rule(c.Type); ok {
		return rule.Priority
	}
	return 100
}

// registeredBefore compares stedsnummer, which the registry assigns in
// registration order. Non-numeric identifiers compare lexically.
func registeredBefore(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}
