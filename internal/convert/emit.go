package convert

import (
	"strings"

	"github.com/osmno/ssr2osm/internal/catalog"
	"github.com/osmno/ssr2osm/internal/place"
)

// EmitOptions configures tag emission for one scope.
type EmitOptions struct {
	// IncludeMunicipality adds the KOMMUNE tag, used when one output file
	// spans several municipalities.
	IncludeMunicipality bool
}

// Emit builds the final tag mapping for a resolved candidate. Pure: the
// same candidate always yields the same mapping, and no key carries an
// empty value. Uppercase keys are import-review annotations, not OSM tags.
func Emit(c *place.Candidate, rule catalog.Rule, opts EmitOptions) map[string]string {
	tags := map[string]string{
		"ssr:stedsnr": c.ID,
		"TYPE":        c.Type,
		"GRUPPE":      c.Group,
		"HOVEDGRUPPE": c.MainGroup,
	}
	if opts.IncludeMunicipality {
		tags["KOMMUNE"] = c.Municipality
	}
	if c.Duplicate {
		tags["DUPLICATE"] = "yes"
	}

	for k, v := range rule.Tags {
		tags[k] = v
	}
	if c.PlaceRank != "" {
		tags["place"] = c.PlaceRank
	}

	emitNames(tags, c)

	var fixmes []string
	if rule.Fixme != "" {
		fixmes = append(fixmes, rule.Fixme)
	}
	fixmes = append(fixmes, c.Fixme...)
	if len(fixmes) > 0 {
		tags["FIXME"] = strings.Join(fixmes, "; ")
	}

	for k, v := range tags {
		if v == "" {
			delete(tags, k)
		}
	}
	return tags
}

// emitNames writes the name tags. Norwegian-only candidates use the plain
// keys; multilingual ones get the combined name plus per-language suffixed
// keys, following the registry convention for bilingual signage.
func emitNames(tags map[string]string, c *place.Candidate) {
	tags["name"] = c.PrimaryName()

	if !c.Multilingual() {
		if len(c.Resolved) == 1 {
			ln := c.Resolved[0]
			setJoined(tags, "alt_name", ln.Alt)
			setJoined(tags, "loc_name", ln.Loc)
			setJoined(tags, "old_name", ln.Old)
		}
		return
	}

	for _, ln := range c.Resolved {
		sfx := place.SuffixFor(ln.Lang)
		if sfx == "" {
			continue
		}
		if ln.Name != "" {
			tags["name:"+sfx] = ln.Name
		}
		setJoined(tags, "alt_name:"+sfx, ln.Alt)
		setJoined(tags, "loc_name:"+sfx, ln.Loc)
		setJoined(tags, "old_name:"+sfx, ln.Old)
	}
}

func setJoined(tags map[string]string, key string, values []string) {
	if len(values) > 0 {
		tags[key] = strings.Join(values, ";")
	}
}
