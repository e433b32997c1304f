package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmno/ssr2osm/internal/catalog"
	"github.com/osmno/ssr2osm/internal/place"
)

func TestEmit(t *testing.T) {
	c := &place.Candidate{
		ID:           "123",
		Municipality: "4601",
		Type:         "tettsted",
		Group:        "bebyggelser",
		MainGroup:    "bebyggelse",
		Resolved: []place.LangNames{
			{Lang: "nor", Name: "Solvik", Alt: []string{"Solvika"}, Old: []string{"Soelvig"}},
		},
	}
	rule := catalog.Rule{Tags: map[string]string{"place": "village"}}

	tags := Emit(c, rule, EmitOptions{})

	assert.Equal(t, "123", tags["ssr:stedsnr"])
	assert.Equal(t, "Solvik", tags["name"])
	assert.Equal(t, "Solvika", tags["alt_name"])
	assert.Equal(t, "Soelvig", tags["old_name"])
	assert.Equal(t, "village", tags["place"])
	assert.Equal(t, "tettsted", tags["TYPE"])
	assert.NotContains(t, tags, "KOMMUNE")
	assert.NotContains(t, tags, "DUPLICATE")
}

func TestEmitIdempotent(t *testing.T) {
	c := &place.Candidate{
		ID:   "123",
		Type: "tettsted",
		Resolved: []place.LangNames{
			{Lang: "nor", Name: "Solvik", Alt: []string{"Solvika", "Solviki"}},
		},
		Duplicate: true,
		Fixme:     []string{tieFixme},
	}
	rule := catalog.Rule{Tags: map[string]string{"place": "village"}, Fixme: "Sjekk plassering"}

	first := Emit(c, rule, EmitOptions{IncludeMunicipality: true})
	second := Emit(c, rule, EmitOptions{IncludeMunicipality: true})
	assert.Equal(t, first, second)
}

func TestEmitNoEmptyValues(t *testing.T) {
	c := &place.Candidate{
		ID:       "123",
		Type:     "tettsted",
		Resolved: []place.LangNames{{Lang: "nor", Name: "Solvik"}},
	}
	rule := catalog.Rule{Tags: map[string]string{"place": "village", "note": ""}}

	tags := Emit(c, rule, EmitOptions{})
	for k, v := range tags {
		assert.NotEmpty(t, v, "tag %s has empty value", k)
	}
	// Group fields absent from the source stay out of the output.
	assert.NotContains(t, tags, "GRUPPE")
	assert.NotContains(t, tags, "note")
}

func TestEmitDuplicateAnnotation(t *testing.T) {
	c := &place.Candidate{
		ID:        "123",
		Type:      "tettsted",
		Resolved:  []place.LangNames{{Lang: "nor", Name: "Solvik"}},
		Duplicate: true,
	}
	tags := Emit(c, catalog.Rule{Tags: map[string]string{"place": "village"}}, EmitOptions{})
	assert.Equal(t, "yes", tags["DUPLICATE"])
}

func TestEmitRankOverride(t *testing.T) {
	c := &place.Candidate{
		ID:         "123",
		Type:       "tettsted",
		Resolved:   []place.LangNames{{Lang: "nor", Name: "Solvik"}},
		PlaceRank:  "hamlet",
		RankSource: place.RankN50,
	}
	tags := Emit(c, catalog.Rule{Tags: map[string]string{"place": "village"}}, EmitOptions{})
	assert.Equal(t, "hamlet", tags["place"])
}

func TestEmitMultilingual(t *testing.T) {
	c := &place.Candidate{
		ID:   "123",
		Type: "tettsted",
		Resolved: []place.LangNames{
			{Lang: "nor", Name: "Kautokeino", Old: []string{"Koutokæino"}},
			{Lang: "sme", Name: "Guovdageaidnu"},
		},
	}
	tags := Emit(c, catalog.Rule{Tags: map[string]string{"place": "village"}}, EmitOptions{})

	assert.Equal(t, "Kautokeino - Guovdageaidnu", tags["name"])
	assert.Equal(t, "Kautokeino", tags["name:no"])
	assert.Equal(t, "Guovdageaidnu", tags["name:se"])
	assert.Equal(t, "Koutokæino", tags["old_name:no"])
	assert.NotContains(t, tags, "old_name")
}

func TestEmitFixmeCombined(t *testing.T) {
	c := &place.Candidate{
		ID:       "123",
		Type:     "tettsted",
		Resolved: []place.LangNames{{Lang: "nor", Name: "Solvik"}},
		Fixme:    []string{tieFixme},
	}
	rule := catalog.Rule{Tags: map[string]string{"place": "village"}, Fixme: "Sjekk plassering"}

	tags := Emit(c, rule, EmitOptions{})
	require.Contains(t, tags, "FIXME")
	assert.Equal(t, "Sjekk plassering; "+tieFixme, tags["FIXME"])
}
