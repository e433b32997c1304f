package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTagged = `{
  "navnetypeHovedgrupper": [
    {
      "navn": "bebyggelse",
      "navnetypeGrupper": [
        {
          "navn": "bebyggelser",
          "navnetyper": [
            {"navn": "by", "tags": {"place": "town"}},
            {"navn": "tettsted", "tags": {"place": "village"}},
            {"navn": "gard", "tags": {"place": "farm"}},
            {"navn": "bygdelagBygd", "tags": {"place": "village", "fixme": "Sjekk avgrensing"}},
            {"navn": "adressenavn", "tags": {}}
          ]
        }
      ]
    },
    {
      "navn": "hydrografi",
      "navnetypeGrupper": [
        {
          "navn": "elver",
          "navnetyper": [
            {"navn": "elv", "tags": {"waterway": "river"}}
          ]
        }
      ]
    }
  ]
}`

func TestParse(t *testing.T) {
	cat, err := Parse(strings.NewReader(sampleTagged))
	require.NoError(t, err)
	assert.Equal(t, 6, cat.Len())

	rule, ok := cat.Rule("by")
	require.True(t, ok)
	assert.Equal(t, "town", rule.Tags["place"])
	assert.Equal(t, "bebyggelser", rule.Group)
	assert.Equal(t, "bebyggelse", rule.MainGroup)
	assert.Equal(t, CategorySettlement, rule.Category)
	assert.True(t, rule.Tagged())
}

func TestParseCategories(t *testing.T) {
	cat, err := Parse(strings.NewReader(sampleTagged))
	require.NoError(t, err)

	tests := []struct {
		name     string
		typeCode string
		want     Category
	}{
		{name: "town is settlement", typeCode: "by", want: CategorySettlement},
		{name: "farm is building-associated", typeCode: "gard", want: CategoryBuilding},
		{name: "river is waterway", typeCode: "elv", want: CategoryWaterway},
		{name: "untagged is other", typeCode: "adressenavn", want: CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := cat.Rule(tt.typeCode)
			require.True(t, ok)
			assert.Equal(t, tt.want, rule.Category)
		})
	}
}

func TestParsePriorities(t *testing.T) {
	cat, err := Parse(strings.NewReader(sampleTagged))
	require.NoError(t, err)

	town, _ := cat.Rule("by")
	village, _ := cat.Rule("tettsted")
	river, _ := cat.Rule("elv")
	untagged, _ := cat.Rule("adressenavn")

	assert.Less(t, town.Priority, village.Priority)
	assert.Less(t, village.Priority, river.Priority)
	assert.Less(t, river.Priority, untagged.Priority)
}

func TestParseFixme(t *testing.T) {
	cat, err := Parse(strings.NewReader(sampleTagged))
	require.NoError(t, err)

	rule, _ := cat.Rule("bygdelagBygd")
	assert.Equal(t, "Sjekk avgrensing", rule.Fixme)
	assert.NotContains(t, rule.Tags, "fixme")
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"navnetypeHovedgrupper": []}`))
	assert.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	cat, err := Parse(strings.NewReader(sampleTagged))
	require.NoError(t, err)

	overrides := `
by:
  place: city
  population: ""
elv:
  waterway: ""
  natural: water
nyType:
  landuse: quarry
`
	require.NoError(t, cat.ApplyOverrides(strings.NewReader(overrides)))

	by, _ := cat.Rule("by")
	assert.Equal(t, "city", by.Tags["place"])

	elv, _ := cat.Rule("elv")
	assert.NotContains(t, elv.Tags, "waterway")
	assert.Equal(t, "water", elv.Tags["natural"])
	assert.Equal(t, CategoryOther, elv.Category)

	added, ok := cat.Rule("nyType")
	require.True(t, ok)
	assert.Equal(t, "quarry", added.Tags["landuse"])
}

func TestParseTagList(t *testing.T) {
	tags, err := parseTagList("place=farm; ssr:type=gard")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"place": "farm", "ssr:type": "gard"}, tags)

	_, err = parseTagList("place-farm")
	assert.Error(t, err)

	tags, err = parseTagList("")
	require.NoError(t, err)
	assert.Empty(t, tags)
}
