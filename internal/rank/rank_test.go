package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/osmno/ssr2osm/internal/catalog"
	"github.com/osmno/ssr2osm/internal/dataset"
	"github.com/osmno/ssr2osm/internal/place"
	"github.com/osmno/ssr2osm/internal/spatial"
)

func pointIndex(points ...dataset.NamePoint) *spatial.PointIndex[dataset.NamePoint] {
	return spatial.NewPointIndex(points, func(p dataset.NamePoint) geom.Coord { return p.Coord })
}

func settlementRule(placeValue string) catalog.Rule {
	return catalog.Rule{
		Type:     "tettsted",
		Tags:     map[string]string{"place": placeValue},
		Category: catalog.CategorySettlement,
	}
}

func candidate(name string, at geom.Coord) *place.Candidate {
	return &place.Candidate{
		ID:       "123",
		Point:    at,
		Resolved: []place.LangNames{{Lang: "nor", Name: name}},
	}
}

func TestAdjustFromN50(t *testing.T) {
	n50 := pointIndex(dataset.NamePoint{Coord: geom.Coord{10.001, 60}, Name: "Solvik", Rank: "hamlet"})
	a := NewAdjuster(n50, nil, 500)

	c := candidate("Solvik", geom.Coord{10, 60})
	a.Adjust(c, settlementRule("village"))

	assert.Equal(t, "hamlet", c.PlaceRank)
	assert.Equal(t, place.RankN50, c.RankSource)
	assert.Equal(t, 1, a.Adjusted)
}

func TestAdjustPrefersN50OverN100(t *testing.T) {
	n50 := pointIndex(dataset.NamePoint{Coord: geom.Coord{10.001, 60}, Name: "Solvik", Rank: "hamlet"})
	n100 := pointIndex(dataset.NamePoint{Coord: geom.Coord{10.0001, 60}, Name: "Solvik", Rank: "town"})
	a := NewAdjuster(n50, n100, 500)

	c := candidate("Solvik", geom.Coord{10, 60})
	a.Adjust(c, settlementRule("village"))

	assert.Equal(t, "hamlet", c.PlaceRank)
	assert.Equal(t, place.RankN50, c.RankSource)
}

func TestAdjustFallsBackToN100(t *testing.T) {
	n100 := pointIndex(dataset.NamePoint{Coord: geom.Coord{10.001, 60}, Name: "Solvik", Rank: "quarter"})
	a := NewAdjuster(nil, n100, 500)

	c := candidate("Solvik", geom.Coord{10, 60})
	a.Adjust(c, settlementRule("village"))

	assert.Equal(t, "quarter", c.PlaceRank)
	assert.Equal(t, place.RankN100, c.RankSource)
}

func TestAdjustDiacriticInsensitiveMatch(t *testing.T) {
	n50 := pointIndex(dataset.NamePoint{Coord: geom.Coord{10.001, 60}, Name: "KARASJOHKA", Rank: "hamlet"})
	a := NewAdjuster(n50, nil, 500)

	c := candidate("Kárášjohka", geom.Coord{10, 60})
	a.Adjust(c, settlementRule("village"))

	assert.Equal(t, "hamlet", c.PlaceRank)
}

func TestAdjustSkipsNonSettlement(t *testing.T) {
	n50 := pointIndex(dataset.NamePoint{Coord: geom.Coord{10.001, 60}, Name: "Solvik", Rank: "hamlet"})
	a := NewAdjuster(n50, nil, 500)

	c := candidate("Solvik", geom.Coord{10, 60})
	a.Adjust(c, catalog.Rule{Category: catalog.CategoryWaterway, Tags: map[string]string{"waterway": "river"}})

	assert.Empty(t, c.PlaceRank)
	assert.Equal(t, place.RankNone, c.RankSource)
}

func TestAdjustSkipsConfidentRegistryRank(t *testing.T) {
	n50 := pointIndex(dataset.NamePoint{Coord: geom.Coord{10.001, 60}, Name: "Solvik", Rank: "hamlet"})
	a := NewAdjuster(n50, nil, 500)

	c := candidate("Solvik", geom.Coord{10, 60})
	a.Adjust(c, settlementRule("town"))

	assert.Empty(t, c.PlaceRank)
}

func TestAdjustRespectsDistanceAndName(t *testing.T) {
	n50 := pointIndex(
		dataset.NamePoint{Coord: geom.Coord{10.5, 60}, Name: "Solvik", Rank: "hamlet"},
		dataset.NamePoint{Coord: geom.Coord{10.001, 60}, Name: "Annenstad", Rank: "hamlet"},
	)
	a := NewAdjuster(n50, nil, 500)

	c := candidate("Solvik", geom.Coord{10, 60})
	a.Adjust(c, settlementRule("village"))

	assert.Empty(t, c.PlaceRank)
	require.Equal(t, 0, a.Adjusted)
}

func TestFoldName(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{name: "case", a: "Bodø", b: "BODØ"},
		{name: "norwegian letters", a: "Bodø", b: "Bodo"},
		{name: "sami diacritics", a: "Kárášjohka", b: "Karasjohka"},
		{name: "ae ligature", a: "Bærum", b: "Baerum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, foldName(tt.a), foldName(tt.b))
		})
	}
}
