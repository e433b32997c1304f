package output

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func feature(id, name string, lon, lat float64) Feature {
	return Feature{
		Tags:  map[string]string{"ssr:stedsnr": id, "name": name, "place": "village"},
		Point: geom.Coord{lon, lat},
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "plain municipality",
			got:  Filename("4601", "Bergen", "", false, false),
			want: "stedsnavn_4601_Bergen.geojson",
		},
		{
			name: "norwegian letters folded",
			got:  Filename("1804", "Bodø", "", false, false),
			want: "stedsnavn_1804_Bodo.geojson",
		},
		{
			name: "all modifiers",
			got:  Filename("00", "Norge", "gard", true, true),
			want: "stedsnavn_00_Norge_gard_wfs_all.geojson",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestWriteReadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.geojson")
	feats := []Feature{
		feature("100", "Solvik", 10.5, 60.5),
		feature("200", "Solheim", 11.0, 61.0),
	}
	require.NoError(t, WriteGeoJSON(path, feats))

	got, err := ReadGeoJSON(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "100", got[0].ID())
	assert.Equal(t, "Solvik", got[0].Tags["name"])
	assert.InDelta(t, 10.5, got[0].Point[0], 1e-9)
}

func TestDiff(t *testing.T) {
	older := []Feature{
		feature("100", "Solvik", 10, 60),
		feature("200", "Solheim", 10, 60),
		feature("300", "Nordgard", 10, 60),
	}
	newer := []Feature{
		feature("100", "Solvik", 10, 60),
		feature("300", "Nordgård", 10, 60),
		feature("400", "Sørgard", 10, 60),
	}

	d := Diff(older, newer)
	assert.False(t, d.Empty())
	assert.Equal(t, []string{"400"}, d.Added)
	assert.Equal(t, []string{"200"}, d.Removed)
	require.Len(t, d.Renamed, 1)
	assert.Equal(t, Change{ID: "300", OldName: "Nordgard", NewName: "Nordgård"}, d.Renamed[0])
}

func TestDiffIdentical(t *testing.T) {
	feats := []Feature{feature("100", "Solvik", 10, 60)}
	assert.True(t, Diff(feats, feats).Empty())
}
