package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmno/ssr2osm/internal/config"
	"github.com/osmno/ssr2osm/internal/kommune"
	"github.com/osmno/ssr2osm/internal/output"
	"github.com/osmno/ssr2osm/internal/ssr"
)

// fakeSource serves canned records per scope code.
type fakeSource struct {
	records map[string][]ssr.RawRecord
	fail    map[string]bool
}

func (s *fakeSource) Records(_ context.Context, code string) ([]ssr.RawRecord, error) {
	if s.fail[code] {
		return nil, assert.AnError
	}
	return s.records[code], nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Convert:   config.ConvertConfig{OutputDir: t.TempDir(), Concurrency: 2},
		Languages: config.LanguageConfig{Priority: "nor-sme"},
		Rank:      config.RankConfig{MaxDistanceM: 500},
		Relocate:  config.RelocateConfig{MarginM: 5},
	}
}

func testRegistry() *kommune.Registry {
	return kommune.NewRegistry(map[string]string{
		"46":   "Vestland",
		"4601": "Bergen",
		"4640": "Sogndal",
	})
}

func TestPipelineRun(t *testing.T) {
	cfg := testConfig(t)
	src := &fakeSource{records: map[string][]ssr.RawRecord{
		"4601": {
			rawRecord("100", "tettsted",
				ssr.RawName{Text: "Solvik", Lang: "nor", SpellStatus: "vedtatt", Priority: true, Public: true},
			),
			rawRecord("200", "adressenavn",
				ssr.RawName{Text: "Utaggert", Lang: "nor", SpellStatus: "vedtatt", Priority: true, Public: true},
			),
		},
	}}

	p := NewPipeline(cfg, loadTestCatalog(t), testRegistry(), src, Options{Scope: "4601"})
	sum, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Scopes)
	assert.Equal(t, 2, sum.Records)
	assert.Equal(t, 1, sum.Converted)
	assert.Equal(t, 1, sum.SkippedUntagged)

	path := filepath.Join(cfg.Convert.OutputDir, "stedsnavn_4601_Bergen.geojson")
	feats, err := output.ReadGeoJSON(path)
	require.NoError(t, err)
	require.Len(t, feats, 1)
	assert.Equal(t, "Solvik", feats[0].Tags["name"])
	assert.Equal(t, "100", feats[0].ID())
}

func TestPipelineCountyScope(t *testing.T) {
	cfg := testConfig(t)
	record := func(id, municipality string) ssr.RawRecord {
		rec := rawRecord(id, "tettsted",
			ssr.RawName{Text: "Solvik", Lang: "nor", SpellStatus: "vedtatt", Priority: true, Public: true},
		)
		rec.Municipality = municipality
		return rec
	}
	src := &fakeSource{records: map[string][]ssr.RawRecord{
		"4601": {record("100", "4601")},
		"4640": {record("200", "4640")},
	}}

	p := NewPipeline(cfg, loadTestCatalog(t), testRegistry(), src, Options{Scope: "46"})
	sum, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Scopes)
	assert.Equal(t, 2, sum.Converted)

	// County runs span municipalities, so features carry the KOMMUNE tag.
	feats, err := output.ReadGeoJSON(filepath.Join(cfg.Convert.OutputDir, "stedsnavn_4601_Bergen.geojson"))
	require.NoError(t, err)
	require.Len(t, feats, 1)
	assert.Equal(t, "4601", feats[0].Tags["KOMMUNE"])
}

func TestPipelineIsolatesScopeFailure(t *testing.T) {
	cfg := testConfig(t)
	src := &fakeSource{
		records: map[string][]ssr.RawRecord{
			"4601": {rawRecord("100", "tettsted",
				ssr.RawName{Text: "Solvik", Lang: "nor", SpellStatus: "vedtatt", Priority: true, Public: true},
			)},
		},
		fail: map[string]bool{"4640": true},
	}

	p := NewPipeline(cfg, loadTestCatalog(t), testRegistry(), src, Options{Scope: "46"})
	sum, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Scopes)
	assert.Equal(t, []string{"4640"}, sum.FailedScopes)
	assert.Equal(t, 1, sum.Converted)
}

func TestPipelineAllScopesFail(t *testing.T) {
	cfg := testConfig(t)
	src := &fakeSource{fail: map[string]bool{"4601": true}}

	p := NewPipeline(cfg, loadTestCatalog(t), testRegistry(), src, Options{Scope: "4601"})
	_, err := p.Run(context.Background())
	assert.Error(t, err)
}

func TestPipelineTypeFilter(t *testing.T) {
	cfg := testConfig(t)
	src := &fakeSource{records: map[string][]ssr.RawRecord{
		"4601": {
			rawRecord("100", "tettsted",
				ssr.RawName{Text: "Solvik", Lang: "nor", SpellStatus: "vedtatt", Priority: true, Public: true},
			),
			rawRecord("200", "gard",
				ssr.RawName{Text: "Nordgard", Lang: "nor", SpellStatus: "vedtatt", Priority: true, Public: true},
			),
		},
	}}

	p := NewPipeline(cfg, loadTestCatalog(t), testRegistry(), src, Options{Scope: "4601", TypeFilter: "gard"})
	sum, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Converted)

	feats, err := output.ReadGeoJSON(filepath.Join(cfg.Convert.OutputDir, "stedsnavn_4601_Bergen_gard.geojson"))
	require.NoError(t, err)
	require.Len(t, feats, 1)
	assert.Equal(t, "Nordgard", feats[0].Tags["name"])
}

func TestPipelineNudgesCoincidentPoints(t *testing.T) {
	cfg := testConfig(t)
	src := &fakeSource{records: map[string][]ssr.RawRecord{
		"4601": {
			rawRecord("100", "tettsted",
				ssr.RawName{Text: "Solvik", Lang: "nor", SpellStatus: "vedtatt", Priority: true, Public: true},
			),
			rawRecord("200", "tettsted",
				ssr.RawName{Text: "Solheim", Lang: "nor", SpellStatus: "vedtatt", Priority: true, Public: true},
			),
		},
	}}

	p := NewPipeline(cfg, loadTestCatalog(t), testRegistry(), src, Options{Scope: "4601"})
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	feats, err := output.ReadGeoJSON(filepath.Join(cfg.Convert.OutputDir, "stedsnavn_4601_Bergen.geojson"))
	require.NoError(t, err)
	require.Len(t, feats, 2)
	assert.NotEqual(t, feats[0].Point, feats[1].Point)
	assert.InDelta(t, feats[0].Point[1], feats[1].Point[1], 2*nudgeStep)
}

func TestPipelineOutputsToMissingDirFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Convert.OutputDir = filepath.Join(cfg.Convert.OutputDir, "missing", "dir")
	src := &fakeSource{records: map[string][]ssr.RawRecord{
		"4601": {rawRecord("100", "tettsted",
			ssr.RawName{Text: "Solvik", Lang: "nor", SpellStatus: "vedtatt", Priority: true, Public: true},
		)},
	}}

	p := NewPipeline(cfg, loadTestCatalog(t), testRegistry(), src, Options{Scope: "4601"})
	_, err := p.Run(context.Background())
	assert.Error(t, err)

	_, statErr := os.Stat(cfg.Convert.OutputDir)
	assert.True(t, os.IsNotExist(statErr))
}
