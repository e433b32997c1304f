package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chtemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Convert.OutputDir)
	assert.Equal(t, 4, cfg.Convert.Concurrency)
	assert.Equal(t, "nor-sme-smj-sma-sms-fkv", cfg.Languages.Priority)
	assert.InDelta(t, 500.0, cfg.Rank.MaxDistanceM, 0.001)
	assert.InDelta(t, 5.0, cfg.Relocate.MarginM, 0.001)
	assert.Empty(t, cfg.Rank.N50Path)
	assert.Equal(t, "ssr2osm.db", cfg.Store.Path)
	assert.Equal(t, 8085, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Contains(t, cfg.Sources.WFSURL, "wfs.geonorge.no")
	assert.Contains(t, cfg.Catalog.URL, "navnetyper_tagged.json")
}

func TestLoadFromYAML(t *testing.T) {
	dir := chtemp(t)

	yaml := `
convert:
  output_dir: /data/out
  concurrency: 8
languages:
  priority: sme-nor
rank:
  max_distance_m: 250
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/out", cfg.Convert.OutputDir)
	assert.Equal(t, 8, cfg.Convert.Concurrency)
	assert.Equal(t, "sme-nor", cfg.Languages.Priority)
	assert.InDelta(t, 250.0, cfg.Rank.MaxDistanceM, 0.001)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFromEnv(t *testing.T) {
	chtemp(t)
	t.Setenv("SSR2OSM_LOG_LEVEL", "warn")
	t.Setenv("SSR2OSM_CONVERT_CONCURRENCY", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Convert.Concurrency)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
