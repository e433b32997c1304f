package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Convert   ConvertConfig  `yaml:"convert" mapstructure:"convert"`
	Sources   SourcesConfig  `yaml:"sources" mapstructure:"sources"`
	Catalog   CatalogConfig  `yaml:"catalog" mapstructure:"catalog"`
	Languages LanguageConfig `yaml:"languages" mapstructure:"languages"`
	Rank      RankConfig     `yaml:"rank" mapstructure:"rank"`
	Relocate  RelocateConfig `yaml:"relocate" mapstructure:"relocate"`
	Store     StoreConfig    `yaml:"store" mapstructure:"store"`
	Server    ServerConfig   `yaml:"server" mapstructure:"server"`
	Log       LogConfig      `yaml:"log" mapstructure:"log"`
}

// ConvertConfig configures the conversion pipeline.
type ConvertConfig struct {
	OutputDir   string `yaml:"output_dir" mapstructure:"output_dir"`
	CacheDir    string `yaml:"cache_dir" mapstructure:"cache_dir"`
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
}

// SourcesConfig holds the Geonorge/Kartverket endpoints.
type SourcesConfig struct {
	KommuneinfoURL string `yaml:"kommuneinfo_url" mapstructure:"kommuneinfo_url"`
	ExtractBaseURL string `yaml:"extract_base_url" mapstructure:"extract_base_url"`
	WFSURL         string `yaml:"wfs_url" mapstructure:"wfs_url"`
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
}

// CatalogConfig configures the name-type tagging catalog.
type CatalogConfig struct {
	Path         string `yaml:"path" mapstructure:"path"`
	URL          string `yaml:"url" mapstructure:"url"`
	OverridePath string `yaml:"override_path" mapstructure:"override_path"`
}

// LanguageConfig configures name language precedence.
type LanguageConfig struct {
	// Priority is the fallback language order, SSR codes joined by "-",
	// used when the registry record carries no språkprioritering.
	Priority string `yaml:"priority" mapstructure:"priority"`
}

// RankConfig configures settlement rank adjustment from the N50/N100
// place-name layers.
type RankConfig struct {
	// MaxDistanceM is the proximity threshold for matching auxiliary points.
	MaxDistanceM float64 `yaml:"max_distance_m" mapstructure:"max_distance_m"`
	// N50Path and N100Path are shapefile path templates; %s is replaced by
	// the 4-digit municipality code. Empty disables the dataset.
	N50Path  string `yaml:"n50_path" mapstructure:"n50_path"`
	N100Path string `yaml:"n100_path" mapstructure:"n100_path"`
}

// RelocateConfig configures building-footprint point relocation.
type RelocateConfig struct {
	// MarginM is how far outside the footprint boundary the point is placed.
	MarginM float64 `yaml:"margin_m" mapstructure:"margin_m"`
	// BuildingPath is a shapefile path template; %s is replaced by the
	// 4-digit municipality code. Empty disables relocation.
	BuildingPath string `yaml:"building_path" mapstructure:"building_path"`
}

// StoreConfig configures the local run-history database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the review file server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SSR2OSM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("convert.output_dir", ".")
	v.SetDefault("convert.cache_dir", "/tmp/ssr2osm")
	v.SetDefault("convert.concurrency", 4)
	v.SetDefault("sources.kommuneinfo_url",
		"https://ws.geonorge.no/kommuneinfo/v1/fylkerkommuner?filtrer=fylkesnummer%2Cfylkesnavn%2Ckommuner.kommunenummer%2Ckommuner.kommunenavnNorsk")
	v.SetDefault("sources.extract_base_url", "https://nedlasting.geonorge.no/geonorge/Basisdata/Stedsnavn/GML")
	v.SetDefault("sources.wfs_url", "https://wfs.geonorge.no/skwms1/wfs.stedsnavn50")
	v.SetDefault("sources.user_agent", "osmno/ssr2osm")
	v.SetDefault("catalog.url", "https://raw.githubusercontent.com/NKAmapper/ssr2osm/main/navnetyper_tagged.json")
	v.SetDefault("languages.priority", "nor-sme-smj-sma-sms-fkv")
	v.SetDefault("rank.max_distance_m", 500.0)
	v.SetDefault("relocate.margin_m", 5.0)
	v.SetDefault("store.path", "ssr2osm.db")
	v.SetDefault("server.port", 8085)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
