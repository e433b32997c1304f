package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/osmno/ssr2osm/internal/catalog"
	"github.com/osmno/ssr2osm/internal/convert"
	"github.com/osmno/ssr2osm/internal/kommune"
	"github.com/osmno/ssr2osm/internal/ssr"
	"github.com/osmno/ssr2osm/internal/store"
)

var (
	convertType      string
	convertAll       bool
	convertWFS       bool
	convertNoBuild   bool
	convertWaterway  bool
	convertOutputDir string
)

var convertCmd = &cobra.Command{
	Use:   "convert <municipality|county|Norge>",
	Short: "Convert place names for a municipality, county or all of Norway",
	Long: "Converts SSR records to GeoJSON with OSM tags. The scope is a 4-digit municipality code, " +
		"a 2-digit county code, a (partial) municipality name, or \"Norge\" for one file per municipality.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if convertOutputDir != "" {
			cfg.Convert.OutputDir = convertOutputDir
		}
		if err := os.MkdirAll(cfg.Convert.OutputDir, 0o755); err != nil {
			return eris.Wrap(err, "create output dir")
		}

		f := newFetcher()

		registry, err := kommune.LoadRegistry(ctx, f, cfg.Sources.KommuneinfoURL, convertWFS)
		if err != nil {
			return err
		}

		scope, err := registry.Resolve(args[0])
		if err != nil {
			return err
		}

		cat, err := catalog.Load(ctx, f, cfg.Catalog)
		if err != nil {
			return err
		}
		if convertType != "" && !cat.Has(convertType) && !convertAll {
			return eris.Errorf("unknown name type %q", convertType)
		}

		countryWide := convertWFS && scope == kommune.NorwayCode && convertType != ""

		var source convert.Source
		if convertWFS {
			wfs := ssr.NewWFSSource(f, cfg.Sources.WFSURL)
			if countryWide {
				wfs.TypeFilter = convertType
			}
			source = wfs
		} else {
			source = ssr.NewFileSource(f, registry, cfg.Sources.ExtractBaseURL, cfg.Convert.CacheDir)
		}

		pipeline := convert.NewPipeline(cfg, cat, registry, source, convert.Options{
			Scope:             scope,
			TypeFilter:        convertType,
			IncludeAll:        convertAll,
			UseWFS:            convertWFS,
			NoBuilding:        convertNoBuild,
			AllWaterwayPoints: convertWaterway,
			CountryWide:       countryWide,
		})

		started := time.Now()
		summary, err := pipeline.Run(ctx)
		if err != nil {
			return err
		}
		summary.Log()

		recordRun(ctx, scope, started, summary)
		return nil
	},
}

// recordRun logs the run to the local history database. History is an
// audit aid; failure to record is not a conversion failure.
func recordRun(ctx context.Context, scope string, started time.Time, summary convert.Summary) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		zap.L().Warn("run history unavailable", zap.Error(err))
		return
	}
	defer st.Close() //nolint:errcheck

	source := "file"
	if convertWFS {
		source = "wfs"
	}
	run := store.RunRecord{
		StartedAt:    started,
		FinishedAt:   time.Now(),
		Scope:        scope,
		TypeFilter:   convertType,
		Source:       source,
		Records:      summary.Records,
		Converted:    summary.Converted,
		Duplicates:   summary.Duplicates,
		RankAdjusted: summary.RankAdjusted,
		Relocated:    summary.Relocated,
		FailedScopes: len(summary.FailedScopes),
	}
	if err := st.RecordRun(ctx, &run); err != nil {
		zap.L().Warn("run not recorded", zap.Error(err))
	}
}

func init() {
	convertCmd.Flags().StringVar(&convertType, "type", "", "restrict to one SSR name type, e.g. gard")
	convertCmd.Flags().BoolVar(&convertAll, "all", false, "include untagged name types and candidates without a current name")
	convertCmd.Flags().BoolVar(&convertWFS, "wfs", false, "query the live WFS instead of the file extracts")
	convertCmd.Flags().BoolVar(&convertNoBuild, "no-building", false, "skip building footprint relocation")
	convertCmd.Flags().BoolVar(&convertWaterway, "waterway-points", false, "emit every point of waterway multipoint geometries")
	convertCmd.Flags().StringVar(&convertOutputDir, "output", "", "output directory (overrides config)")
	rootCmd.AddCommand(convertCmd)
}
