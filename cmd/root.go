package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/osmno/ssr2osm/internal/config"
	"github.com/osmno/ssr2osm/internal/fetcher"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ssr2osm",
	Short: "Convert SSR place names to OSM-taggable GeoJSON",
	Long:  "Converts Norway's central place-name registry (SSR) into GeoJSON files with OSM tags, for import review in JOSM.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newFetcher builds the shared HTTP fetcher from config.
func newFetcher() *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.Sources.UserAgent,
		Timeout:      10 * time.Minute,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
