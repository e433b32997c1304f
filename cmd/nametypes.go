package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/osmno/ssr2osm/internal/catalog"
)

var (
	nametypesTable string
	nametypesOut   string
)

var nametypesCmd = &cobra.Command{
	Use:   "nametypes",
	Short: "Inspect or rebuild the name-type tagging catalog",
}

var nametypesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the name types of the loaded catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cat, err := catalog.Load(ctx, newFetcher(), cfg.Catalog)
		if err != nil {
			return err
		}

		for _, typeCode := range cat.Types() {
			rule, _ := cat.Rule(typeCode)
			marker := " "
			if rule.Tagged() {
				marker = "*"
			}
			fmt.Printf("%s %-40s %s / %s\n", marker, typeCode, rule.MainGroup, rule.Group)
		}
		fmt.Fprintf(os.Stderr, "%d name types, * = tagged\n", cat.Len())
		return nil
	},
}

var nametypesBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild navnetyper_tagged.json from the codelists and tagging table",
	Long: "Fetches the Geonorge SOSI codelists and merges them with the maintained " +
		"tagging table (.xlsx or .csv) into a fresh navnetyper_tagged.json.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if nametypesTable == "" {
			return eris.New("--table is required")
		}

		data, err := catalog.BuildTagged(ctx, newFetcher(), nametypesTable)
		if err != nil {
			return err
		}

		if err := os.WriteFile(nametypesOut, data, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", nametypesOut)
		}
		zap.L().Info("catalog written",
			zap.String("file", nametypesOut),
			zap.Int("bytes", len(data)),
		)
		return nil
	},
}

func init() {
	nametypesBuildCmd.Flags().StringVar(&nametypesTable, "table", "", "tagging table file (.xlsx or .csv)")
	nametypesBuildCmd.Flags().StringVar(&nametypesOut, "out", "navnetyper_tagged.json", "output file")

	nametypesCmd.AddCommand(nametypesListCmd)
	nametypesCmd.AddCommand(nametypesBuildCmd)
	rootCmd.AddCommand(nametypesCmd)
}
