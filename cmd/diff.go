package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/osmno/ssr2osm/internal/output"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old.geojson> <new.geojson>",
	Short: "Compare two conversion outputs of the same scope",
	Long: "Lists registry entries added, removed or renamed between two runs, " +
		"matched by ssr:stedsnr. Useful before re-importing an updated municipality.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		older, err := output.ReadGeoJSON(args[0])
		if err != nil {
			return err
		}
		newer, err := output.ReadGeoJSON(args[1])
		if err != nil {
			return err
		}

		d := output.Diff(older, newer)
		if d.Empty() {
			fmt.Fprintln(os.Stderr, "No changes.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, id := range d.Added {
			fmt.Fprintf(w, "added\t%s\n", id)
		}
		for _, id := range d.Removed {
			fmt.Fprintf(w, "removed\t%s\n", id)
		}
		for _, c := range d.Renamed {
			fmt.Fprintf(w, "renamed\t%s\t%s -> %s\n", c.ID, c.OldName, c.NewName)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "%d added, %d removed, %d renamed\n",
			len(d.Added), len(d.Removed), len(d.Renamed))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
