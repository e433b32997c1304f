package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/osmno/ssr2osm/internal/store"
)

var (
	runsScope string
	runsLimit int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past conversion runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		runs, err := st.ListRuns(ctx, runsScope, runsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tSCOPE\tTYPE\tSOURCE\tRECORDS\tCONVERTED\tDUPLICATES\tFAILED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
				r.StartedAt.Format("2006-01-02 15:04"),
				r.Scope, r.TypeFilter, r.Source,
				r.Records, r.Converted, r.Duplicates, r.FailedScopes,
			)
		}
		return w.Flush()
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsScope, "scope", "", "filter by scope code")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}
