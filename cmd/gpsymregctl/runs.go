package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gpsymreg/pkg/gpsymreg"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List persisted runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()
		if err := client.Init(cmd.Context()); err != nil {
			return err
		}

		items, err := client.Runs(cmd.Context(), gpsymreg.RunsRequest{Limit: runsLimit})
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tCREATED\tSEED\tPOP\tGEN\tSTATE\tBEST")
		for _, item := range items {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d/%d\t%s\t%g\n",
				item.RunID, item.CreatedAtUTC, item.Seed, item.Population,
				item.GenerationsRan, item.Generations, item.TerminalState, item.BestRaw)
		}
		return w.Flush()
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 0, "Maximum runs to list (0 = all)")
	rootCmd.AddCommand(runsCmd)
}
