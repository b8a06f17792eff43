package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gpsymreg/pkg/gpsymreg"
)

var (
	lineageRunID  string
	lineageLatest bool
	lineageLimit  int
)

var lineageCmd = &cobra.Command{
	Use:   "lineage",
	Short: "Show a run's genealogy records",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()
		if err := client.Init(cmd.Context()); err != nil {
			return err
		}

		records, err := client.Lineage(cmd.Context(), gpsymreg.LineageRequest{
			RunID:  lineageRunID,
			Latest: lineageLatest,
			Limit:  lineageLimit,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "GEN\tINDIVIDUAL\tOPERATION\tSIZE\tPARENTS")
		for _, rec := range records {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
				rec.Generation, shortID(rec.IndividualID), rec.Operation, rec.Size,
				shortIDs(rec.ParentIDs))
		}
		return w.Flush()
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func shortIDs(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	short := make([]string, len(ids))
	for i, id := range ids {
		short[i] = shortID(id)
	}
	return strings.Join(short, ",")
}

func init() {
	lineageCmd.Flags().StringVar(&lineageRunID, "run", "", "Run to inspect")
	lineageCmd.Flags().BoolVar(&lineageLatest, "latest", false, "Inspect the most recent run")
	lineageCmd.Flags().IntVar(&lineageLimit, "limit", 0, "Maximum records to show (0 = all)")
	rootCmd.AddCommand(lineageCmd)
}
