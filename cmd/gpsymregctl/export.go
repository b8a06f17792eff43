package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gpsymreg/pkg/gpsymreg"
)

var (
	exportRunID  string
	exportLatest bool
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a run's artifacts to disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()
		if err := client.Init(cmd.Context()); err != nil {
			return err
		}

		summary, err := client.Export(cmd.Context(), gpsymreg.ExportRequest{
			RunID:  exportRunID,
			Latest: exportLatest,
			OutDir: exportOut,
		})
		if err != nil {
			return err
		}
		fmt.Printf("exported %s to %s\n", summary.RunID, summary.Directory)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportRunID, "run", "", "Run to export")
	exportCmd.Flags().BoolVar(&exportLatest, "latest", false, "Export the most recent run")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output directory (defaults to --exports-dir)")
	rootCmd.AddCommand(exportCmd)
}
