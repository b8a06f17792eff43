package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"gpsymreg/internal/config"
	"gpsymreg/pkg/gpsymreg"
)

var (
	runConfigPath string
	runProblem    string
	runSeed       int64
	runExport     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one evolutionary search",
	RunE:  runSearch,
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "YAML run configuration")
	runCmd.Flags().StringVar(&runProblem, "problem", "quartic", "Built-in regression target")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "Override the configured random seed")
	runCmd.Flags().BoolVar(&runExport, "export", false, "Export artifacts when the run finishes")
	rootCmd.AddCommand(runCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if runConfigPath != "" {
		loaded, err := config.Load(runConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = runSeed
	}
	if runExport {
		cfg.Plot.PlotBest = true
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.Init(cmd.Context()); err != nil {
		return err
	}

	evaluationsPerGen := int64(cfg.GP.NIndividuals) * int64(cfg.MP.NSplits)
	slog.Info("starting run",
		"problem", runProblem,
		"population", cfg.GP.NIndividuals,
		"generations", cfg.GP.NGen,
		"evaluations_per_generation", humanize.Comma(evaluationsPerGen),
		"n_jobs", cfg.MP.NJobs,
		"seed", cfg.Seed)

	start := time.Now()
	summary, err := client.Run(cmd.Context(), gpsymreg.RunRequest{
		Problem: runProblem,
		Config:  cfg,
		OnGeneration: func(p gpsymreg.Progress) {
			slog.Info("generation",
				"gen", fmt.Sprintf("%d/%d", p.Generation, p.Generations),
				"best", p.BestRaw,
				"size", p.BestSize,
				"validation", p.Validation,
				"overfit", p.Overfit)
		},
	})
	if err != nil {
		return err
	}

	slog.Info("run finished",
		"run_id", summary.RunID,
		"state", summary.TerminalState,
		"generations_ran", summary.GenerationsRan,
		"best", summary.BestRaw,
		"validation", summary.BestValidation,
		"elapsed", humanize.RelTime(start, time.Now(), "", ""))

	fmt.Printf("run %s: %s after %d generations\n", summary.RunID, summary.TerminalState, summary.GenerationsRan)
	fmt.Printf("best (size %d, loss %g): %s\n", summary.BestSize, summary.BestRaw, summary.BestExpression)
	if summary.ArtifactsDir != "" {
		fmt.Printf("artifacts: %s\n", summary.ArtifactsDir)
	}
	return nil
}
