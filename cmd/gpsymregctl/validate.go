package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gpsymreg/internal/config"
	"gpsymreg/internal/evo"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config.yaml>",
	Short: "Validate a run configuration without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return err
		}
		engineCfg, err := cfg.ToEngineConfig()
		if err != nil {
			return err
		}

		// Resolve the operators exactly the way a run would, minus the
		// problem collaborators.
		if _, err := evo.ResolveCrossover(engineCfg.Crossover); err != nil {
			return err
		}
		if engineCfg.MutationExpr.Name != "" {
			if _, err := evo.ResolveGenerator(engineCfg.MutationExpr); err != nil {
				return err
			}
		}
		if err := engineCfg.Plan.Validate(); err != nil {
			return err
		}
		if err := engineCfg.EarlyStopping.Validate(); err != nil {
			return err
		}
		if engineCfg.Selection.Stochastic {
			if err := evo.ValidateRankProbs(engineCfg.Selection.StochasticProbs, engineCfg.Selection.Tournsize); err != nil {
				return err
			}
		}

		fmt.Printf("%s: ok\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
