package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gpsymreg/internal/evo"
	"gpsymreg/internal/problem"
)

var operatorsCmd = &cobra.Command{
	Use:   "operators",
	Short: "List registered operators, generators and problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("crossover:")
		for _, name := range evo.CrossoverNames() {
			fmt.Printf("  %s\n", name)
		}
		fmt.Println("mutation:")
		for _, name := range evo.MutationNames() {
			fmt.Printf("  %s\n", name)
		}
		fmt.Println("generators:")
		for _, name := range evo.GeneratorNames() {
			fmt.Printf("  %s\n", name)
		}
		fmt.Println("problems:")
		for _, name := range problem.BenchmarkNames() {
			fmt.Printf("  %s\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(operatorsCmd)
}
