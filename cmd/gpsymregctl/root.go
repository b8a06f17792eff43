package main

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"gpsymreg/pkg/gpsymreg"
)

var (
	logLevel   string
	storeKind  string
	dbPath     string
	exportsDir string
)

var rootCmd = &cobra.Command{
	Use:   "gpsymregctl",
	Short: "Tree-based genetic programming for symbolic regression",
	Long: `gpsymregctl evolves expression trees against built-in regression
targets: tournament selection, subtree crossover and mutation, elitism,
parsimony pressure and early stopping, with cross-validated parallel
fitness evaluation.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{Level: level}
		var handler slog.Handler
		if isatty.IsTerminal(os.Stderr.Fd()) {
			handler = slog.NewTextHandler(os.Stderr, opts)
		} else {
			handler = slog.NewJSONHandler(os.Stderr, opts)
		}
		slog.SetDefault(slog.New(handler))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "memory", "Run store backend (memory, sqlite)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "gpsymreg.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&exportsDir, "exports-dir", "exports", "Artifact export directory")
}

func newClient() (*gpsymreg.Client, error) {
	return gpsymreg.New(gpsymreg.Options{
		StoreKind:  storeKind,
		DBPath:     dbPath,
		ExportsDir: exportsDir,
	})
}
