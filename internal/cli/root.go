// Package cli implements the brewlake command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		envFile    string
	)

	rootCmd := &cobra.Command{
		Use:           "brewlake",
		Short:         "Batch pipeline for the Open Brewery DB feed",
		Long:          "brewlake ingests the Open Brewery DB listing into a local Parquet lake in three layers: raw (bronze), cleaned (silver), and aggregated (gold).",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "brewlake.yaml", "Path to optional YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to optional .env file")

	rootCmd.AddCommand(newRunCmd(&configFile, &envFile))
	rootCmd.AddCommand(newStageCmds(&configFile, &envFile)...)
	rootCmd.AddCommand(newScheduleCmd(&configFile, &envFile))
	rootCmd.AddCommand(newHistoryCmd(&configFile, &envFile))

	return rootCmd
}
