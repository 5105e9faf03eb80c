package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bloomwatch",
		Short: "Lifebloom rotation analysis for combat logs",
		Long: `bloomwatch reads exported combat-log fights and measures how a restoration
druid maintains Lifebloom: buff uptime, rotation sections bounded by rotation
starts, timeouts and idle batches, and the ranked rotation patterns.

Configuration is read from an optional YAML file and BLOOMWATCH_* environment
variables.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newBatchCmd(),
		newValidateCmd(),
		newServeCmd(),
	)
	return rootCmd
}
