package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// @title Market Signal API
// @version 1.0
// @description Read-only view over predictions, accuracy and batch runs.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{
		Use:          "signal-bot",
		Short:        "Scores market news and social posts, alerts on the strong ones and grades them later",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(ingestCmd, verifyCmd, scheduleCmd, serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing signal-bot CLI: %s\n", err)
		os.Exit(1)
	}
}
