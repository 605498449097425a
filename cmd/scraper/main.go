package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "easyhunt",
	Short:        "Search LinkedIn job listings from the command line",
	Long:         "easyhunt drives a browser through LinkedIn's public job search for a role and one or more locations, and prints a deduplicated, most-recent-first list of postings.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config YAML (default configs/config.yaml or $EASYHUNT_CONFIG)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
