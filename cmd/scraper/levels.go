package main

import (
	"fmt"

	"go-easyhunt/internal/models"

	"github.com/spf13/cobra"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List the experience levels accepted by --level",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		for _, lvl := range models.Levels {
			fmt.Fprintf(out, "%s  %-18s %s\n", lvl.Code(), lvl.Slug(), lvl)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(levelsCmd)
}
