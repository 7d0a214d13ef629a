/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sony-level/ktp-tester/internal/workspace"
)

var (
	olderThan time.Duration
	cleanAll  bool
)

// cleanCmd removes workspaces left behind by interrupted runs
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove leftover workspaces",
	Long: `Remove temporary workspaces left behind by runs that were killed.

With --all the kept projects under the projects root are removed too.

Examples:
  ktp clean
  ktp clean --older-than 1h
  ktp clean --all`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := workspace.CleanupStale(cfg.TempRoot, olderThan)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d temporary workspace(s)\n", removed)

		if cleanAll {
			if err := workspace.CleanupAll(cfg.ProjectsRoot); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", cfg.ProjectsRoot)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Only remove temporary workspaces older than this")
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "Also remove the projects root")
}
