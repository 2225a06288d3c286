package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for dupman.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dupman",
		Short: "Find and manage duplicate files",
		Long: `dupman indexes directories by content hash and finds duplicates in three levels:

  1  exact duplicates (identical bytes)
  2  text files whose content is contained in another text file
  3  perceptually similar images

The index is kept between runs, so "find" and "stats" work on everything
scanned so far. Use "interactive" or "dedupe" to clean up exact duplicates.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .dupman.yaml or $XDG_CONFIG_HOME/dupman/config.yaml)")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewFindCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewInteractiveCmd())
	cmd.AddCommand(NewDedupeCmd())
	cmd.AddCommand(NewClearIndexCmd())
	cmd.AddCommand(NewConfigCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
