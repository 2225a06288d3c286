package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewClearIndexCmd creates the clear-index command.
func NewClearIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-index",
		Short: "Remove every entry from the index",
		Long: `Clear-index empties the content-hash index and saves the empty index.
Files on disk are not touched.`,
		Args: cobra.NoArgs,
		RunE: runClearIndexCmd,
	}

	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func runClearIndexCmd(cmd *cobra.Command, _ []string) error {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return err
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !yes {
		fmt.Fprintf(out, "Remove %d file(s) from the index at %s? [y/N] ", a.index.Statistics().TotalFiles, a.index.Path())
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
		default:
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	a.index.Clear()
	if err := a.index.Persist(); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}
	fmt.Fprintln(out, "Index cleared.")
	return nil
}
