package main

import (
	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics and potential savings",
		Long: `Stats summarizes the index: the number of files, of unique files and of
duplicate groups, the total size and the space that removing exact
duplicates would reclaim.`,
		Args: cobra.NoArgs,
		RunE: runStatsCmd,
	}

	addOutputFlags(cmd)

	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	outOpts, err := getOutputOptions(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd, outOpts.file)
	if err != nil {
		return err
	}
	if _, err := newReportWriter(cmd, out, outOpts).WriteStatistics(a.scanner.Statistics()); err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}
