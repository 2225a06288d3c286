package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GRUUUUDD/dublicate/internal/model"
	"github.com/GRUUUUDD/dublicate/internal/pipeline"
	"github.com/GRUUUUDD/dublicate/internal/scanner"
)

// NewFindCmd creates the find command.
func NewFindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find [directory]...",
		Short: "Report duplicates found in the index",
		Long: `Find reports duplicates among the indexed files.

Levels:
  1    exact duplicates (identical content)
  2    text files contained in other text files
  3    perceptually similar images
  all  the three levels in order (default)

Directories given as arguments are scanned first.

Examples:
  # Report exact duplicates
  dupman find --level 1

  # Scan a directory, then report everything as Markdown
  dupman find --markdown -o report.md ~/Documents

  # Export similar images as JSON
  dupman find -l 3 --json -o images.json`,
		Args: cobra.ArbitraryArgs,
		RunE: runFindCmd,
	}

	cmd.Flags().StringP("level", "l", "all", "Detection level: 1, 2, 3 or all")
	cmd.Flags().Bool("no-history", false, "Do not record this run in the scan history")
	addOutputFlags(cmd)

	return cmd
}

func runFindCmd(cmd *cobra.Command, args []string) error {
	levelFlag, err := cmd.Flags().GetString("level")
	if err != nil {
		return err
	}
	level, err := model.ParseLevel(levelFlag)
	if err != nil {
		return err
	}
	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return err
	}
	outOpts, err := getOutputOptions(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, scanner.WithProgress(newBarProgress(cmd.ErrOrStderr())))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	rep := model.NewReport(level)
	rep.Roots = args
	runErr := pipeline.ForLevel(level, a.scanner, len(args) > 0, a.logger).Execute(ctx, rep)

	if !noHistory {
		if history := a.openHistory(); history != nil {
			if _, err := history.SaveReport(cmd.Context(), rep); err != nil {
				a.logger.Warn("failed to save report", "error", err)
			}
			_ = history.Close()
		}
	}

	out, closeOut, err := openOutput(cmd, outOpts.file)
	if err != nil {
		return err
	}
	if _, err := newReportWriter(cmd, out, outOpts).Write(rep); err != nil {
		_ = closeOut()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := closeOut(); err != nil {
		return err
	}
	if outOpts.file != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s (%d findings)\n", outOpts.file, rep.FindingCount())
	}

	return runErr
}
