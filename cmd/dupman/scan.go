package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/GRUUUUDD/dublicate/internal/database"
	"github.com/GRUUUUDD/dublicate/internal/model"
	"github.com/GRUUUUDD/dublicate/internal/pipeline"
	"github.com/GRUUUUDD/dublicate/internal/scanner"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <directory>...",
		Short: "Index the files below one or more directories",
		Long: `Scan walks the given directories and adds every eligible file to the
content-hash index. Files whose content changed since the last scan are
re-hashed. The index is saved when the scan finishes.

Examples:
  # Scan a single directory
  dupman scan ~/Pictures

  # Scan several directories, two at a time
  dupman scan --batch 2 ~/Pictures ~/Downloads /mnt/backup`,
		Args: cobra.MinimumNArgs(1),
		RunE: runScanCmd,
	}

	cmd.Flags().IntP("batch", "b", 1, "Number of directories scanned concurrently")
	cmd.Flags().Bool("no-progress", false, "Do not show a progress bar")

	return cmd
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	batch, err := cmd.Flags().GetInt("batch")
	if err != nil {
		return err
	}
	noProgress, err := cmd.Flags().GetBool("no-progress")
	if err != nil {
		return err
	}

	var opts []scanner.Option
	if !noProgress {
		opts = append(opts, scanner.WithProgress(newBarProgress(cmd.ErrOrStderr())))
	}
	a, err := newApp(cmd, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	bp := pipeline.NewBatchProcessor(a.scanner,
		pipeline.WithBatchLogger(a.logger),
		pipeline.WithConcurrency(batch),
	)
	results, scanErr := bp.ProcessBatch(ctx, args)

	history := a.openHistory()
	if history != nil {
		defer history.Close()
	}

	out := cmd.OutOrStdout()
	var total model.ScanResult
	for _, res := range results {
		if res.Root == "" {
			continue
		}
		printScanResult(out, res)
		total.Merge(res)
		recordScan(cmd, history, res)
	}
	if len(results) > 1 {
		fmt.Fprintf(out, "\nTotal: %d indexed, %d ignored, %d skipped\n",
			total.Indexed, total.Ignored, len(total.Skipped))
	}

	stats := a.scanner.Statistics()
	fmt.Fprintf(out, "Index: %s files, %s duplicate groups, %s wasted\n",
		humanize.Comma(int64(stats.TotalFiles)),
		humanize.Comma(int64(stats.DuplicateGroups)),
		humanize.IBytes(uint64(max(stats.WastedSpaceBytes, 0))))

	return scanErr
}

func printScanResult(out io.Writer, res model.ScanResult) {
	fmt.Fprintf(out, "Scanned %s: %d indexed, %d ignored", res.Root, res.Indexed, res.Ignored)
	if n := len(res.Skipped); n > 0 {
		fmt.Fprintf(out, ", %d skipped", n)
	}
	fmt.Fprintf(out, " (%s)\n", res.Duration.Round(time.Millisecond))
}

func recordScan(cmd *cobra.Command, history *database.HistoryDB, res model.ScanResult) {
	if history == nil {
		return
	}
	if _, err := history.RecordScan(cmd.Context(), res); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to record scan history: %v\n", err)
	}
}
