package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/GRUUUUDD/dublicate/internal/config"
	"github.com/GRUUUUDD/dublicate/internal/database"
	"github.com/GRUUUUDD/dublicate/internal/model"
)

// errHistoryDisabled is returned when history_dir is empty.
var errHistoryDisabled = errors.New("scan history is disabled (history_dir is empty)")

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous scans and find runs",
		Long: `History lists the scans and find runs recorded in the history database.

Examples:
  # List the last 20 runs
  dupman history

  # Show a stored report
  dupman history show 0f5c1b8e-3d6a-4b59-9b1a-2f0d7c1e9a44

  # Compare the last two "find --level all" runs
  dupman history compare

  # Forget runs older than 30 days
  dupman history prune --older-than 720h`,
		Args: cobra.NoArgs,
		RunE: runHistoryListCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Number of runs to list (0 for all)")

	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryCompareCmd())
	cmd.AddCommand(newHistoryPruneCmd())

	return cmd
}

// openHistoryDB opens the existing history database of the configuration.
func openHistoryDB(cmd *cobra.Command) (*database.HistoryDB, error) {
	cfg, err := config.Load(getConfigFlag(cmd))
	if err != nil && cfg == nil {
		return nil, err
	}
	if cfg.HistoryDir == "" {
		return nil, errHistoryDisabled
	}
	return database.Open(cfg.HistoryDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
}

func runHistoryListCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	db, err := openHistoryDB(cmd)
	if errors.Is(err, database.ErrDatabaseNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "No history recorded yet.")
		return nil
	}
	if err != nil {
		return err
	}
	defer db.Close()

	scans, err := db.ListScans(cmd.Context(), limit)
	if err != nil {
		return err
	}
	reports, err := db.ListReports(cmd.Context(), limit)
	if err != nil {
		return err
	}

	printHistory(cmd.OutOrStdout(), scans, reports)
	return nil
}

func printHistory(out io.Writer, scans []database.ScanRun, reports []database.ReportMetadata) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintln(out, cyan("Scans"))
	if len(scans) == 0 {
		fmt.Fprintln(out, gray("  none"))
	}
	for _, s := range scans {
		fmt.Fprintf(out, "  %s  %-40s %6d indexed  %6d groups  %s wasted\n",
			s.Timestamp.Local().Format("2006-01-02 15:04"), s.Root, s.Indexed, s.DuplicateGroups,
			humanize.IBytes(uint64(max(s.WastedBytes, 0))))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cyan("Find runs"))
	if len(reports) == 0 {
		fmt.Fprintln(out, gray("  none"))
	}
	for _, r := range reports {
		line := fmt.Sprintf("  %s  %s  level %-3s %5d findings  %s wasted",
			r.Timestamp.Local().Format("2006-01-02 15:04"), r.ID, r.Level, r.Findings,
			humanize.IBytes(uint64(max(r.WastedBytes, 0))))
		if r.Error != "" {
			line += "  " + red(r.Error)
		}
		fmt.Fprintln(out, line)
	}
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print a stored find report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outOpts, err := getOutputOptions(cmd)
			if err != nil {
				return err
			}
			db, err := openHistoryDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			rep, err := db.GetReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out, closeOut, err := openOutput(cmd, outOpts.file)
			if err != nil {
				return err
			}
			if _, err := newReportWriter(cmd, out, outOpts).Write(rep); err != nil {
				_ = closeOut()
				return err
			}
			return closeOut()
		},
	}
	addOutputFlags(cmd)
	return cmd
}

func newHistoryCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [old-run-id] [new-run-id]",
		Short: "Compare two stored find reports",
		Long: `Compare shows which exact duplicate groups appeared or disappeared between
two find runs. With one ID the run is compared with the latest run of the
same level. Without arguments the two most recent runs of --level are
compared.`,
		Args: cobra.RangeArgs(0, 2),
		RunE: runHistoryCompareCmd,
	}
	cmd.Flags().StringP("level", "l", "all", "Level of the runs compared when no IDs are given")
	return cmd
}

func runHistoryCompareCmd(cmd *cobra.Command, args []string) error {
	db, err := openHistoryDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	var older, newer *model.Report

	switch len(args) {
	case 2:
		if older, err = db.GetReport(ctx, args[0]); err != nil {
			return err
		}
		if newer, err = db.GetReport(ctx, args[1]); err != nil {
			return err
		}
	case 1:
		if older, err = db.GetReport(ctx, args[0]); err != nil {
			return err
		}
		if newer, err = db.LatestReport(ctx, older.Level); err != nil {
			return err
		}
		if newer.RunID == older.RunID {
			return fmt.Errorf("%s is the latest %s run; nothing to compare", shortHash(older.RunID), older.Level)
		}
	default:
		levelFlag, err := cmd.Flags().GetString("level")
		if err != nil {
			return err
		}
		level, err := model.ParseLevel(levelFlag)
		if err != nil {
			return err
		}
		reports, err := db.LatestReports(ctx, level, 2)
		if err != nil {
			return err
		}
		if len(reports) < 2 {
			return fmt.Errorf("%w: need two runs of level %s", database.ErrRunNotFound, level)
		}
		newer, older = reports[0], reports[1]
	}

	printComparison(cmd.OutOrStdout(), compareReports(older, newer))
	return nil
}

// comparison lists the exact duplicate groups that differ between two runs.
type comparison struct {
	older, newer *model.Report
	added        []model.DuplicateGroup
	resolved     []model.DuplicateGroup
}

// compareReports matches groups by content hash.
func compareReports(older, newer *model.Report) comparison {
	c := comparison{older: older, newer: newer}

	seen := make(map[string]bool, len(older.Groups))
	for _, g := range older.Groups {
		seen[g.Hash] = true
	}
	current := make(map[string]bool, len(newer.Groups))
	for _, g := range newer.Groups {
		current[g.Hash] = true
		if !seen[g.Hash] {
			c.added = append(c.added, g)
		}
	}
	for _, g := range older.Groups {
		if !current[g.Hash] {
			c.resolved = append(c.resolved, g)
		}
	}
	return c
}

func printComparison(out io.Writer, c comparison) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(out, "Comparing %s (%s) with %s (%s)\n",
		c.older.RunID, c.older.StartedAt.Local().Format(time.DateTime),
		c.newer.RunID, c.newer.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Wasted space: %s -> %s\n",
		humanize.IBytes(uint64(max(c.older.WastedBytes(), 0))),
		humanize.IBytes(uint64(max(c.newer.WastedBytes(), 0))))

	for _, g := range c.added {
		fmt.Fprintf(out, "%s %s (%d copies)\n", red("+"), shortHash(g.Hash), len(g.Locations))
	}
	for _, g := range c.resolved {
		fmt.Fprintf(out, "%s %s (%d copies)\n", green("-"), shortHash(g.Hash), len(g.Locations))
	}
	fmt.Fprintf(out, "%d new group(s), %d resolved group(s)\n", len(c.added), len(c.resolved))
}

func shortHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12]
}

func newHistoryPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than a duration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			olderThan, err := cmd.Flags().GetDuration("older-than")
			if err != nil {
				return err
			}
			db, err := openHistoryDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d run(s)\n", n)
			return nil
		},
	}
	cmd.Flags().Duration("older-than", 30*24*time.Hour, "Age of the runs to delete")
	return cmd
}
