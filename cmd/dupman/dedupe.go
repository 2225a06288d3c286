package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// errNoStrategy is returned when dedupe is run without an action flag.
var errNoStrategy = errors.New("choose one of --delete, --move or --link")

// NewDedupeCmd creates the dedupe command.
func NewDedupeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Remove exact duplicates without prompting",
		Long: `Dedupe applies one action to every exact duplicate group of the index,
keeping one copy per group:

  --delete        delete the other copies
  --move <dir>    move the other copies into a folder
  --link          replace the other copies with hard links to the kept one

--keep selects which copy survives, counted from 0 in the order the files
were indexed. An index out of range keeps the first copy.

Examples:
  # Show what would be done
  dupman dedupe --delete --dry-run

  # Move copies into a review folder
  dupman dedupe --move ~/duplicates`,
		Args: cobra.NoArgs,
		RunE: runDedupeCmd,
	}

	cmd.Flags().Bool("delete", false, "Delete every copy except the kept one")
	cmd.Flags().String("move", "", "Move every copy except the kept one into this folder")
	cmd.Flags().Bool("link", false, "Replace every copy except the kept one with a hard link")
	cmd.Flags().IntP("keep", "k", 0, "Position of the copy to keep in each group")
	cmd.Flags().Bool("dry-run", false, "Only print the groups that would be processed")
	cmd.MarkFlagsMutuallyExclusive("delete", "move", "link")

	return cmd
}

func runDedupeCmd(cmd *cobra.Command, _ []string) error {
	del, err := cmd.Flags().GetBool("delete")
	if err != nil {
		return err
	}
	target, err := cmd.Flags().GetString("move")
	if err != nil {
		return err
	}
	link, err := cmd.Flags().GetBool("link")
	if err != nil {
		return err
	}
	keep, err := cmd.Flags().GetInt("keep")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	if !del && target == "" && !link {
		return errNoStrategy
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	groups := a.scanner.FindExactDuplicates()
	if len(groups) == 0 {
		fmt.Fprintln(out, "No exact duplicates in the index.")
		return nil
	}

	var done, expected int
	for _, g := range groups {
		expected += len(g.Locations) - 1
		if dryRun {
			kept := g.Locations[0]
			if keep >= 0 && keep < len(g.Locations) {
				kept = g.Locations[keep]
			}
			fmt.Fprintf(out, "keep %s (%d other copies)\n", kept, len(g.Locations)-1)
			continue
		}

		switch {
		case del:
			done += a.actions.DeleteKeepOne(g.Locations, keep)
		case target != "":
			done += a.actions.MoveGroupToFolder(g.Locations, target, keep)
		case link:
			done += a.actions.LinkGroupToKeeper(g.Locations, keep)
		}
	}

	if dryRun {
		fmt.Fprintf(out, "%d group(s), %d file(s) would be processed\n", len(groups), expected)
		return nil
	}
	fmt.Fprintf(out, "%d of %d file(s) processed in %d group(s)\n", done, expected, len(groups))
	if done < expected {
		return fmt.Errorf("%d file(s) could not be processed, see the log", expected-done)
	}
	return nil
}
