package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/GRUUUUDD/dublicate/internal/actions"
	"github.com/GRUUUUDD/dublicate/internal/model"
)

// interactiveGroupLimit is the number of groups offered per session.
const interactiveGroupLimit = 10

// lineReader reads one line of user input. *readline.Instance implements it.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// NewInteractiveCmd creates the interactive command.
func NewInteractiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Review exact duplicate groups one by one",
		Long: `Interactive walks the first exact duplicate groups of the index and asks
what to do with each:

  d  delete every copy except the first
  m  move every copy except the first to a folder
  s  skip the group
  q  quit

Run "dupman scan" first to fill the index.`,
		Args: cobra.NoArgs,
		RunE: runInteractiveCmd,
	}

	cmd.Flags().IntP("limit", "n", interactiveGroupLimit, "Number of groups to review")

	return cmd
}

func runInteractiveCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	return reviewGroups(cmd.OutOrStdout(), rl, a.actions, a.scanner.FindExactDuplicates(), limit)
}

// reviewSummary counts what a review session did.
type reviewSummary struct {
	deleted int
	moved   int
	skipped int
}

// reviewGroups prompts for every group up to limit. Ctrl+D or "q" ends the
// session early.
func reviewGroups(out io.Writer, rl lineReader, act *actions.Actions, groups []model.DuplicateGroup, limit int) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	if len(groups) == 0 {
		fmt.Fprintln(out, green("No exact duplicates in the index."))
		return nil
	}
	if limit > 0 && len(groups) > limit {
		fmt.Fprintf(out, "Showing %d of %d duplicate groups.\n", limit, len(groups))
		groups = groups[:limit]
	}

	var sum reviewSummary
	defer func() {
		fmt.Fprintf(out, "\n%s %d deleted, %d moved, %d group(s) skipped\n",
			cyan("Done:"), sum.deleted, sum.moved, sum.skipped)
	}()

	for i, g := range groups {
		fmt.Fprintf(out, "\n%s %s each, %s wasted\n",
			cyan(fmt.Sprintf("Group %d/%d:", i+1, len(groups))),
			humanize.IBytes(uint64(max(g.Size, 0))), humanize.IBytes(uint64(max(g.WastedBytes(), 0))))
		for j, loc := range g.Locations {
			marker := " "
			if j == 0 {
				marker = green("*")
			}
			fmt.Fprintf(out, "  %s %s\n", marker, loc)
		}
		fmt.Fprintln(out, gray("[d]elete all but first, [m]ove to folder, [s]kip, [q]uit"))

		choice, err := ask(rl, "> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.ToLower(choice) {
		case "d", "delete":
			n := act.DeleteKeepOne(g.Locations, 0)
			sum.deleted += n
			fmt.Fprintf(out, "%s %d file(s)\n", green("Deleted"), n)
		case "m", "move":
			target, err := ask(rl, "folder> ")
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if target == "" {
				fmt.Fprintln(out, yellow("No folder given, skipping"))
				sum.skipped++
				continue
			}
			n := act.MoveGroupToFolder(g.Locations, target, 0)
			sum.moved += n
			fmt.Fprintf(out, "%s %d file(s) to %s\n", green("Moved"), n, target)
		case "q", "quit":
			return nil
		default:
			sum.skipped++
		}
	}
	return nil
}

// ask prompts and returns the trimmed answer. Ctrl+C yields an empty
// answer; end of input is returned as io.EOF.
func ask(rl lineReader, prompt string) (string, error) {
	rl.SetPrompt(prompt)
	line, err := rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
