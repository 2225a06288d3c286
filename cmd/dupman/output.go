package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/GRUUUUDD/dublicate/internal/report"
)

// outputOptions selects the report format and destination.
type outputOptions struct {
	json     bool
	markdown bool
	verbose  bool
	tee      bool
	file     string
}

// addOutputFlags registers --json, --markdown and --output on cmd.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("tee", false,
		"With --output, also print the text report to stdout")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
}

// getOutputOptions reads the flags registered by addOutputFlags.
func getOutputOptions(cmd *cobra.Command) (outputOptions, error) {
	var opts outputOptions
	var err error

	if opts.json, err = cmd.Flags().GetBool("json"); err != nil {
		return opts, err
	}
	if opts.markdown, err = cmd.Flags().GetBool("markdown"); err != nil {
		return opts, err
	}
	if opts.file, err = cmd.Flags().GetString("output"); err != nil {
		return opts, err
	}
	if opts.tee, err = cmd.Flags().GetBool("tee"); err != nil {
		return opts, err
	}
	opts.verbose = getVerboseFlag(cmd)
	return opts, nil
}

// openOutput returns the destination of a report and a function closing it.
func openOutput(cmd *cobra.Command, file string) (io.Writer, func() error, error) {
	if file == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	dir := filepath.Dir(file)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports list private paths, so only the owner may read them.
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // user-chosen output path
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// newReportWriter returns the writer selected by opts. With --tee and
// --output the text report is also written to the command's stdout.
func newReportWriter(cmd *cobra.Command, out io.Writer, opts outputOptions) report.Writer {
	w := formatWriter(out, opts)
	if opts.tee && opts.file != "" {
		return report.NewMultiWriter(w, report.NewSimpleWriter(cmd.OutOrStdout(), report.WithVerbose(opts.verbose)))
	}
	return w
}

func formatWriter(out io.Writer, opts outputOptions) report.Writer {
	switch {
	case opts.json:
		return report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
	case opts.markdown:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(opts.verbose))
	}
}
