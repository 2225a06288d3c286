package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/GRUUUUDD/dublicate/internal/model"
)

// SimpleWriter outputs human-readable text reports for the terminal.
// Plain ASCII keeps the output usable when piped to a file.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no findings are shown.
	showEmpty bool

	// verbose lists skipped files instead of counting them.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the find report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report.Statistics)
	if report.Level.Includes(model.LevelExact) {
		w.writeGroups(&sb, report.Groups)
	}
	if report.Level.Includes(model.LevelText) {
		w.writeContainments(&sb, report.Containments)
	}
	if report.Level.Includes(model.LevelImage) {
		w.writeSimilarities(&sb, report)
	}
	w.writeSkipped(&sb, report.Skipped)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteStatistics outputs the index summary with the potential savings.
func (w *SimpleWriter) WriteStatistics(stats model.Statistics) (int, error) {
	var sb strings.Builder
	w.writeSummary(&sb, stats)
	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          DUPMAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Level:     %s (%s)\n", report.Level, report.Level.Title())
	fmt.Fprintf(sb, "Started:   %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	if !report.FinishedAt.IsZero() {
		fmt.Fprintf(sb, "Duration:  %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	}
	for _, root := range report.Roots {
		fmt.Fprintf(sb, "Root:      %s\n", root)
	}

	if report.ErrorMessage != "" {
		fmt.Fprintf(sb, "Status:    ERROR - %s\n", report.ErrorMessage)
	} else {
		sb.WriteString("Status:    Complete\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, stats model.Statistics) {
	w.writeSection(sb, "INDEX STATISTICS")

	fmt.Fprintf(sb, "  Total files:       %s\n", humanize.Comma(int64(stats.TotalFiles)))
	fmt.Fprintf(sb, "  Unique files:      %s\n", humanize.Comma(int64(stats.UniqueFiles)))
	fmt.Fprintf(sb, "  Duplicate groups:  %s\n", humanize.Comma(int64(stats.DuplicateGroups)))
	fmt.Fprintf(sb, "  Total size:        %.2f MB (%s)\n",
		megabytes(stats.TotalSizeBytes), humanize.IBytes(uint64(max(stats.TotalSizeBytes, 0))))
	fmt.Fprintf(sb, "  Wasted space:      %.2f MB (%s)\n",
		megabytes(stats.WastedSpaceBytes), humanize.IBytes(uint64(max(stats.WastedSpaceBytes, 0))))
	if stats.WastedSpaceBytes > 0 {
		fmt.Fprintf(sb, "  Potential savings: %.2f MB\n", megabytes(stats.WastedSpaceBytes))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeGroups(sb *strings.Builder, groups []model.DuplicateGroup) {
	if len(groups) == 0 && !w.showEmpty {
		return
	}
	w.writeSection(sb, "EXACT DUPLICATES")

	if len(groups) == 0 {
		sb.WriteString("  No exact duplicates found\n\n")
		return
	}
	for i, g := range groups {
		fmt.Fprintf(sb, "[%d] %s, %d copies, %s each, %s wasted\n", i+1, shortHash(g.Hash),
			len(g.Locations), humanize.IBytes(uint64(max(g.Size, 0))), humanize.IBytes(uint64(max(g.WastedBytes(), 0))))
		for _, loc := range g.Locations {
			fmt.Fprintf(sb, "  * %s\n", loc)
		}
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeContainments(sb *strings.Builder, pairs []model.ContainmentPair) {
	if len(pairs) == 0 && !w.showEmpty {
		return
	}
	w.writeSection(sb, "TEXT CONTAINMENT")

	if len(pairs) == 0 {
		sb.WriteString("  No contained texts found\n\n")
		return
	}
	for _, p := range pairs {
		fmt.Fprintf(sb, "  [%3.0f%%] %s\n", p.Score*100, p.Contained)
		fmt.Fprintf(sb, "         in %s\n", p.Container)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSimilarities(sb *strings.Builder, report *model.Report) {
	pairs := report.Similarities
	if len(pairs) == 0 && !w.showEmpty {
		return
	}
	w.writeSection(sb, "SIMILAR IMAGES")

	if len(pairs) == 0 {
		sb.WriteString("  No similar images found\n\n")
		return
	}
	for _, p := range pairs {
		fmt.Fprintf(sb, "  [%3.0f%%] distance %d\n", p.Score*100, p.Distance)
		for _, path := range []string{p.PathA, p.PathB} {
			fmt.Fprintf(sb, "    %s", path)
			if info, ok := report.Images[path]; ok && w.verbose {
				fmt.Fprintf(sb, " (%s)", describeImage(info))
			}
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSkipped(sb *strings.Builder, skipped []model.Skip) {
	if len(skipped) == 0 {
		return
	}
	if !w.verbose {
		fmt.Fprintf(sb, "%d file(s) skipped, use --verbose to list them\n\n", len(skipped))
		return
	}
	w.writeSection(sb, "SKIPPED FILES")
	for _, s := range skipped {
		fmt.Fprintf(sb, "  - %s: %s\n", s.Path, s.Reason)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// shortHash abbreviates a content hash for display.
func shortHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12]
}

// describeImage renders dimensions, format and EXIF data of an image.
func describeImage(info model.ImageInfo) string {
	parts := []string{fmt.Sprintf("%dx%d", info.Width, info.Height)}
	if info.Format != "" {
		parts = append(parts, info.Format)
	}
	if info.Camera != "" {
		parts = append(parts, info.Camera)
	}
	if !info.Taken.IsZero() {
		parts = append(parts, info.Taken.Format("2006-01-02 15:04"))
	}
	return strings.Join(parts, ", ")
}
