package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/GRUUUUDD/dublicate/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the find report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeStatistics(md, report.Statistics)
	w.writeFindingChart(md, report)
	if report.Level.Includes(model.LevelExact) {
		w.writeGroups(md, report.Groups)
	}
	if report.Level.Includes(model.LevelText) {
		w.writeContainments(md, report.Containments)
	}
	if report.Level.Includes(model.LevelImage) {
		w.writeSimilarities(md, report)
	}
	w.writeSkipped(md, report.Skipped)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteStatistics outputs the index summary in Markdown format.
func (w *MarkdownWriter) WriteStatistics(stats model.Statistics) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Index Statistics")
	md.PlainText("")
	w.writeStatistics(md, stats)
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Duplicate Report")
	md.PlainText("")

	rows := [][]string{
		{"Level", report.Level.String() + " (" + report.Level.Title() + ")"},
		{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Status", statusText(report)},
	}
	if report.RunID != "" {
		rows = append(rows, []string{"Run", "`" + report.RunID + "`"})
	}
	for _, root := range report.Roots {
		rows = append(rows, []string{"Root", "`" + root + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func statusText(report *model.Report) string {
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	return "✅ Complete"
}

func (w *MarkdownWriter) writeStatistics(md *markdown.Markdown, stats model.Statistics) {
	md.H2("Index Statistics")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total files", humanize.Comma(int64(stats.TotalFiles))},
			{"Unique files", humanize.Comma(int64(stats.UniqueFiles))},
			{"Duplicate groups", humanize.Comma(int64(stats.DuplicateGroups))},
			{"Total size", fmt.Sprintf("%.2f MB", megabytes(stats.TotalSizeBytes))},
			{"Wasted space", fmt.Sprintf("%.2f MB", megabytes(stats.WastedSpaceBytes))},
		},
	})
	md.PlainText("")

	if stats.WastedSpaceBytes > 0 {
		md.Warningf("%s can be reclaimed by removing exact duplicates.",
			humanize.IBytes(uint64(stats.WastedSpaceBytes)))
	} else {
		md.Tip("No space is wasted by exact duplicates.")
	}
	md.PlainText("")
}

// writeFindingChart writes a mermaid pie chart of findings per tier.
func (w *MarkdownWriter) writeFindingChart(md *markdown.Markdown, report *model.Report) {
	if report.FindingCount() == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Findings by Level"),
		piechart.WithShowData(true),
	)
	if n := len(report.Groups); n > 0 {
		chart.LabelAndIntValue("Exact", uint64(n))
	}
	if n := len(report.Containments); n > 0 {
		chart.LabelAndIntValue("Text", uint64(n))
	}
	if n := len(report.Similarities); n > 0 {
		chart.LabelAndIntValue("Image", uint64(n))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeGroups(md *markdown.Markdown, groups []model.DuplicateGroup) {
	md.H2("Exact Duplicates")
	md.PlainText("")

	if len(groups) == 0 {
		md.PlainText("No exact duplicates found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(groups))
	for i, g := range groups {
		for j, loc := range g.Locations {
			group, hash, size := "", "", ""
			if j == 0 {
				group = strconv.Itoa(i + 1)
				hash = "`" + shortHash(g.Hash) + "`"
				size = humanize.IBytes(uint64(max(g.Size, 0)))
			}
			rows = append(rows, []string{group, hash, size, "`" + loc + "`"})
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Group", "Hash", "Size", "Location"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeContainments(md *markdown.Markdown, pairs []model.ContainmentPair) {
	md.H2("Text Containment")
	md.PlainText("")

	if len(pairs) == 0 {
		md.PlainText("No contained texts found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(pairs))
	for i, p := range pairs {
		rows[i] = []string{
			truncateString(p.Contained, 60),
			truncateString(p.Container, 60),
			fmt.Sprintf("%.0f%%", p.Score*100),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Contained", "Container", "Score"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSimilarities(md *markdown.Markdown, report *model.Report) {
	md.H2("Similar Images")
	md.PlainText("")

	if len(report.Similarities) == 0 {
		md.PlainText("No similar images found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Similarities))
	for i, p := range report.Similarities {
		rows[i] = []string{
			truncateString(p.PathA, 50),
			truncateString(p.PathB, 50),
			fmt.Sprintf("%.0f%%", p.Score*100),
			strconv.Itoa(p.Distance),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Image A", "Image B", "Similarity", "Distance"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, p := range report.Similarities {
		for _, path := range []string{p.PathA, p.PathB} {
			if info, ok := report.Images[path]; ok && (info.Camera != "" || !info.Taken.IsZero()) {
				md.Details(path, describeImage(info))
			}
		}
	}
}

func (w *MarkdownWriter) writeSkipped(md *markdown.Markdown, skipped []model.Skip) {
	if len(skipped) == 0 {
		return
	}

	md.H2("Skipped Files")
	md.PlainText("")
	md.Note(fmt.Sprintf("%d file(s) could not be processed.", len(skipped)))
	md.PlainText("")

	items := make([]string, len(skipped))
	for i, s := range skipped {
		items[i] = "`" + s.Path + "`: " + s.Reason
	}
	md.BulletList(items...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by dupman*")
}

// truncateString truncates a string to maxLen bytes with an ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
