// Package report renders find results and index statistics.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text for the terminal
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown for sharing and documentation
//
// Writers implement the Writer interface and can be combined with
// MultiWriter, for example to print to the terminal and export to a file.
package report
