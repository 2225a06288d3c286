package report

import (
	"io"

	"github.com/GRUUUUDD/dublicate/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs a find report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.Report) (int, error)

	// WriteStatistics outputs only the index summary.
	WriteStatistics(stats model.Statistics) (int, error)
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteStatistics outputs the summary to all configured Writers.
func (m *MultiWriter) WriteStatistics(stats model.Statistics) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteStatistics(stats)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// megabytes converts bytes to decimal megabytes.
func megabytes(n int64) float64 {
	return float64(n) / (1024 * 1024)
}
