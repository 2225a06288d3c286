// Package pipeline runs the detection tiers of a find run in sequence.
//
// A find run is a Pipeline of Steps over one model.Report: optionally a scan
// of the given roots, then the exact, text and image tiers selected by the
// requested level, then a statistics step. Each step records its results
// and skipped files in the report.
//
// The BatchProcessor scans several roots concurrently into one shared index,
// bounded by errgroup.SetLimit.
package pipeline
