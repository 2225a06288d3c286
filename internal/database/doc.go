// Package database stores the scan history of dupman in SQLite.
//
// The HistoryDB keeps two tables:
//   - scan_runs: one row per scanned root with its counters
//   - find_reports: one row per find run with the full report as JSON
//
// Rows are keyed by a random UUID so reports can be referenced from the
// command line. The driver is modernc.org/sqlite, which needs no cgo.
package database
