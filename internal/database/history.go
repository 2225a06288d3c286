package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/GRUUUUDD/dublicate/internal/model"
)

// FileName is the name of the database file inside the history directory.
const FileName = "dupman.db"

// HistoryDB provides SQLite-based storage for scan runs and find reports.
type HistoryDB struct {
	db *sql.DB

	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist,
// ErrDatabaseNotFound is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scan_runs (
		id TEXT PRIMARY KEY,
		root TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		indexed INTEGER NOT NULL,
		ignored INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		total_files INTEGER NOT NULL,
		duplicate_groups INTEGER NOT NULL,
		wasted_bytes INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scan_runs_root ON scan_runs(root);
	CREATE INDEX IF NOT EXISTS idx_scan_runs_timestamp ON scan_runs(timestamp);

	CREATE TABLE IF NOT EXISTS find_reports (
		id TEXT PRIMARY KEY,
		level TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		findings INTEGER NOT NULL,
		wasted_bytes INTEGER NOT NULL,
		error TEXT,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_find_reports_timestamp ON find_reports(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// ScanRun is a stored scan of one root.
type ScanRun struct {
	ID              string
	Root            string
	Timestamp       time.Time
	Indexed         int
	Ignored         int
	Skipped         int
	Duration        time.Duration
	TotalFiles      int
	DuplicateGroups int
	WastedBytes     int64
}

// RecordScan stores the outcome of a scan and returns its run ID.
func (hdb *HistoryDB) RecordScan(ctx context.Context, res model.ScanResult) (string, error) {
	id := uuid.NewString()

	query := `
	INSERT INTO scan_runs (id, root, indexed, ignored, skipped, duration_ms, total_files, duplicate_groups, wasted_bytes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := hdb.db.ExecContext(ctx, query,
		id,
		res.Root,
		res.Indexed,
		res.Ignored,
		len(res.Skipped),
		res.Duration.Milliseconds(),
		res.Statistics.TotalFiles,
		res.Statistics.DuplicateGroups,
		res.Statistics.WastedSpaceBytes,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record scan: %w", err)
	}
	return id, nil
}

// ListScans returns the most recent scans first. A limit of zero or less
// returns every scan.
func (hdb *HistoryDB) ListScans(ctx context.Context, limit int) ([]ScanRun, error) {
	query := `
	SELECT id, root, timestamp, indexed, ignored, skipped, duration_ms, total_files, duplicate_groups, wasted_bytes
	FROM scan_runs
	ORDER BY timestamp DESC, rowid DESC
	LIMIT ?
	`

	rows, err := hdb.db.QueryContext(ctx, query, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var runs []ScanRun
	for rows.Next() {
		var run ScanRun
		var timestamp string
		var durationMs int64

		if err := rows.Scan(&run.ID, &run.Root, &timestamp, &run.Indexed, &run.Ignored, &run.Skipped,
			&durationMs, &run.TotalFiles, &run.DuplicateGroups, &run.WastedBytes); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Timestamp = parseTimestamp(timestamp)
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// ReportMetadata contains summary information about a stored find report.
type ReportMetadata struct {
	ID          string
	Level       string
	Timestamp   time.Time
	Findings    int
	WastedBytes int64
	Error       string
}

// SaveReport stores a find report. A report without a RunID gets a new one,
// which is written back to the report and returned.
func (hdb *HistoryDB) SaveReport(ctx context.Context, report *model.Report) (string, error) {
	if report.RunID == "" {
		report.RunID = uuid.NewString()
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO find_reports (id, level, findings, wasted_bytes, error, report_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = hdb.db.ExecContext(ctx, query,
		report.RunID,
		report.Level.String(),
		report.FindingCount(),
		report.WastedBytes(),
		report.ErrorMessage,
		string(reportJSON),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	return report.RunID, nil
}

// ListReports returns report metadata, most recent first. A limit of zero or
// less returns every report.
func (hdb *HistoryDB) ListReports(ctx context.Context, limit int) ([]ReportMetadata, error) {
	query := `
	SELECT id, level, timestamp, findings, wasted_bytes, error
	FROM find_reports
	ORDER BY timestamp DESC, rowid DESC
	LIMIT ?
	`

	rows, err := hdb.db.QueryContext(ctx, query, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var results []ReportMetadata
	for rows.Next() {
		var meta ReportMetadata
		var timestamp string
		var errText sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Level, &timestamp, &meta.Findings, &meta.WastedBytes, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		meta.Error = errText.String
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetReport retrieves a find report by its run ID.
func (hdb *HistoryDB) GetReport(ctx context.Context, id string) (*model.Report, error) {
	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, `SELECT report_json FROM find_reports WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// LatestReport returns the most recent report of level.
func (hdb *HistoryDB) LatestReport(ctx context.Context, level model.Level) (*model.Report, error) {
	reports, err := hdb.LatestReports(ctx, level, 1)
	if err != nil {
		return nil, err
	}
	return reports[0], nil
}

// LatestReports returns up to n reports of level, newest first. At least
// one report must exist.
func (hdb *HistoryDB) LatestReports(ctx context.Context, level model.Level, n int) ([]*model.Report, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT id FROM find_reports
	WHERE level = ?
	ORDER BY timestamp DESC, rowid DESC
	LIMIT ?
	`, level.String(), sqlLimit(n))
	if err != nil {
		return nil, fmt.Errorf("failed to get latest reports: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close() //nolint:errcheck,gosec // already failing
			return nil, fmt.Errorf("failed to scan report id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no report for level %s", ErrRunNotFound, level)
	}

	reports := make([]*model.Report, 0, len(ids))
	for _, id := range ids {
		report, err := hdb.GetReport(ctx, id)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Prune deletes scans and reports older than cutoff and returns the number
// of deleted rows.
func (hdb *HistoryDB) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	ts := cutoff.UTC().Format("2006-01-02 15:04:05")

	var total int64
	for _, table := range []string{"scan_runs", "find_reports"} {
		res, err := hdb.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE timestamp < ?", ts) //nolint:gosec // table names are constants
		if err != nil {
			return total, fmt.Errorf("failed to prune %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// sqlLimit maps a non-positive limit to SQLite's "no limit".
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp parses a SQLite timestamp, returning the zero time when no
// format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
