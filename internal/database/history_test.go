package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GRUUUUDD/dublicate/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %s", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if !errors.Is(err, ErrDatabaseNotFound) {
			t.Fatalf("expected ErrDatabaseNotFound, got %v", err)
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		if _, err := db.RecordScan(context.Background(), model.ScanResult{Root: "/data"}); err != nil {
			t.Fatalf("failed to record scan: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		runs, err := db.ListScans(context.Background(), 0)
		if err != nil {
			t.Fatalf("failed to list scans: %v", err)
		}
		if len(runs) != 1 {
			t.Errorf("expected 1 run, got %d", len(runs))
		}
	})
}

func TestRecordScan(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	res := model.ScanResult{
		Root:     "/data/photos",
		Indexed:  10,
		Ignored:  2,
		Skipped:  []model.Skip{{Path: "/data/photos/locked", Reason: "permission denied"}},
		Duration: 1500 * time.Millisecond,
		Statistics: model.Statistics{
			TotalFiles:       10,
			DuplicateGroups:  3,
			WastedSpaceBytes: 4096,
		},
	}

	id, err := db.RecordScan(ctx, res)
	if err != nil {
		t.Fatalf("failed to record scan: %v", err)
	}
	if id == "" {
		t.Fatal("expected run id")
	}

	runs, err := db.ListScans(ctx, 10)
	if err != nil {
		t.Fatalf("failed to list scans: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	run := runs[0]
	if run.ID != id || run.Root != "/data/photos" {
		t.Errorf("unexpected run: %+v", run)
	}
	if run.Indexed != 10 || run.Ignored != 2 || run.Skipped != 1 {
		t.Errorf("unexpected counters: %+v", run)
	}
	if run.Duration != 1500*time.Millisecond {
		t.Errorf("expected 1.5s, got %s", run.Duration)
	}
	if run.DuplicateGroups != 3 || run.WastedBytes != 4096 {
		t.Errorf("unexpected statistics: %+v", run)
	}
	if run.Timestamp.IsZero() {
		t.Error("expected timestamp to be parsed")
	}
}

func TestListScansLimit(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	for _, root := range []string{"/a", "/b", "/c"} {
		if _, err := db.RecordScan(ctx, model.ScanResult{Root: root}); err != nil {
			t.Fatalf("failed to record scan: %v", err)
		}
	}

	runs, err := db.ListScans(ctx, 2)
	if err != nil {
		t.Fatalf("failed to list scans: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Root != "/c" {
		t.Errorf("expected most recent first, got %s", runs[0].Root)
	}
}

func TestSaveReport(t *testing.T) {
	t.Parallel()

	t.Run("assigns run id and round trips", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		report := model.NewReport(model.LevelExact)
		report.Groups = []model.DuplicateGroup{{Hash: "h", Size: 100, Locations: []string{"/a", "/b", "/c"}}}
		report.Finish()

		id, err := db.SaveReport(ctx, report)
		if err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		if id == "" || report.RunID != id {
			t.Fatalf("expected run id to be assigned, got %q / %q", id, report.RunID)
		}

		got, err := db.GetReport(ctx, id)
		if err != nil {
			t.Fatalf("failed to get report: %v", err)
		}
		if got.Level != model.LevelExact || len(got.Groups) != 1 {
			t.Errorf("unexpected report: %+v", got)
		}

		metas, err := db.ListReports(ctx, 0)
		if err != nil {
			t.Fatalf("failed to list reports: %v", err)
		}
		if len(metas) != 1 {
			t.Fatalf("expected 1 report, got %d", len(metas))
		}
		if metas[0].Findings != 1 || metas[0].WastedBytes != 200 || metas[0].Level != "1" {
			t.Errorf("unexpected metadata: %+v", metas[0])
		}
	})

	t.Run("keeps existing run id", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		report := model.NewReport(model.LevelText)
		report.RunID = "fixed-id"

		id, err := db.SaveReport(context.Background(), report)
		if err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		if id != "fixed-id" {
			t.Errorf("expected fixed-id, got %s", id)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		if _, err := db.GetReport(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
			t.Fatalf("expected ErrRunNotFound, got %v", err)
		}
	})
}

func TestLatestReport(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.LatestReport(ctx, model.LevelAll); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound on empty history, got %v", err)
	}

	for _, level := range []model.Level{model.LevelAll, model.LevelExact, model.LevelAll} {
		if _, err := db.SaveReport(ctx, model.NewReport(level)); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
	}
	last := model.NewReport(model.LevelAll)
	last.ErrorMessage = "interrupted"
	if _, err := db.SaveReport(ctx, last); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	got, err := db.LatestReport(ctx, model.LevelAll)
	if err != nil {
		t.Fatalf("failed to get latest report: %v", err)
	}
	if got.RunID != last.RunID {
		t.Errorf("expected %s, got %s", last.RunID, got.RunID)
	}

	recent, err := db.LatestReports(ctx, model.LevelAll, 2)
	if err != nil {
		t.Fatalf("failed to get latest reports: %v", err)
	}
	if len(recent) != 2 || recent[0].RunID != last.RunID || recent[1].ErrorMessage != "" {
		t.Errorf("unexpected latest reports: %+v", recent)
	}

	exact, err := db.LatestReports(ctx, model.LevelExact, 5)
	if err != nil {
		t.Fatalf("failed to get latest reports: %v", err)
	}
	if len(exact) != 1 {
		t.Errorf("expected 1 exact report, got %d", len(exact))
	}
}

func TestPrune(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.RecordScan(ctx, model.ScanResult{Root: "/a"}); err != nil {
		t.Fatalf("failed to record scan: %v", err)
	}
	if _, err := db.SaveReport(ctx, model.NewReport(model.LevelExact)); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	n, err := db.Prune(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected nothing pruned, got %d", n)
	}

	n, err = db.Prune(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows pruned, got %d", n)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "sqlite default", input: "2024-01-15 10:30:45", want: time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC)},
		{name: "iso with Z", input: "2024-01-15T10:30:45Z", want: time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC)},
		{name: "invalid", input: "yesterday", want: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
