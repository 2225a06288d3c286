package model

import (
	"testing"
	"time"
)

// TestParseLevel tests the level parser.
func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{input: "1", want: LevelExact},
		{input: "exact", want: LevelExact},
		{input: "2", want: LevelText},
		{input: "3", want: LevelImage},
		{input: "ALL", want: LevelAll},
		{input: "", want: LevelAll},
		{input: "4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, expected %v", got, tt.want)
			}
			if back, _ := ParseLevel(got.String()); back != got {
				t.Errorf("String() %q does not parse back", got.String())
			}
		})
	}
}

// TestLevelIncludes tests tier selection.
func TestLevelIncludes(t *testing.T) {
	t.Parallel()

	if !LevelAll.Includes(LevelImage) {
		t.Error("all should include image")
	}
	if LevelExact.Includes(LevelText) {
		t.Error("exact should not include text")
	}
	if !LevelText.Includes(LevelText) {
		t.Error("a level includes itself")
	}
}

// TestWastedBytes tests the space computations.
func TestWastedBytes(t *testing.T) {
	t.Parallel()

	t.Run("group", func(t *testing.T) {
		t.Parallel()
		g := DuplicateGroup{Size: 10, Locations: []string{"/a", "/b", "/c"}}
		if g.WastedBytes() != 20 {
			t.Errorf("got %d, expected 20", g.WastedBytes())
		}
		single := DuplicateGroup{Size: 10, Locations: []string{"/a"}}
		if single.WastedBytes() != 0 {
			t.Errorf("single location should waste nothing, got %d", single.WastedBytes())
		}
	})

	t.Run("report", func(t *testing.T) {
		t.Parallel()
		r := NewReport(LevelExact)
		r.Groups = []DuplicateGroup{
			{Size: 5, Locations: []string{"/a", "/b"}},
			{Size: 1, Locations: []string{"/c", "/d", "/e"}},
		}
		if r.WastedBytes() != 7 {
			t.Errorf("got %d, expected 7", r.WastedBytes())
		}
		if r.FindingCount() != 2 {
			t.Errorf("got %d findings, expected 2", r.FindingCount())
		}
	})
}

// TestReportAddSkipped tests that a path is recorded once.
func TestReportAddSkipped(t *testing.T) {
	t.Parallel()

	r := NewReport(LevelAll)
	r.AddSkipped(Skip{Path: "/a", Reason: "permission denied"})
	r.AddSkipped(Skip{Path: "/a", Reason: "decode failed"}, Skip{Path: "/b", Reason: "gone"})
	if len(r.Skipped) != 2 {
		t.Fatalf("expected 2 skips, got %d", len(r.Skipped))
	}
	if r.Skipped[0].Reason != "permission denied" {
		t.Errorf("first reason should win, got %q", r.Skipped[0].Reason)
	}
}

// TestScanResultMerge tests folding several scans together.
func TestScanResultMerge(t *testing.T) {
	t.Parallel()

	var total ScanResult
	total.Merge(ScanResult{Indexed: 2, Ignored: 1, Duration: time.Second, Statistics: Statistics{TotalFiles: 2}})
	total.Merge(ScanResult{Indexed: 3, Skipped: []Skip{{Path: "/x"}}, Duration: time.Second, Statistics: Statistics{TotalFiles: 5, UniqueFiles: 3, DuplicateGroups: 1}})

	if total.Indexed != 5 || total.Ignored != 1 || len(total.Skipped) != 1 {
		t.Errorf("unexpected totals %+v", total)
	}
	if total.Duration != 2*time.Second {
		t.Errorf("unexpected duration %v", total.Duration)
	}
	if total.Statistics.TotalFiles != 5 || total.Statistics.DistinctContents() != 4 {
		t.Errorf("expected last statistics, got %+v", total.Statistics)
	}
}
