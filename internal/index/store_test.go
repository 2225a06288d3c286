package index

import (
	"errors"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/GRUUUUDD/dublicate/internal/config"
)

func snapshot(idx *Index) map[string][]string {
	out := make(map[string][]string)
	for _, rec := range idx.Records() {
		out[rec.Hash] = rec.Locations
	}
	return out
}

func reopen(t *testing.T, fs afero.Fs, algorithm string) (*Index, error) {
	t.Helper()
	cfg := config.NewConfig()
	cfg.IndexPath = testIndexPath
	if algorithm != "" {
		cfg.HashAlgorithm = algorithm
	}
	return Open(cfg, WithFs(fs), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

// TestPersistReload tests the storage round trip.
func TestPersistReload(t *testing.T) {
	t.Parallel()

	t.Run("round trip keeps the mapping and order", func(t *testing.T) {
		t.Parallel()
		idx, fs := newTestIndex(t, map[string]string{
			"/d/z": "first", "/d/y": "first", "/d/x": "second", "/d/w": "third",
		})
		for _, p := range []string{"/d/z", "/d/x", "/d/y", "/d/w"} {
			if _, err := idx.Add(p); err != nil {
				t.Fatal(err)
			}
		}
		if err := idx.Persist(); err != nil {
			t.Fatalf("persist failed: %v", err)
		}

		loaded, err := reopen(t, fs, "")
		if err != nil {
			t.Fatalf("reload failed: %v", err)
		}
		if !maps.EqualFunc(snapshot(idx), snapshot(loaded), slices.Equal) {
			t.Errorf("mapping differs:\n%v\n%v", snapshot(idx), snapshot(loaded))
		}
		var before, after []string
		for _, r := range idx.Records() {
			before = append(before, r.Hash)
		}
		for _, r := range loaded.Records() {
			after = append(after, r.Hash)
		}
		if !slices.Equal(before, after) {
			t.Errorf("order differs: %v vs %v", before, after)
		}
		if loaded.Statistics() != idx.Statistics() {
			t.Errorf("statistics differ: %+v vs %+v", loaded.Statistics(), idx.Statistics())
		}
	})

	t.Run("missing file is an empty index", func(t *testing.T) {
		t.Parallel()
		idx, err := reopen(t, afero.NewMemMapFs(), "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if idx.Len() != 0 {
			t.Error("expected empty index")
		}
	})

	t.Run("corrupt file is an empty index with an error", func(t *testing.T) {
		t.Parallel()
		fs := afero.NewMemMapFs()
		if err := afero.WriteFile(fs, testIndexPath, []byte("{not json"), 0600); err != nil {
			t.Fatal(err)
		}
		idx, err := reopen(t, fs, "")
		if !errors.Is(err, ErrCorruptIndex) {
			t.Errorf("expected ErrCorruptIndex, got %v", err)
		}
		if !IsStorageError(err) {
			t.Error("expected a storage error")
		}
		if idx == nil || idx.Len() != 0 {
			t.Error("expected an empty, usable index")
		}
	})

	t.Run("unknown version is corrupt", func(t *testing.T) {
		t.Parallel()
		fs := afero.NewMemMapFs()
		if err := afero.WriteFile(fs, testIndexPath, []byte(`{"version": 9, "records": []}`), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := reopen(t, fs, ""); !errors.Is(err, ErrCorruptIndex) {
			t.Errorf("expected ErrCorruptIndex, got %v", err)
		}
	})

	t.Run("algorithm mismatch empties the index", func(t *testing.T) {
		t.Parallel()
		idx, fs := newTestIndex(t, map[string]string{"/d/a": "x"})
		_, _ = idx.Add("/d/a")
		if err := idx.Persist(); err != nil {
			t.Fatal(err)
		}
		loaded, err := reopen(t, fs, config.HashSHA256)
		if !errors.Is(err, ErrAlgorithmMismatch) {
			t.Errorf("expected ErrAlgorithmMismatch, got %v", err)
		}
		if loaded.Len() != 0 {
			t.Error("expected empty index")
		}
	})

	t.Run("persist leaves no temporary files", func(t *testing.T) {
		t.Parallel()
		idx, fs := newTestIndex(t, map[string]string{"/d/a": "x"})
		_, _ = idx.Add("/d/a")
		for range 3 {
			if err := idx.Persist(); err != nil {
				t.Fatal(err)
			}
		}
		entries, err := afero.ReadDir(fs, "/state")
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 || entries[0].Name() != "index.json" {
			var names []string
			for _, e := range entries {
				names = append(names, e.Name())
			}
			t.Errorf("unexpected files %v", names)
		}
	})
}

// slowRenameFs holds the first Rename until release is closed.
type slowRenameFs struct {
	afero.Fs
	once     sync.Once
	renaming chan struct{}
	release  chan struct{}
}

func (fs *slowRenameFs) Rename(oldname, newname string) error {
	first := false
	fs.once.Do(func() { first = true })
	if first {
		close(fs.renaming)
		<-fs.release
	}
	return fs.Fs.Rename(oldname, newname)
}

// TestConcurrentPersist tests that the file ends up with the latest table
// when two Persist calls overlap.
func TestConcurrentPersist(t *testing.T) {
	t.Parallel()

	fs := &slowRenameFs{
		Fs:       afero.NewMemMapFs(),
		renaming: make(chan struct{}),
		release:  make(chan struct{}),
	}
	for path, content := range map[string]string{"/d/a": "first", "/d/b": "second"} {
		if err := afero.WriteFile(fs.Fs, path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.NewConfig()
	cfg.IndexPath = testIndexPath
	idx := New(cfg, WithFs(fs), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	if _, err := idx.Add("/d/a"); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- idx.Persist()
	}()
	<-fs.renaming

	if _, err := idx.Add("/d/b"); err != nil {
		t.Fatal(err)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- idx.Persist()
	}()

	time.Sleep(50 * time.Millisecond)
	close(fs.release)
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	loaded, err := reopen(t, fs, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Len() != 2 {
		t.Errorf("expected 2 records on disk, got %d", loaded.Len())
	}
}

// TestLegacyMigration tests reading the bare hash-keyed layout.
func TestLegacyMigration(t *testing.T) {
	t.Parallel()

	legacy := `{
  "b1946ac92492d2347c6235b4d2611184": {
    "files": ["/d/one", "/d/two"],
    "size": 6,
    "modified": "2024-03-01T10:20:30.123456"
  },
  "0cc175b9c0f1b6a831c399e269772661": {
    "files": [],
    "size": 1,
    "modified": "2024-03-01T10:20:30"
  },
  "5d41402abc4b2a76b9719d911017c592": {
    "files": ["/d/three", "/d/one"],
    "size": 5,
    "modified": "2024-03-02T08:00:00"
  }
}`
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, testIndexPath, []byte(legacy), 0600); err != nil {
		t.Fatal(err)
	}

	idx, err := reopen(t, fs, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recs := idx.Records()
	if len(recs) != 2 {
		t.Fatalf("expected empty record to be dropped, got %d records", len(recs))
	}
	if recs[0].Hash != "b1946ac92492d2347c6235b4d2611184" {
		t.Errorf("expected file order to be kept, got %s first", recs[0].Hash)
	}
	if recs[0].Modified.Year() != 2024 || recs[0].Modified.Nanosecond() != 123456000 {
		t.Errorf("unexpected timestamp %v", recs[0].Modified)
	}
	if !slices.Equal(recs[1].Locations, []string{"/d/three"}) {
		t.Errorf("a location must belong to one record, got %v", recs[1].Locations)
	}
	checkInvariant(t, idx)

	if err := idx.Persist(); err != nil {
		t.Fatal(err)
	}
	data, err := afero.ReadFile(fs, testIndexPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"version": 1`) {
		t.Errorf("expected migrated file to be versioned, got %s", data)
	}
}
