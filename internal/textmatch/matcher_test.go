package textmatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/spf13/afero"

	"github.com/GRUUUUDD/dublicate/internal/config"
	"github.com/GRUUUUDD/dublicate/internal/model"
)

func newTestMatcher(t *testing.T, files map[string]string, threshold float64) *Matcher {
	t.Helper()

	fs := afero.NewMemMapFs()
	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.NewConfig()
	cfg.TextContainmentThreshold = threshold
	cfg.Workers = 4

	m, err := New(cfg, WithFs(fs), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func hasPair(pairs []model.ContainmentPair, container, contained string) bool {
	for _, p := range pairs {
		if p.Container == container && p.Contained == contained {
			return true
		}
	}
	return false
}

// TestFindAll tests the pairwise scan.
func TestFindAll(t *testing.T) {
	t.Parallel()

	t.Run("directional pairs", func(t *testing.T) {
		t.Parallel()
		m := newTestMatcher(t, map[string]string{
			"/t/long.txt":  "The quick brown fox jumps",
			"/t/short.txt": "quick   brown\nfox",
			"/t/other.txt": "lorem ipsum dolor",
		}, 0.8)

		res, err := m.FindAll(context.Background(), []string{"/t/long.txt", "/t/short.txt", "/t/other.txt"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Pairs) != 1 || !hasPair(res.Pairs, "/t/long.txt", "/t/short.txt") {
			t.Errorf("unexpected pairs %+v", res.Pairs)
		}
		if res.Pairs[0].Score != 1.0 {
			t.Errorf("expected score 1.0, got %v", res.Pairs[0].Score)
		}
	})

	t.Run("both directions may qualify", func(t *testing.T) {
		t.Parallel()
		m := newTestMatcher(t, map[string]string{
			"/t/a.txt": "same text here",
			"/t/b.txt": "Same  TEXT here",
		}, 0.8)

		res, err := m.FindAll(context.Background(), []string{"/t/a.txt", "/t/b.txt"})
		if err != nil {
			t.Fatal(err)
		}
		if !hasPair(res.Pairs, "/t/a.txt", "/t/b.txt") || !hasPair(res.Pairs, "/t/b.txt", "/t/a.txt") {
			t.Errorf("expected both directions, got %+v", res.Pairs)
		}
	})

	t.Run("threshold is inclusive", func(t *testing.T) {
		t.Parallel()
		m := newTestMatcher(t, map[string]string{
			"/t/a.txt": "quick brown fox",
			"/t/b.txt": "the quick brown fox jumps",
		}, 0.6)

		res, err := m.FindAll(context.Background(), []string{"/t/a.txt", "/t/b.txt"})
		if err != nil {
			t.Fatal(err)
		}
		if !hasPair(res.Pairs, "/t/a.txt", "/t/b.txt") {
			t.Errorf("expected 0.6 to qualify at threshold 0.6, got %+v", res.Pairs)
		}
	})

	t.Run("every unordered pair once", func(t *testing.T) {
		t.Parallel()
		const n = 7
		files := make(map[string]string, n)
		paths := make([]string, 0, n+2)
		for i := range n {
			p := fmt.Sprintf("/t/f%d.txt", i)
			files[p] = fmt.Sprintf("document number %d", i)
			paths = append(paths, p)
		}
		paths = append(paths, "/t/f0.txt", "/t/missing.txt")
		m := newTestMatcher(t, files, 0.8)

		res, err := m.FindAll(context.Background(), paths)
		if err != nil {
			t.Fatal(err)
		}
		if res.Compared != n*(n-1)/2 {
			t.Errorf("compared %d pairs, expected %d", res.Compared, n*(n-1)/2)
		}
		if res.Scored != n*(n-1) {
			t.Errorf("scored %d directions, expected %d", res.Scored, n*(n-1))
		}
		if len(res.Skipped) != 1 || res.Skipped[0].Path != "/t/missing.txt" {
			t.Errorf("expected missing file to be skipped, got %+v", res.Skipped)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		m := newTestMatcher(t, map[string]string{"/t/a.txt": "a", "/t/b.txt": "a"}, 0.8)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := m.FindAll(ctx, []string{"/t/a.txt", "/t/b.txt"}); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestNewRejectsUnknownEncoding tests configuration validation.
func TestNewRejectsUnknownEncoding(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.TextEncodings = []string{"utf-8", "no-such-charset"}
	if _, err := New(cfg); !errors.Is(err, ErrUnknownEncoding) {
		t.Errorf("expected ErrUnknownEncoding, got %v", err)
	}
}
