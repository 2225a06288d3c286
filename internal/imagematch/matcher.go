package imagematch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/GRUUUUDD/dublicate/internal/config"
	"github.com/GRUUUUDD/dublicate/internal/model"
)

// Matcher fingerprints images and reports similar pairs.
type Matcher struct {
	fs        afero.Fs
	threshold float64
	workers   int
	logger    *slog.Logger
	progress  func()
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		m.logger = logger
	}
}

// WithFs sets the filesystem images are read from.
func WithFs(fs afero.Fs) Option {
	return func(m *Matcher) {
		m.fs = fs
	}
}

// WithProgress registers a callback invoked once per image processed.
// It may be called from several goroutines.
func WithProgress(fn func()) Option {
	return func(m *Matcher) {
		m.progress = fn
	}
}

// New creates a Matcher from the image options of cfg.
func New(cfg *config.Config, opts ...Option) *Matcher {
	m := &Matcher{
		fs:        afero.NewOsFs(),
		threshold: cfg.ImageSimilarityThreshold,
		workers:   cfg.WorkerCount(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fingerprint reads and hashes the image at path.
func (m *Matcher) Fingerprint(path string) (Fingerprint, error) {
	data, err := afero.ReadFile(m.fs, path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return fingerprintBytes(path, data)
}

// Result is the outcome of FindAll.
type Result struct {
	// Pairs lists similar images, each unordered pair at most once.
	// Order is unspecified.
	Pairs []model.SimilarityPair

	// Compared counts unordered pairs evaluated.
	Compared int

	// Images holds the descriptive data of every fingerprinted image.
	Images map[string]model.ImageInfo

	// Skipped lists images that could not be read or decoded.
	Skipped []model.Skip
}

// FindAll fingerprints every path once and compares each unordered pair once.
//
// Images that cannot be read or decoded are skipped and reported. When ctx is
// cancelled the pairs found so far are returned together with ctx.Err().
func (m *Matcher) FindAll(ctx context.Context, paths []string) (Result, error) {
	result := Result{Images: make(map[string]model.ImageInfo)}

	prints, skipped, err := m.fingerprintAll(ctx, unique(paths))
	result.Skipped = skipped
	if err != nil {
		return result, err
	}
	for _, fp := range prints {
		result.Images[fp.Path] = fp.Info
	}

	for i := range prints {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		for j := i + 1; j < len(prints); j++ {
			a, b := prints[i], prints[j]
			result.Compared++

			d, err := Distance(a, b)
			if err != nil {
				return result, fmt.Errorf("failed to compare %s and %s: %w", a.Path, b.Path, err)
			}
			if s := Similarity(d); Qualifies(s, m.threshold) {
				result.Pairs = append(result.Pairs, model.SimilarityPair{PathA: a.Path, PathB: b.Path, Score: s, Distance: d})
			}
		}
	}

	m.logger.Debug("image similarity finished",
		"images", len(prints), "compared", result.Compared, "pairs", len(result.Pairs), "skipped", len(result.Skipped))
	return result, nil
}

// fingerprintAll hashes the images with bounded parallelism. Fingerprints
// keep the order of paths.
func (m *Matcher) fingerprintAll(ctx context.Context, paths []string) ([]Fingerprint, []model.Skip, error) {
	prints := make([]*Fingerprint, len(paths))
	var (
		mu      sync.Mutex
		skipped []model.Skip
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(m.workers, 1))

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if m.progress != nil {
				defer m.progress()
			}
			if gctx.Err() != nil {
				return nil
			}
			fp, err := m.Fingerprint(path)
			if err != nil {
				m.logger.Warn("skipping image", "path", path, "error", err)
				mu.Lock()
				skipped = append(skipped, model.Skip{Path: path, Reason: err.Error()})
				mu.Unlock()
				return nil
			}
			prints[i] = &fp
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors

	if err := ctx.Err(); err != nil {
		return nil, skipped, err
	}

	out := make([]Fingerprint, 0, len(prints))
	for _, fp := range prints {
		if fp != nil {
			out = append(out, *fp)
		}
	}
	return out, skipped, nil
}

// unique drops repeated paths, keeping first occurrences.
func unique(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
