package textmatch

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

// Matcher reads text files and reports containment pairs.
type Matcher struct {
	fs        afero.Fs
	chain     []candidate
	threshold float64
	workers   int
	logger    *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		m.logger = logger
	}
}

// WithFs sets the filesystem files are read from.
func WithFs(fs afero.Fs) Option {
	return func(m *Matcher) {
		m.fs = fs
	}
}

// New creates a Matcher from the text options of cfg.
// It fails with ErrUnknownEncoding if text_encodings cannot be resolved.
func New(cfg *config.Config, opts ...Option) (*Matcher, error) {
	m := &Matcher{
		fs:        afero.NewOsFs(),
		threshold: cfg.TextContainmentThreshold,
		workers:   cfg.WorkerCount(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, name := range cfg.TextEncodings {
		c, err := newCandidate(name)
		if err != nil {
			return nil, err
		}
		m.chain = append(m.chain, c)
	}
	return m, nil
}

// Read decodes the file at path with the first encoding that accepts it,
// falling back to UTF-8 with invalid sequences dropped.
// Only I/O failures are returned as errors.
func (m *Matcher) Read(path string) (string, error) {
	data, err := afero.ReadFile(m.fs, path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	text, enc := decodeWith(m.chain, data)
	if enc == "" {
		m.logger.Debug("no encoding matched, decoded lossily", "path", path)
	}
	return text, nil
}

// Result is the outcome of FindAll.
type Result struct {
	// Pairs lists every direction whose score reached the threshold.
	// Order is unspecified.
	Pairs []model.ContainmentPair

	// Compared counts unordered pairs evaluated: N*(N-1)/2 for N readable files.
	Compared int

	// Scored counts directional scores computed: twice Compared.
	Scored int

	// Skipped lists files that could not be read.
	Skipped []model.Skip
}

// FindAll reads every path once and evaluates each unordered pair once,
// scoring both directions.
//
// Unreadable files are skipped and reported in Result.Skipped. When ctx is
// cancelled the pairs found so far are returned together with ctx.Err().
func (m *Matcher) FindAll(ctx context.Context, paths []string) (Result, error) {
	var result Result

	docs, skipped, err := m.load(ctx, unique(paths))
	result.Skipped = skipped
	if err != nil {
		return result, err
	}

	for i := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		for j := i + 1; j < len(docs); j++ {
			a, b := docs[i], docs[j]
			result.Compared++

			if s := score(a, b); Qualifies(s, m.threshold) {
				result.Pairs = append(result.Pairs, model.ContainmentPair{Container: a.path, Contained: b.path, Score: s})
			}
			if s := score(b, a); Qualifies(s, m.threshold) {
				result.Pairs = append(result.Pairs, model.ContainmentPair{Container: b.path, Contained: a.path, Score: s})
			}
			result.Scored += 2
		}
	}

	m.logger.Debug("text containment finished",
		"files", len(docs), "compared", result.Compared, "pairs", len(result.Pairs), "skipped", len(result.Skipped))
	return result, nil
}

// load reads and normalizes the files with bounded parallelism. Documents
// keep the order of paths.
func (m *Matcher) load(ctx context.Context, paths []string) ([]*document, []model.Skip, error) {
	docs := make([]*document, len(paths))
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
			if gctx.Err() != nil {
				return nil
			}
			text, err := m.Read(path)
			if err != nil {
				m.logger.Warn("skipping unreadable text file", "path", path, "error", err)
				mu.Lock()
				skipped = append(skipped, model.Skip{Path: path, Reason: err.Error()})
				mu.Unlock()
				return nil
			}
			docs[i] = newDocument(path, text)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors

	if err := ctx.Err(); err != nil {
		return nil, skipped, err
	}

	loaded := make([]*document, 0, len(docs))
	for _, d := range docs {
		if d != nil {
			loaded = append(loaded, d)
		}
	}
	return loaded, skipped, nil
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
