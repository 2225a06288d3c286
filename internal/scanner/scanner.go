package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/GRUUUUDD/dublicate/internal/config"
	"github.com/GRUUUUDD/dublicate/internal/imagematch"
	"github.com/GRUUUUDD/dublicate/internal/index"
	"github.com/GRUUUUDD/dublicate/internal/model"
	"github.com/GRUUUUDD/dublicate/internal/textmatch"
)

// Scanner is the entry point used by the CLI.
type Scanner struct {
	cfg      *config.Config
	fs       afero.Fs
	index    *index.Index
	text     *textmatch.Matcher
	images   *imagematch.Matcher
	logger   *slog.Logger
	progress Progress
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithFs sets the filesystem that is walked. It should be the filesystem
// the index hashes through.
func WithFs(fs afero.Fs) Option {
	return func(s *Scanner) {
		s.fs = fs
	}
}

// WithProgress sets the progress receiver.
func WithProgress(p Progress) Option {
	return func(s *Scanner) {
		s.progress = p
	}
}

// New creates a Scanner over idx.
func New(cfg *config.Config, idx *index.Index, opts ...Option) (*Scanner, error) {
	s := &Scanner{
		cfg:      cfg,
		fs:       afero.NewOsFs(),
		index:    idx,
		logger:   slog.Default(),
		progress: noopProgress{},
	}
	for _, opt := range opts {
		opt(s)
	}

	text, err := textmatch.New(cfg, textmatch.WithFs(s.fs), textmatch.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	s.text = text
	s.images = imagematch.New(cfg,
		imagematch.WithFs(s.fs),
		imagematch.WithLogger(s.logger),
		imagematch.WithProgress(func() { s.progress.Increment() }),
	)
	return s, nil
}

// Index returns the fingerprint index.
func (s *Scanner) Index() *index.Index {
	return s.index
}

// Scan walks root, adds every eligible file to the index and persists it.
//
// A root that is a symbolic link is resolved first; links below the root
// are not followed. An inaccessible root is returned as an error. Files and subdirectories
// that cannot be read are skipped and listed in the result. An unknown hash
// algorithm stops the scan. When ctx is cancelled the scan stops scheduling
// files and returns what it indexed with ctx.Err().
func (s *Scanner) Scan(ctx context.Context, root string) (model.ScanResult, error) {
	start := time.Now()

	abs, err := filepath.Abs(root)
	if err != nil {
		return model.ScanResult{}, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	result := model.ScanResult{Root: abs}

	abs, err = s.resolveRoot(abs)
	if err != nil {
		return result, fmt.Errorf("failed to access %s: %w", result.Root, err)
	}
	result.Root = abs

	info, err := s.fs.Stat(abs)
	if err != nil {
		return result, fmt.Errorf("failed to access %s: %w", abs, err)
	}
	if !info.IsDir() {
		return result, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}

	files, skipped, err := s.collect(abs)
	result.Skipped = skipped
	if err != nil {
		return result, err
	}

	err = s.addAll(ctx, files, &result)
	result.Duration = time.Since(start)
	result.Statistics = s.index.Statistics()

	if perr := s.index.Persist(); perr != nil {
		s.logger.Warn("failed to save index", "path", s.index.Path(), "error", perr)
	}

	s.logger.Debug("scan finished", "root", abs, "indexed", result.Indexed,
		"ignored", result.Ignored, "skipped", len(result.Skipped), "duration", result.Duration)
	return result, err
}

// resolveRoot follows symbolic links in root on the operating system
// filesystem. afero.Walk does not descend into a root given as a link.
func (s *Scanner) resolveRoot(root string) (string, error) {
	if _, ok := s.fs.(*afero.OsFs); !ok {
		return root, nil
	}
	return filepath.EvalSymlinks(root)
}

// collect walks root and returns the regular files below it. Directories
// matching an exclusion pattern are not entered; symbolic links are not
// followed.
func (s *Scanner) collect(root string) ([]string, []model.Skip, error) {
	var (
		files   []string
		skipped []model.Skip
	)

	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("failed to read %s: %w", root, err)
			}
			s.logger.Warn("skipping unreadable path", "path", path, "error", err)
			skipped = append(skipped, model.Skip{Path: path, Reason: err.Error()})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if path != root && s.excludedDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	return files, skipped, err
}

// excludedDir reports whether a directory matches an exclusion pattern.
func (s *Scanner) excludedDir(path string) bool {
	for _, pattern := range s.cfg.ExcludePatterns {
		if pattern != "" && strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// addAll hashes files into the index with bounded parallelism.
func (s *Scanner) addAll(ctx context.Context, files []string, result *model.ScanResult) error {
	var mu sync.Mutex

	s.progress.Start("Indexing files", len(files))
	defer s.progress.Done()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.WorkerCount())

	for _, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			defer s.progress.Increment()
			if gctx.Err() != nil {
				return nil
			}

			_, err := s.index.Add(path)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Indexed++
			case errors.Is(err, index.ErrNotProcessed):
				result.Ignored++
			case errors.Is(err, index.ErrUnsupportedAlgorithm):
				return err
			default:
				s.logger.Warn("skipping file", "path", path, "error", err)
				result.Skipped = append(result.Skipped, model.Skip{Path: path, Reason: err.Error()})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// FindExactDuplicates returns the duplicate groups of the index.
func (s *Scanner) FindExactDuplicates() []model.DuplicateGroup {
	return s.index.Duplicates()
}

// FindTextContainments runs the text tier over the indexed text files that
// still exist.
func (s *Scanner) FindTextContainments(ctx context.Context) (textmatch.Result, error) {
	paths := s.candidates(s.cfg.IsSupportedText)
	s.logger.Debug("text candidates", "count", len(paths))
	return s.text.FindAll(ctx, paths)
}

// FindImageDuplicates runs the image tier over the indexed images that still
// exist.
func (s *Scanner) FindImageDuplicates(ctx context.Context) (imagematch.Result, error) {
	paths := s.candidates(s.cfg.IsSupportedImage)
	s.logger.Debug("image candidates", "count", len(paths))

	s.progress.Start("Hashing images", len(paths))
	defer s.progress.Done()
	return s.images.FindAll(ctx, paths)
}

// Statistics summarizes the index.
func (s *Scanner) Statistics() model.Statistics {
	return s.index.Statistics()
}

// candidates returns indexed locations accepted by keep that are still
// regular files.
func (s *Scanner) candidates(keep func(string) bool) []string {
	var out []string
	for _, path := range s.index.Locations() {
		if !keep(path) {
			continue
		}
		info, err := s.fs.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		out = append(out, path)
	}
	return out
}
