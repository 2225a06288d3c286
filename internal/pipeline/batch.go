package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/GRUUUUDD/dublicate/internal/model"
)

// BatchProcessor scans several roots concurrently into one index.
type BatchProcessor struct {
	scanner RootScanner

	// concurrency is the maximum number of roots scanned at once.
	concurrency int

	logger *slog.Logger

	results []model.ScanResult
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent root scans.
// Default is 2 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor over scanner.
func NewBatchProcessor(scanner RootScanner, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		scanner:     scanner,
		concurrency: 2,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch scans every root and returns one result per root in the
// order of roots. A failing root does not stop the others; the failures are
// joined into the returned error. Cancellation stops roots not yet started.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, roots []string) ([]model.ScanResult, error) {
	bp.logger.Debug("starting batch scan", "roots", len(roots), "concurrency", bp.concurrency)
	start := time.Now()

	bp.results = make([]model.ScanResult, len(roots))
	var errs []error

	err := bp.run(ctx, roots, func(res model.ScanResult, i int, err error) {
		bp.mu.Lock()
		defer bp.mu.Unlock()
		bp.results[i] = res
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", roots[i], err))
		}
	})
	if err != nil {
		errs = append(errs, err)
	}

	bp.logger.Debug("batch scan complete", "roots", len(roots), "elapsed", time.Since(start))
	return bp.results, errors.Join(errs...)
}

// ProcessBatchWithCallback scans every root and calls callback for each
// finished root with its position in roots. The callback is called from the
// scanning goroutine and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	roots []string,
	callback func(result model.ScanResult, index int, err error),
) error {
	return bp.run(ctx, roots, callback)
}

func (bp *BatchProcessor) run(
	ctx context.Context,
	roots []string,
	callback func(result model.ScanResult, index int, err error),
) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, root := range roots {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := bp.scanner.Scan(gctx, root)
			if err != nil {
				bp.logger.Warn("scan failed", "root", root, "error", err)
			}
			callback(res, i, err)
			return nil
		})
	}

	return g.Wait()
}
