package pipeline

import (
	"context"
	"log/slog"

	"github.com/GRUUUUDD/dublicate/internal/imagematch"
	"github.com/GRUUUUDD/dublicate/internal/model"
	"github.com/GRUUUUDD/dublicate/internal/textmatch"
)

// RootScanner indexes one directory tree.
type RootScanner interface {
	Scan(ctx context.Context, root string) (model.ScanResult, error)
}

// Detector is the detection surface the steps run against.
// *scanner.Scanner implements it.
type Detector interface {
	RootScanner
	FindExactDuplicates() []model.DuplicateGroup
	FindTextContainments(ctx context.Context) (textmatch.Result, error)
	FindImageDuplicates(ctx context.Context) (imagematch.Result, error)
	Statistics() model.Statistics
}

// ScanStep indexes the report's roots before detection.
type ScanStep struct {
	batch *BatchProcessor
}

// NewScanStep creates a step scanning the report's roots with batch.
func NewScanStep(batch *BatchProcessor) *ScanStep {
	return &ScanStep{batch: batch}
}

// Name returns the step name.
func (s *ScanStep) Name() string {
	return "scan"
}

// Do scans every root in report.Roots. A root that cannot be scanned fails
// the step after the others have been scanned.
func (s *ScanStep) Do(ctx context.Context, report *model.Report) error {
	if len(report.Roots) == 0 {
		return nil
	}
	results, err := s.batch.ProcessBatch(ctx, report.Roots)
	for _, r := range results {
		report.AddSkipped(r.Skipped...)
	}
	return err
}

// ExactStep collects the exact duplicate groups.
type ExactStep struct {
	detector Detector
}

// NewExactStep creates the exact duplicate step.
func NewExactStep(d Detector) *ExactStep {
	return &ExactStep{detector: d}
}

// Name returns the step name.
func (s *ExactStep) Name() string {
	return "exact"
}

// Do records the duplicate groups of the index.
func (s *ExactStep) Do(_ context.Context, report *model.Report) error {
	report.Groups = s.detector.FindExactDuplicates()
	return nil
}

// TextStep collects text containment pairs.
type TextStep struct {
	detector Detector
}

// NewTextStep creates the text containment step.
func NewTextStep(d Detector) *TextStep {
	return &TextStep{detector: d}
}

// Name returns the step name.
func (s *TextStep) Name() string {
	return "text"
}

// Do records the containment pairs and the unreadable files.
func (s *TextStep) Do(ctx context.Context, report *model.Report) error {
	res, err := s.detector.FindTextContainments(ctx)
	report.Containments = res.Pairs
	report.AddSkipped(res.Skipped...)
	return err
}

// ImageStep collects similar image pairs.
type ImageStep struct {
	detector Detector
}

// NewImageStep creates the image similarity step.
func NewImageStep(d Detector) *ImageStep {
	return &ImageStep{detector: d}
}

// Name returns the step name.
func (s *ImageStep) Name() string {
	return "image"
}

// Do records the similar pairs, the data of the paired images and the files
// that could not be decoded.
func (s *ImageStep) Do(ctx context.Context, report *model.Report) error {
	res, err := s.detector.FindImageDuplicates(ctx)
	report.Similarities = res.Pairs
	if report.Images == nil {
		report.Images = make(map[string]model.ImageInfo)
	}
	for _, p := range res.Pairs {
		for _, path := range []string{p.PathA, p.PathB} {
			if info, ok := res.Images[path]; ok {
				report.Images[path] = info
			}
		}
	}
	report.AddSkipped(res.Skipped...)
	return err
}

// StatisticsStep records the index summary.
type StatisticsStep struct {
	detector Detector
}

// NewStatisticsStep creates the statistics step.
func NewStatisticsStep(d Detector) *StatisticsStep {
	return &StatisticsStep{detector: d}
}

// Name returns the step name.
func (s *StatisticsStep) Name() string {
	return "statistics"
}

// Do records the index summary.
func (s *StatisticsStep) Do(_ context.Context, report *model.Report) error {
	report.Statistics = s.detector.Statistics()
	return nil
}

// ForLevel builds the pipeline of a find run: a scan step when roots are
// given, the tiers selected by level, then statistics.
func ForLevel(level model.Level, d Detector, withScan bool, logger *slog.Logger, opts ...BatchOption) *Pipeline {
	p := New(WithLogger(logger))
	if withScan {
		p.AddStep(NewScanStep(NewBatchProcessor(d, append([]BatchOption{WithBatchLogger(logger)}, opts...)...)))
	}
	if level.Includes(model.LevelExact) {
		p.AddStep(NewExactStep(d))
	}
	if level.Includes(model.LevelText) {
		p.AddStep(NewTextStep(d))
	}
	if level.Includes(model.LevelImage) {
		p.AddStep(NewImageStep(d))
	}
	p.AddStep(NewStatisticsStep(d))
	return p
}
