package model

import "time"

// ImageInfo carries descriptive data about an image that took part in a
// similarity comparison. It is informational and never affects matching.
type ImageInfo struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Format string    `json:"format,omitempty"`
	Camera string    `json:"camera,omitempty"`
	Taken  time.Time `json:"taken,omitzero"`
}

// Report is the outcome of one find run.
type Report struct {
	// RunID identifies the run in the history database.
	RunID string `json:"run_id,omitempty"`

	// Level is the detection level that was requested.
	Level Level `json:"level"`

	// StartedAt and FinishedAt bracket the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Roots lists the directories scanned before detection, if any.
	Roots []string `json:"roots,omitempty"`

	// Statistics is the index summary at the end of the run.
	Statistics Statistics `json:"statistics"`

	Groups       []DuplicateGroup  `json:"groups,omitempty"`
	Containments []ContainmentPair `json:"containments,omitempty"`
	Similarities []SimilarityPair  `json:"similarities,omitempty"`

	// Images maps image paths from Similarities to their descriptive data.
	Images map[string]ImageInfo `json:"images,omitempty"`

	// Skipped lists the files left out by any step.
	Skipped []Skip `json:"skipped,omitempty"`

	// PerformedSteps lists the detection steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// ErrorMessage is set when the run ended early.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// NewReport creates an empty report for level.
func NewReport(level Level) *Report {
	return &Report{
		Level:     level,
		StartedAt: time.Now(),
		Images:    make(map[string]ImageInfo),
	}
}

// AddSkipped appends skips, ignoring a path that was already recorded.
func (r *Report) AddSkipped(skips ...Skip) {
	for _, s := range skips {
		seen := false
		for _, existing := range r.Skipped {
			if existing.Path == s.Path {
				seen = true
				break
			}
		}
		if !seen {
			r.Skipped = append(r.Skipped, s)
		}
	}
}

// WastedBytes sums the reclaimable space of the exact duplicate groups.
func (r *Report) WastedBytes() int64 {
	var total int64
	for _, g := range r.Groups {
		total += g.WastedBytes()
	}
	return total
}

// FindingCount returns the number of groups and pairs in the report.
func (r *Report) FindingCount() int {
	return len(r.Groups) + len(r.Containments) + len(r.Similarities)
}

// Finish stamps the end of the run.
func (r *Report) Finish() {
	r.FinishedAt = time.Now()
}
