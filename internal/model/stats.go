package model

import "time"

// Statistics summarizes the fingerprint index.
type Statistics struct {
	// TotalFiles counts every indexed location.
	TotalFiles int `json:"total_files"`

	// UniqueFiles counts hashes with exactly one location.
	UniqueFiles int `json:"unique_files"`

	// DuplicateGroups counts hashes with two or more locations.
	DuplicateGroups int `json:"duplicate_groups"`

	// TotalSizeBytes sums the size of every indexed location.
	TotalSizeBytes int64 `json:"total_size_bytes"`

	// WastedSpaceBytes sums the size of every copy beyond the first.
	WastedSpaceBytes int64 `json:"wasted_space_bytes"`
}

// DistinctContents returns the number of distinct content hashes.
func (s Statistics) DistinctContents() int {
	return s.UniqueFiles + s.DuplicateGroups
}

// ScanResult describes one walk of a directory tree.
type ScanResult struct {
	// Root is the absolute path that was walked.
	Root string `json:"root"`

	// Indexed counts files hashed into the index.
	Indexed int `json:"indexed"`

	// Ignored counts files rejected by the eligibility filter.
	Ignored int `json:"ignored"`

	// Skipped lists files that could not be read.
	Skipped []Skip `json:"skipped,omitempty"`

	// Duration is the wall time of the walk.
	Duration time.Duration `json:"duration"`

	// Statistics is the index summary after the walk.
	Statistics Statistics `json:"statistics"`
}

// Merge folds other into r. Statistics are taken from other since the index
// summary is cumulative.
func (r *ScanResult) Merge(other ScanResult) {
	r.Indexed += other.Indexed
	r.Ignored += other.Ignored
	r.Skipped = append(r.Skipped, other.Skipped...)
	r.Duration += other.Duration
	r.Statistics = other.Statistics
}
