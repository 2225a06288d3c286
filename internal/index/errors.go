package index

import "errors"

var (
	// ErrNotProcessed is returned by Add when the eligibility filter rejects
	// the path: it is not a regular file, it matches an exclusion, or its
	// size is out of bounds.
	ErrNotProcessed = errors.New("file not processed")

	// ErrUnsupportedAlgorithm is returned when the configured hash algorithm
	// is unknown. It is a configuration error and should stop the run.
	ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")

	// ErrCorruptIndex is returned by Reload when the index file cannot be
	// parsed. The in-memory index is left empty.
	ErrCorruptIndex = errors.New("corrupt index file")

	// ErrAlgorithmMismatch is returned by Reload when the index file was
	// written with a different hash algorithm than the configured one.
	// The in-memory index is left empty.
	ErrAlgorithmMismatch = errors.New("index was built with a different hash algorithm")
)
