package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidChunkSize is returned when the hashing chunk size is not positive.
	ErrInvalidChunkSize = errors.New("invalid chunk_size: must be positive")

	// ErrInvalidSizeBounds is returned when min_file_size is negative or
	// greater than max_file_size.
	ErrInvalidSizeBounds = errors.New("invalid file size bounds: need 0 <= min_file_size <= max_file_size")

	// ErrInvalidImageThreshold is returned when image_similarity_threshold is outside [0,1].
	ErrInvalidImageThreshold = errors.New("invalid image_similarity_threshold: must be within [0, 1]")

	// ErrInvalidTextThreshold is returned when text_containment_threshold is outside [0,1].
	ErrInvalidTextThreshold = errors.New("invalid text_containment_threshold: must be within [0, 1]")

	// ErrInvalidWorkers is returned when workers is negative.
	ErrInvalidWorkers = errors.New("invalid workers: must be zero (auto) or positive")

	// ErrNoIndexPath is returned when index_path is empty.
	ErrNoIndexPath = errors.New("index_path must not be empty")

	// ErrUnknownKey is returned by Set for an option name that does not exist.
	ErrUnknownKey = errors.New("unknown configuration key")
)
