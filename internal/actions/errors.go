package actions

import "errors"

var (
	// ErrNotFound is returned when the source file does not exist.
	ErrNotFound = errors.New("file does not exist")

	// ErrHardLinkUnsupported is returned when the filesystem cannot create
	// hard links.
	ErrHardLinkUnsupported = errors.New("hard links are not supported by this filesystem")

	// ErrSameFile is returned when source and destination are the same path.
	ErrSameFile = errors.New("source and destination are the same file")
)
