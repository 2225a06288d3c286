package scanner

import "errors"

// ErrNotDirectory is returned by Scan when the root is not a directory.
var ErrNotDirectory = errors.New("scan root is not a directory")
