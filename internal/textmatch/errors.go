package textmatch

import "errors"

// ErrUnknownEncoding is returned by New when text_encodings names an
// encoding that cannot be resolved.
var ErrUnknownEncoding = errors.New("unknown text encoding")
