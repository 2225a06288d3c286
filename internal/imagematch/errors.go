package imagematch

import "errors"

// ErrImageTooLarge is returned when the image header declares more pixels
// than MaxPixels.
var ErrImageTooLarge = errors.New("image dimensions exceed the decode limit")
