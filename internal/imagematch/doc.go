// Package imagematch finds perceptually similar images.
//
// Every image is decoded once and reduced to a 64-bit DCT perceptual hash.
// Two images are compared through the Hamming distance d of their hashes:
//
//	similarity = 1 - d/64
//
// A pair is reported when the similarity reaches the configured threshold;
// the boundary is inclusive. Each unordered pair is compared once.
//
// JPEG, PNG and GIF are decoded by the standard library; BMP, TIFF and WebP
// by golang.org/x/image. Size and EXIF camera data are collected alongside
// the hash for reporting only.
package imagematch
