// Package textmatch finds text files whose content is contained in another
// text file.
//
// Each file is decoded once with the first configured encoding that accepts
// it, normalized (whitespace runs collapsed, lower-cased, trimmed) and then
// compared with every other file exactly once per unordered pair. Both
// directions of a pair are scored from the same two texts:
//
//   - 1.0 when the contained text is a literal substring of the container,
//   - otherwise the share of the contained text's distinct words that also
//     occur in the container.
//
// The score is directional; a short file can be fully contained in a long
// one while the long one scores low against the short one.
//
// UTF-16 is only recognized by its byte order mark. BOM-less UTF-16 input
// falls through to the single-byte encodings and is decoded as one of them.
package textmatch
