// Package index implements the fingerprint index: a persistent mapping from
// content hash to every known location of a file with that content.
//
// The index is the first detection tier (byte-exact duplicates) and the
// source of candidate files for the text and image tiers. Remediation
// actions keep it consistent through Remove and Relocate.
//
// # Invariants
//
//   - A record always holds at least one location; a record whose last
//     location is removed is dropped.
//   - A location belongs to at most one record.
//   - Add is idempotent for an unchanged file.
//   - All mutations are serialized by a mutex; hashing itself runs outside
//     the lock so callers may Add from many goroutines.
//
// # Storage
//
// Persist writes a versioned JSON document atomically (temporary file plus
// rename). Reload accepts that document and the bare hash-keyed map written
// by earlier installations. A missing file yields an empty index; a corrupt
// one yields an empty index and ErrCorruptIndex.
package index
