// Package scanner walks directory trees, feeds the fingerprint index and
// runs the three detection tiers over the indexed files.
//
// Scan is incremental: files already indexed with unchanged content are
// cheap no-ops in the index. The text and image tiers are recomputed from
// the index on every call; their results are never persisted.
package scanner
