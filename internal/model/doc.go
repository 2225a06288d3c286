// Package model defines the result records shared by dupman's packages.
//
// This package contains the following main types:
//   - DuplicateGroup: files with byte-identical content
//   - ContainmentPair: one text file contained in another (directional)
//   - SimilarityPair: two perceptually similar images (unordered)
//   - Statistics and ScanResult: index and scan summaries
//   - Report: everything a find run produced, as consumed by the writers
//
// The records live in their own package because the index, the matchers,
// the pipeline, the report writers and the history database all use them.
// All types serialize to JSON for report output and history storage.
package model
