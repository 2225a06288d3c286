// Package actions performs remediation on duplicate files: delete, move,
// copy and hard-link, for single files and for whole duplicate groups.
//
// Every operation reports failures per file and never prompts. When asked
// to, an operation updates the fingerprint index through its own methods
// (Remove, Relocate, Add) and persists it, so the index keeps matching the
// filesystem. Group operations persist once at the end.
package actions
