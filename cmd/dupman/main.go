// Package main provides the entry point for the dupman CLI.
//
// dupman finds duplicate files in three tiers: byte-identical files through
// a persistent content-hash index, text files contained in other text files,
// and perceptually similar images.
//
// Usage:
//
//	dupman scan <directory>...
//	dupman find --level all
//	dupman interactive
//
// See --help for all available options.
package main

func main() {
	Execute()
}
