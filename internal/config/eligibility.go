package config

import (
	"path/filepath"
	"slices"
	"strings"
)

// ShouldExclude reports whether path is excluded by extension or by one of
// the substring patterns.
func (c *Config) ShouldExclude(path string) bool {
	if hasExtension(path, c.ExcludeExtensions) {
		return true
	}
	for _, pattern := range c.ExcludePatterns {
		if pattern != "" && strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// SizeAllowed reports whether size lies within [MinFileSize, MaxFileSize].
func (c *Config) SizeAllowed(size int64) bool {
	if size < c.MinFileSize {
		return false
	}
	if c.MaxFileSize != nil && size > *c.MaxFileSize {
		return false
	}
	return true
}

// IsSupportedImage reports whether path has one of the image extensions.
func (c *Config) IsSupportedImage(path string) bool {
	return hasExtension(path, c.SupportedImageFormats)
}

// IsSupportedText reports whether path has one of the text extensions.
func (c *Config) IsSupportedText(path string) bool {
	return hasExtension(path, c.SupportedTextExtensions)
}

// hasExtension compares the extension of path with exts, ignoring case.
// A dot file such as ".DS_Store" counts as its own extension.
func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	return slices.ContainsFunc(exts, func(e string) bool {
		return strings.ToLower(e) == ext
	})
}
