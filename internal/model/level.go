package model

import (
	"fmt"
	"strings"
)

// Level selects which detection tiers a find run performs.
type Level int

const (
	// LevelExact finds byte-identical files through the fingerprint index.
	LevelExact Level = iota + 1

	// LevelText finds text files whose content is contained in another.
	LevelText

	// LevelImage finds perceptually similar images.
	LevelImage

	// LevelAll runs the three tiers in order.
	LevelAll
)

// String returns the CLI spelling of the level.
func (l Level) String() string {
	switch l {
	case LevelExact:
		return "1"
	case LevelText:
		return "2"
	case LevelImage:
		return "3"
	case LevelAll:
		return "all"
	default:
		return "unknown"
	}
}

// Title returns a human-readable name of the level.
func (l Level) Title() string {
	switch l {
	case LevelExact:
		return "Exact duplicates"
	case LevelText:
		return "Text containment"
	case LevelImage:
		return "Similar images"
	case LevelAll:
		return "All levels"
	default:
		return "Unknown"
	}
}

// Includes reports whether running l performs tier.
func (l Level) Includes(tier Level) bool {
	return l == tier || l == LevelAll
}

// ParseLevel parses "1", "2", "3" or "all" (also "exact", "text", "image").
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "exact":
		return LevelExact, nil
	case "2", "text":
		return LevelText, nil
	case "3", "image":
		return LevelImage, nil
	case "all", "":
		return LevelAll, nil
	default:
		return 0, fmt.Errorf("invalid level %q: expected 1, 2, 3 or all", s)
	}
}
