package model

// DuplicateGroup is a set of files sharing one content hash.
// It is a derived view of the fingerprint index and always holds at least
// two locations.
type DuplicateGroup struct {
	// Hash is the hex-encoded content hash shared by every location.
	Hash string `json:"hash"`

	// Size is the size in bytes of one copy.
	Size int64 `json:"size"`

	// Locations lists the absolute paths in the order they were indexed.
	Locations []string `json:"locations"`
}

// WastedBytes returns the space that would be reclaimed by keeping one copy.
func (g DuplicateGroup) WastedBytes() int64 {
	if len(g.Locations) < 2 {
		return 0
	}
	return g.Size * int64(len(g.Locations)-1)
}

// ContainmentPair states that the text of Contained is found in Container.
// The relation is directional: (A, B) does not imply (B, A).
type ContainmentPair struct {
	Container string  `json:"container"`
	Contained string  `json:"contained"`
	Score     float64 `json:"score"`
}

// SimilarityPair is an unordered pair of perceptually similar images.
// Each unordered pair is reported at most once.
type SimilarityPair struct {
	PathA string  `json:"path_a"`
	PathB string  `json:"path_b"`
	Score float64 `json:"score"`

	// Distance is the Hamming distance between the two perceptual hashes.
	Distance int `json:"distance"`
}

// Skip records a file that was left out of a run and why.
type Skip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}
