package index

import (
	"slices"
	"time"
)

// Record is the set of locations sharing one content hash.
type Record struct {
	Hash     string
	Size     int64
	Modified time.Time

	// Locations holds absolute paths in the order they were added.
	// It is never empty while the record is part of an index.
	Locations []string
}

func (r *Record) clone() Record {
	c := *r
	c.Locations = slices.Clone(r.Locations)
	return c
}

func (r *Record) contains(path string) bool {
	return slices.Contains(r.Locations, path)
}

// drop removes path and reports whether it was present.
func (r *Record) drop(path string) bool {
	i := slices.Index(r.Locations, path)
	if i < 0 {
		return false
	}
	r.Locations = slices.Delete(r.Locations, i, i+1)
	return true
}
