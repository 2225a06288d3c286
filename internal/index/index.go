package index

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"github.com/spf13/afero"

	"github.com/GRUUUUDD/dublicate/internal/config"
	"github.com/GRUUUUDD/dublicate/internal/model"
)

// Index maps content hashes to file locations.
// It is safe for concurrent use.
type Index struct {
	mu sync.RWMutex

	// persistMu serializes Persist so snapshots reach the file in the
	// order they were taken.
	persistMu sync.Mutex

	// records maps hash to record; order keeps hashes in insertion order so
	// iteration is stable across Persist and Reload.
	records map[string]*Record
	order   []string

	// owner maps each location to the hash of the record that holds it.
	owner map[string]string

	fs     afero.Fs
	cfg    *config.Config
	hasher *Hasher
	path   string
	logger *slog.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Index) {
		idx.logger = logger
	}
}

// WithFs sets the filesystem used for hashing and storage.
// The default is the operating system filesystem.
func WithFs(fs afero.Fs) Option {
	return func(idx *Index) {
		idx.fs = fs
	}
}

// WithPath overrides the storage location from the configuration.
func WithPath(path string) Option {
	return func(idx *Index) {
		idx.path = path
	}
}

// New creates an empty index. Call Reload to load the persisted table.
func New(cfg *config.Config, opts ...Option) *Index {
	idx := &Index{
		records: make(map[string]*Record),
		owner:   make(map[string]string),
		fs:      afero.NewOsFs(),
		cfg:     cfg,
		path:    cfg.IndexPath,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	idx.hasher = NewHasher(idx.fs, cfg)
	return idx
}

// Open creates an index and loads the persisted table.
// The index is always returned; a non-nil error is a storage problem the
// caller should report before continuing with the empty index.
func Open(cfg *config.Config, opts ...Option) (*Index, error) {
	idx := New(cfg, opts...)
	return idx, idx.Reload()
}

// Path returns the storage location.
func (idx *Index) Path() string {
	return idx.path
}

// Hasher returns the hasher used by Add.
func (idx *Index) Hasher() *Hasher {
	return idx.hasher
}

// Add hashes the file at path and records its absolute location.
//
// It returns ErrNotProcessed when the eligibility filter rejects the path and
// ErrUnsupportedAlgorithm when the configured algorithm is unknown. Other
// errors are I/O failures; the caller should report them and move on.
// Adding an unchanged file twice is a no-op. A file whose content changed
// since it was indexed moves to the record of its new hash.
func (idx *Index) Add(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	info, ok := idx.hasher.Eligible(abs)
	if !ok {
		return "", ErrNotProcessed
	}

	sum, err := idx.hasher.Hash(abs)
	if err != nil {
		return "", err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if prev, ok := idx.owner[abs]; ok {
		if prev == sum {
			return sum, nil
		}
		idx.detachLocked(abs)
	}

	rec, ok := idx.records[sum]
	if !ok {
		rec = &Record{
			Hash:     sum,
			Size:     info.Size(),
			Modified: info.ModTime(),
		}
		idx.records[sum] = rec
		idx.order = append(idx.order, sum)
	}
	rec.Locations = append(rec.Locations, abs)
	idx.owner[abs] = sum

	return sum, nil
}

// Duplicates returns every record with two or more locations, in insertion
// order of their hashes.
func (idx *Index) Duplicates() []model.DuplicateGroup {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var groups []model.DuplicateGroup
	for _, h := range idx.order {
		rec := idx.records[h]
		if len(rec.Locations) < 2 {
			continue
		}
		groups = append(groups, model.DuplicateGroup{
			Hash:      rec.Hash,
			Size:      rec.Size,
			Locations: slices.Clone(rec.Locations),
		})
	}
	return groups
}

// Locate returns the hash of the record holding path.
func (idx *Index) Locate(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	h, ok := idx.owner[abs]
	return h, ok
}

// Remove drops path from the index. A record left without locations is
// deleted. Removing an unknown path is a no-op.
func (idx *Index) Remove(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.detachLocked(abs)
}

// Relocate replaces oldPath with newPath in the record holding oldPath.
// It is a no-op when oldPath is not indexed.
func (idx *Index) Relocate(oldPath, newPath string) {
	oldAbs, err := filepath.Abs(oldPath)
	if err != nil {
		return
	}
	newAbs, err := filepath.Abs(newPath)
	if err != nil {
		return
	}
	if oldAbs == newAbs {
		return
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	h, ok := idx.owner[oldAbs]
	if !ok {
		return
	}
	rec := idx.records[h]

	// newPath may have been indexed under other content before being
	// overwritten by the move.
	if other, ok := idx.owner[newAbs]; ok && other != h {
		idx.detachLocked(newAbs)
	}

	i := slices.Index(rec.Locations, oldAbs)
	if rec.contains(newAbs) {
		rec.Locations = slices.Delete(rec.Locations, i, i+1)
	} else {
		rec.Locations[i] = newAbs
	}
	delete(idx.owner, oldAbs)
	idx.owner[newAbs] = h
}

// Clear drops every record.
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.resetLocked()
}

// Len returns the number of records.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.records)
}

// Records returns a snapshot of every record in insertion order.
func (idx *Index) Records() []Record {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]Record, 0, len(idx.order))
	for _, h := range idx.order {
		out = append(out, idx.records[h].clone())
	}
	return out
}

// Locations returns every indexed path in record order.
func (idx *Index) Locations() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]string, 0, len(idx.owner))
	for _, h := range idx.order {
		out = append(out, idx.records[h].Locations...)
	}
	return out
}

// Statistics summarizes the index.
func (idx *Index) Statistics() model.Statistics {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var s model.Statistics
	for _, rec := range idx.records {
		n := len(rec.Locations)
		s.TotalFiles += n
		s.TotalSizeBytes += rec.Size * int64(n)
		if n == 1 {
			s.UniqueFiles++
			continue
		}
		s.DuplicateGroups++
		s.WastedSpaceBytes += rec.Size * int64(n-1)
	}
	return s
}

// detachLocked removes abs from its record, dropping the record when it
// becomes empty. The caller holds idx.mu.
func (idx *Index) detachLocked(abs string) {
	h, ok := idx.owner[abs]
	if !ok {
		return
	}
	delete(idx.owner, abs)

	rec := idx.records[h]
	rec.drop(abs)
	if len(rec.Locations) == 0 {
		delete(idx.records, h)
		if i := slices.Index(idx.order, h); i >= 0 {
			idx.order = slices.Delete(idx.order, i, i+1)
		}
	}
}

func (idx *Index) resetLocked() {
	idx.records = make(map[string]*Record)
	idx.order = nil
	idx.owner = make(map[string]string)
}

// insertLocked adds a loaded record, dropping locations already owned by an
// earlier record. Records that end up empty are skipped.
func (idx *Index) insertLocked(rec Record) {
	if rec.Hash == "" {
		return
	}
	if existing, ok := idx.records[rec.Hash]; ok {
		for _, loc := range rec.Locations {
			if _, taken := idx.owner[loc]; !taken {
				existing.Locations = append(existing.Locations, loc)
				idx.owner[loc] = rec.Hash
			}
		}
		return
	}

	kept := make([]string, 0, len(rec.Locations))
	for _, loc := range rec.Locations {
		if _, taken := idx.owner[loc]; taken || loc == "" {
			continue
		}
		kept = append(kept, loc)
		idx.owner[loc] = rec.Hash
	}
	if len(kept) == 0 {
		return
	}
	rec.Locations = kept
	idx.records[rec.Hash] = &rec
	idx.order = append(idx.order, rec.Hash)
}

// IsStorageError reports whether err came from loading the index file rather
// than from a file being indexed.
func IsStorageError(err error) bool {
	return errors.Is(err, ErrCorruptIndex) || errors.Is(err, ErrAlgorithmMismatch)
}
