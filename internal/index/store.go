package index

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// storeVersion is the version written by Persist.
const storeVersion = 1

type storedIndex struct {
	Version   int            `json:"version"`
	Algorithm string         `json:"algorithm"`
	Records   []storedRecord `json:"records"`
}

type storedRecord struct {
	Hash     string    `json:"hash"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	Files    []string  `json:"files"`
}

// legacyRecord is one value of the bare hash-keyed map written by earlier
// installations. Timestamps are ISO-8601 without a zone.
type legacyRecord struct {
	Files    []string `json:"files"`
	Size     int64    `json:"size"`
	Modified string   `json:"modified"`
}

// legacyTimestampFormats lists the layouts accepted for legacy timestamps.
var legacyTimestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) time.Time {
	for _, format := range legacyTimestampFormats {
		if t, err := time.ParseInLocation(format, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Persist writes the index to its storage path. The file is replaced
// atomically, so a crash leaves either the old or the new table. Concurrent
// calls are serialized, so the last call writes the latest table.
func (idx *Index) Persist() error {
	idx.persistMu.Lock()
	defer idx.persistMu.Unlock()

	idx.mu.RLock()
	doc := storedIndex{
		Version:   storeVersion,
		Algorithm: idx.hasher.Algorithm(),
		Records:   make([]storedRecord, 0, len(idx.order)),
	}
	for _, h := range idx.order {
		rec := idx.records[h]
		doc.Records = append(doc.Records, storedRecord{
			Hash:     rec.Hash,
			Size:     rec.Size,
			Modified: rec.Modified,
			Files:    append([]string(nil), rec.Locations...),
		})
	}
	idx.mu.RUnlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}

	if err := writeFileAtomic(idx.fs, idx.path, data); err != nil {
		return fmt.Errorf("failed to persist index: %w", err)
	}

	idx.logger.Debug("index persisted", "path", idx.path, "records", len(doc.Records))
	return nil
}

// Reload replaces the in-memory table with the persisted one.
//
// A missing file yields an empty table and no error. An unreadable or
// unparsable file yields an empty table and ErrCorruptIndex. A file written
// with another hash algorithm yields an empty table and ErrAlgorithmMismatch.
func (idx *Index) Reload() error {
	data, err := afero.ReadFile(idx.fs, idx.path)

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.resetLocked()

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %s: %w", ErrCorruptIndex, idx.path, err)
	}

	records, algorithm, err := decodeIndex(data)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCorruptIndex, idx.path, err)
	}

	if algorithm != "" && !strings.EqualFold(algorithm, idx.hasher.Algorithm()) {
		return fmt.Errorf("%w: file uses %s, configuration uses %s",
			ErrAlgorithmMismatch, algorithm, idx.hasher.Algorithm())
	}

	for _, rec := range records {
		idx.insertLocked(rec)
	}

	idx.logger.Debug("index loaded", "path", idx.path, "records", len(idx.records), "legacy", algorithm == "")
	return nil
}

// decodeIndex parses either storage layout. The returned algorithm is empty
// for the legacy layout, which did not record it.
func decodeIndex(data []byte) ([]Record, string, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, "", err
	}

	if _, ok := top["version"]; ok {
		var doc storedIndex
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, "", err
		}
		if doc.Version != storeVersion {
			return nil, "", fmt.Errorf("unsupported index version %d", doc.Version)
		}
		records := make([]Record, 0, len(doc.Records))
		for _, r := range doc.Records {
			records = append(records, Record{Hash: r.Hash, Size: r.Size, Modified: r.Modified, Locations: r.Files})
		}
		return records, doc.Algorithm, nil
	}

	records, err := decodeLegacy(data)
	return records, "", err
}

// decodeLegacy reads the hash-keyed map token by token so that records keep
// the order in which they were written.
func decodeLegacy(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var records []Record
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}
		var lr legacyRecord
		if err := dec.Decode(&lr); err != nil {
			return nil, fmt.Errorf("record %s: %w", key, err)
		}
		records = append(records, Record{
			Hash:      key,
			Size:      lr.Size,
			Modified:  parseTimestamp(lr.Modified),
			Locations: lr.Files,
		})
	}
	return records, nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it over path.
func writeFileAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()         //nolint:errcheck,gosec // already failing
		fs.Remove(tmpName) //nolint:errcheck,gosec // best effort
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()         //nolint:errcheck,gosec // already failing
		fs.Remove(tmpName) //nolint:errcheck,gosec // best effort
		return err
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpName) //nolint:errcheck,gosec // best effort
		return err
	}
	if err := fs.Chmod(tmpName, 0600); err != nil {
		fs.Remove(tmpName) //nolint:errcheck,gosec // best effort
		return err
	}
	if err := fs.Rename(tmpName, path); err != nil {
		fs.Remove(tmpName) //nolint:errcheck,gosec // best effort
		return err
	}
	return nil
}
