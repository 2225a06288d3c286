package index

import (
	"crypto/md5" //nolint:gosec // md5 identifies content, it does not protect it
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/crypto/sha3"

	"github.com/GRUUUUDD/dublicate/internal/config"
)

// NewDigest returns a fresh hash.Hash for the named algorithm.
func NewDigest(algorithm string) (hash.Hash, error) {
	switch strings.ToLower(algorithm) {
	case config.HashMD5:
		return md5.New(), nil //nolint:gosec // see import
	case config.HashSHA256:
		return sha256.New(), nil
	case config.HashSHA3256:
		return sha3.New256(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}
}

// Hasher computes content hashes and applies the eligibility filter.
type Hasher struct {
	fs  afero.Fs
	cfg *config.Config
}

// NewHasher creates a Hasher reading through fs.
func NewHasher(fs afero.Fs, cfg *config.Config) *Hasher {
	return &Hasher{fs: fs, cfg: cfg}
}

// Algorithm returns the configured algorithm name.
func (h *Hasher) Algorithm() string {
	return strings.ToLower(h.cfg.HashAlgorithm)
}

// Eligible stats path and reports whether it passes the eligibility filter.
// The FileInfo is returned so callers do not stat twice.
func (h *Hasher) Eligible(path string) (os.FileInfo, bool) {
	info, err := h.fs.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, false
	}
	if h.cfg.ShouldExclude(path) {
		return nil, false
	}
	if !h.cfg.SizeAllowed(info.Size()) {
		return nil, false
	}
	return info, true
}

// Hash streams the file at path through the configured digest in
// ChunkSize reads and returns the hex digest.
// An unknown algorithm is reported before the file is opened.
func (h *Hasher) Hash(path string) (string, error) {
	digest, err := NewDigest(h.cfg.HashAlgorithm)
	if err != nil {
		return "", err
	}

	f, err := h.fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	chunk := h.cfg.ChunkSize
	if chunk <= 0 {
		chunk = config.DefaultChunkSize
	}
	buf := make([]byte, chunk)
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			digest.Write(buf[:n]) //nolint:errcheck // hash.Hash never fails
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, readErr)
		}
	}

	return hex.EncodeToString(digest.Sum(nil)), nil
}
