package actions

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/afero"

	"github.com/GRUUUUDD/dublicate/internal/index"
)

// Actions performs file operations and keeps the index in sync.
type Actions struct {
	fs     afero.Fs
	index  *index.Index
	logger *slog.Logger
}

// Option configures Actions.
type Option func(*Actions)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Actions) {
		a.logger = logger
	}
}

// WithFs sets the filesystem operated on. It should be the filesystem the
// index hashes through.
func WithFs(fs afero.Fs) Option {
	return func(a *Actions) {
		a.fs = fs
	}
}

// New creates Actions bound to idx.
func New(idx *index.Index, opts ...Option) *Actions {
	a := &Actions{
		fs:     afero.NewOsFs(),
		index:  idx,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Delete removes the file at path. With updateIndex the location is
// dropped from the index and the index is persisted.
func (a *Actions) Delete(path string, updateIndex bool) error {
	if err := a.delete(path, updateIndex); err != nil {
		return err
	}
	if updateIndex {
		a.persist()
	}
	return nil
}

// Move moves src to dst, creating the parent of dst. A move across devices
// falls back to copy and delete. With updateIndex the location is replaced
// in the index and the index is persisted.
func (a *Actions) Move(src, dst string, updateIndex bool) error {
	if err := a.move(src, dst, updateIndex); err != nil {
		return err
	}
	if updateIndex {
		a.persist()
	}
	return nil
}

// Copy copies src to dst, keeping the permission bits and modification
// time. With updateIndex dst is added to the index and the index is
// persisted.
func (a *Actions) Copy(src, dst string, updateIndex bool) error {
	if err := a.copy(src, dst); err != nil {
		return err
	}
	if updateIndex {
		a.track(dst)
		a.persist()
	}
	return nil
}

// HardLink makes dst a hard link to src, replacing an existing dst. A dst
// that already is a link to src is left alone. It is only available on the
// operating system filesystem. With updateIndex dst is added to the index
// and the index is persisted.
func (a *Actions) HardLink(src, dst string, updateIndex bool) error {
	if _, err := a.link(src, dst); err != nil {
		return err
	}
	if updateIndex {
		a.track(dst)
		a.persist()
	}
	return nil
}

func (a *Actions) delete(path string, updateIndex bool) error {
	if err := a.requireFile(path); err != nil {
		return err
	}
	if err := a.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	if updateIndex {
		a.index.Remove(path)
	}
	a.logger.Debug("deleted", "path", path)
	return nil
}

func (a *Actions) move(src, dst string, updateIndex bool) error {
	if err := a.requireFile(src); err != nil {
		return err
	}
	if a.sameFile(src, dst) {
		return fmt.Errorf("%w: %s and %s", ErrSameFile, src, dst)
	}
	if err := a.fs.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}

	if err := a.fs.Rename(src, dst); err != nil {
		if !errors.Is(err, syscall.EXDEV) {
			return fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
		}
		a.logger.Debug("cross-device move, copying", "src", src, "dst", dst)
		if err := a.copy(src, dst); err != nil {
			return err
		}
		if err := a.fs.Remove(src); err != nil {
			return fmt.Errorf("copied %s to %s but failed to delete the source: %w", src, dst, err)
		}
	}

	if updateIndex {
		a.index.Relocate(src, dst)
	}
	a.logger.Debug("moved", "src", src, "dst", dst)
	return nil
}

func (a *Actions) copy(src, dst string) error {
	if err := a.requireFile(src); err != nil {
		return err
	}
	if a.sameFile(src, dst) {
		return fmt.Errorf("%w: %s and %s", ErrSameFile, src, dst)
	}
	info, err := a.fs.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if err := a.fs.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}

	in, err := a.fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close() //nolint:errcheck // read-only

	out, err := a.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close() //nolint:errcheck,gosec // already failing
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}

	if err := a.fs.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		a.logger.Warn("failed to keep modification time", "path", dst, "error", err)
	}
	a.logger.Debug("copied", "src", src, "dst", dst)
	return nil
}

// link reports whether dst was replaced. It is false when dst already is
// a link to src.
func (a *Actions) link(src, dst string) (bool, error) {
	if _, ok := a.fs.(*afero.OsFs); !ok {
		return false, ErrHardLinkUnsupported
	}
	if err := a.requireFile(src); err != nil {
		return false, err
	}
	if filepath.Clean(src) == filepath.Clean(dst) {
		return false, fmt.Errorf("%w: %s", ErrSameFile, src)
	}
	if a.sameFile(src, dst) {
		a.logger.Debug("already linked", "src", src, "dst", dst)
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return false, fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}

	// Link under a temporary name and rename it over dst so that dst is
	// never missing.
	tmp := filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+".link")
	_ = os.Remove(tmp) //nolint:errcheck // stale leftovers only
	if err := os.Link(src, tmp); err != nil {
		return false, fmt.Errorf("failed to link %s to %s: %w", dst, src, err)
	}
	err := os.Rename(tmp, dst)
	// rename(2) is a no-op when tmp and dst are already the same inode.
	if _, statErr := os.Lstat(tmp); statErr == nil {
		_ = os.Remove(tmp) //nolint:errcheck // best effort
	}
	if err != nil {
		return false, fmt.Errorf("failed to replace %s: %w", dst, err)
	}
	a.logger.Debug("linked", "src", src, "dst", dst)
	return true, nil
}

// sameFile reports whether src and dst name the same file, including
// through a hard link or a symlink.
func (a *Actions) sameFile(src, dst string) bool {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return true
	}
	srcInfo, err := a.fs.Stat(src)
	if err != nil {
		return false
	}
	dstInfo, err := a.fs.Stat(dst)
	if err != nil {
		return false
	}
	return os.SameFile(srcInfo, dstInfo)
}

// track adds path to the index. Ineligible paths are ignored.
func (a *Actions) track(path string) {
	if _, err := a.index.Add(path); err != nil && !errors.Is(err, index.ErrNotProcessed) {
		a.logger.Warn("failed to index", "path", path, "error", err)
	}
}

func (a *Actions) persist() {
	if err := a.index.Persist(); err != nil {
		a.logger.Warn("failed to save index", "path", a.index.Path(), "error", err)
	}
}

func (a *Actions) requireFile(path string) error {
	info, err := a.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// FreeName returns a path in dir for name that does not exist yet, adding
// _1, _2 and so on before the extension when needed.
func (a *Actions) FreeName(dir, name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := filepath.Join(dir, name)
	for n := 1; ; n++ {
		exists, err := afero.Exists(a.fs, candidate)
		if err == nil && !exists {
			return candidate
		}
		candidate = filepath.Join(dir, stem+"_"+strconv.Itoa(n)+ext)
	}
}
