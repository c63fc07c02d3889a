// Package dictfile implements the staging and atomic-commit protocol for
// dictionary directories.
//
// A flush never mutates anything reachable from the canonical directory
// until the complete new image has been staged in a sibling temp directory;
// the rename of that directory onto the canonical path is the single commit
// point. A reader racing a flush sees either the fully-old or the fully-new
// dictionary, never a mixture.
package dictfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/textinput/lexdict/buffer"
	"github.com/textinput/lexdict/format"
	"github.com/textinput/lexdict/internal/fs"
)

var (
	// ErrStaleTempDir is returned when a leftover staging directory from
	// a previous crash cannot be removed. The canonical directory is
	// untouched.
	ErrStaleTempDir = errors.New("dictfile: stale temp directory cannot be removed")
	// ErrTempDirCreate is returned when the staging directory cannot be
	// created. The canonical directory is untouched.
	ErrTempDirCreate = errors.New("dictfile: temp directory cannot be created")
	// ErrPartialWrite is returned when staging any dictionary file fails.
	// The canonical directory is untouched; the staging directory is
	// discarded best-effort.
	ErrPartialWrite = errors.New("dictfile: staging dictionary files failed")
	// ErrCanonicalRemove is returned when the old canonical directory
	// cannot be removed after a successful stage. The canonical directory
	// is unchanged; the staged image is left behind as an orphan.
	ErrCanonicalRemove = errors.New("dictfile: canonical directory cannot be removed")
	// ErrCommitRename is returned when the commit rename fails after the
	// canonical directory was already removed. The staged image is left
	// in place for manual recovery; this is the one state the protocol
	// cannot roll back.
	ErrCommitRename = errors.New("dictfile: commit rename failed, dictionary state uncertain")
)

// Writer stages a complete dictionary image and swaps it into place.
type Writer struct {
	fsys fs.FileSystem
}

// NewWriter creates a Writer on fsys (fs.Default if nil).
func NewWriter(fsys fs.FileSystem) *Writer {
	if fsys == nil {
		fsys = fs.Default
	}
	return &Writer{fsys: fsys}
}

// TempDirPath returns the staging directory a flush of dictDir uses.
func TempDirPath(dictDir string) string {
	return dictDir + format.TempDirSuffix
}

// Commit runs the full protocol: prepare the staging directory, let stage
// write every dictionary file under the returned base path, then replace the
// canonical directory.
//
// stage receives the path prefix inside the staging directory (the staging
// dir joined with the dictionary's base name); it must create every file of
// the new image under that prefix and return a non-nil error if any single
// write fails.
func (w *Writer) Commit(dictDir string, stage func(basePath string) error) error {
	tmpDir := TempDirPath(dictDir)

	// A leftover staging dir from a crashed flush holds a possibly
	// incomplete image and must go before we stage into it.
	if info, err := w.fsys.Stat(tmpDir); err == nil && info.IsDir() {
		if err := w.fsys.RemoveAll(tmpDir); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrStaleTempDir, tmpDir, err)
		}
	}

	restrictUmask()
	if err := w.fsys.Mkdir(tmpDir, 0o700); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTempDirCreate, tmpDir, err)
	}

	basePath := filepath.Join(tmpDir, filepath.Base(dictDir))
	if err := stage(basePath); err != nil {
		// Best-effort cleanup; the canonical directory is untouched
		// either way and the next flush removes leftovers.
		_ = w.fsys.RemoveAll(tmpDir)
		return fmt.Errorf("%w: %v", ErrPartialWrite, err)
	}

	// The only destructive step against the old state, taken strictly
	// after the new image is fully staged.
	if err := w.fsys.RemoveAll(dictDir); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCanonicalRemove, dictDir, err)
	}

	// Sole commit point.
	if err := w.fsys.Rename(tmpDir, dictDir); err != nil {
		// The canonical directory is already gone. One bounded retry
		// covers transient failures; past that the staged image stays
		// put so an operator can finish the swap by hand.
		if retryErr := w.fsys.Rename(tmpDir, dictDir); retryErr != nil {
			return fmt.Errorf("%w: %s -> %s: %v", ErrCommitRename, tmpDir, dictDir,
				errors.Join(err, retryErr))
		}
	}
	return nil
}

// WriteBuffer serializes a growable buffer to basePath+suffix, fsyncing so
// the bytes are durable before the commit rename.
func (w *Writer) WriteBuffer(basePath, suffix string, buf *buffer.Growable) error {
	path := basePath + suffix
	f, err := w.fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := buf.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
